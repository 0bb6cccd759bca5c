package battle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/game"
)

func quickEngine() core.EngineConfig {
	return core.EngineConfig{
		Depth:        1,
		Decay:        core.DefaultDecay,
		CacheEnabled: true,
		Workers:      1,
		Candidates:   core.CandidateOptions{Radius: 1, Order: true, Limit: 6},
		Weights:      core.DefaultEvaluationWeights(),
	}
}

type fixedPlayer struct {
	move core.Point
}

func (p fixedPlayer) Name() string { return "fixed" }

func (p fixedPlayer) ChooseMove(context.Context, *core.Board, core.Stone) (core.Point, error) {
	return p.move, nil
}

type stalledPlayer struct{}

func (stalledPlayer) Name() string { return "stalled" }

func (stalledPlayer) ChooseMove(ctx context.Context, _ *core.Board, _ core.Stone) (core.Point, error) {
	<-ctx.Done()
	return core.Point{}, ctx.Err()
}

type countingPlayer struct {
	Player
	resets int
}

func (p *countingPlayer) Reset(context.Context) error {
	p.resets++
	return nil
}

type closingPlayer struct {
	fixedPlayer
	closed *atomic.Int32
}

func (p closingPlayer) Close() error {
	p.closed.Add(1)
	return nil
}

func enginePlayer(t *testing.T, name string) Player {
	t.Helper()
	p, err := EngineFactory(name, quickEngine())()
	require.NoError(t, err)
	return p
}

func TestOpeningSuiteDeterministic(t *testing.T) {
	a := OpeningSuite(7, 15, 4, 3)
	b := OpeningSuite(7, 15, 4, 3)
	require.Equal(t, a, b)
	for _, opening := range a {
		require.Len(t, opening, 4)
		seen := map[core.Point]bool{}
		for _, p := range opening {
			require.False(t, seen[p])
			seen[p] = true
			require.InDelta(t, 7, p.Row, 2)
			require.InDelta(t, 7, p.Col, 2)
		}
	}
	require.Empty(t, RandomOpening(nil, 15, 0))
}

func TestArenaEngineMatchFinishes(t *testing.T) {
	black := &countingPlayer{Player: enginePlayer(t, "black")}
	arena := &Arena{
		Size:    9,
		Black:   black,
		White:   enginePlayer(t, "white"),
		Opening: Opening{{Row: 4, Col: 4}, {Row: 4, Col: 5}},
		Logger:  zerolog.Nop(),
	}
	res, err := arena.Play(context.Background())
	require.NoError(t, err)
	require.True(t, res.Status.Finished())
	require.Nil(t, res.Forfeit)
	require.NotEmpty(t, res.ID)
	require.Equal(t, "black", res.Black)
	require.Equal(t, core.Point{Row: 4, Col: 4}, res.Moves[0].Point)
	require.Equal(t, 2, black.resets)
}

func TestArenaIllegalMoveForfeits(t *testing.T) {
	arena := &Arena{
		Size:   9,
		Black:  fixedPlayer{move: core.Point{Row: 0, Col: 0}},
		White:  enginePlayer(t, "engine"),
		Logger: zerolog.Nop(),
	}
	res, err := arena.Play(context.Background())
	require.NoError(t, err)
	require.Equal(t, game.StatusWhiteWin, res.Status)
	require.NotNil(t, res.Forfeit)
	require.Equal(t, core.Black, res.Forfeit.Stone)
	require.Len(t, res.Moves, 2)
}

func TestArenaMoveTimeoutForfeits(t *testing.T) {
	arena := &Arena{
		Size:        9,
		Black:       enginePlayer(t, "engine"),
		White:       stalledPlayer{},
		MoveTimeout: 20 * time.Millisecond,
		Logger:      zerolog.Nop(),
	}
	res, err := arena.Play(context.Background())
	require.NoError(t, err)
	require.Equal(t, game.StatusBlackWin, res.Status)
	require.NotNil(t, res.Forfeit)
	require.Equal(t, core.White, res.Forfeit.Stone)
	require.Contains(t, res.Forfeit.Reason, "no move within")
}

func TestArenaCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	arena := &Arena{Size: 9, Black: stalledPlayer{}, White: stalledPlayer{}, Logger: zerolog.Nop()}
	_, err := arena.Play(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunSeriesAlternatesColours(t *testing.T) {
	cfg := SeriesConfig{Games: 4, Parallel: 2, Size: 9, OpeningPlies: 2, Seed: 3}
	tally, err := RunSeries(context.Background(), cfg,
		EngineFactory("a", quickEngine()), EngineFactory("b", quickEngine()), zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, tally.Results, 4)
	require.Equal(t, 4, tally.AWins+tally.BWins+tally.Draws)
	for i, res := range tally.Results {
		if i%2 == 0 {
			require.Equal(t, "a", res.Black)
		} else {
			require.Equal(t, "a", res.White)
		}
		require.True(t, res.Status.Finished())
	}
	require.Equal(t, tally.Results[0].Moves[:2], tally.Results[1].Moves[:2])
}

func TestRunSeriesForfeitTally(t *testing.T) {
	bad := func() (Player, error) { return fixedPlayer{move: core.Point{Row: 4, Col: 4}}, nil }
	cfg := SeriesConfig{Games: 2, Parallel: 1, Size: 9}
	tally, err := RunSeries(context.Background(), cfg, EngineFactory("engine", quickEngine()), bad, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 2, tally.AWins)
	require.Equal(t, 2, tally.Forfeits)
}

func TestRunSeriesClosesFirstPlayerWhenSecondFails(t *testing.T) {
	closed := &atomic.Int32{}
	a := func() (Player, error) { return closingPlayer{closed: closed}, nil }
	errStart := errors.New("agent did not start")
	b := func() (Player, error) { return nil, errStart }
	cfg := SeriesConfig{Games: 1, Parallel: 1, Size: 9}
	_, err := RunSeries(context.Background(), cfg, a, b, zerolog.Nop())
	require.ErrorIs(t, err, errStart)
	require.Equal(t, int32(1), closed.Load())
}
