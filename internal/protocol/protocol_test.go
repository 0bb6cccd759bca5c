package protocol

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/51721198/gomoku-battle/internal/core"
)

func TestParseAndFormat(t *testing.T) {
	cases := map[string]Command{
		"CLEAR":           {Kind: Clear},
		"NEXT_BLACK":      {Kind: NextBlack},
		"NEXT_WHITE":      {Kind: NextWhite},
		"PLAY_BLACK 7 8":  {Kind: PlayBlack, Point: core.Point{Row: 7, Col: 8}},
		"PLAY_WHITE 0 14": {Kind: PlayWhite, Point: core.Point{Row: 0, Col: 14}},
		"PUT 3 4":         {Kind: Put, Point: core.Point{Row: 3, Col: 4}},
	}
	for line, want := range cases {
		got, err := Parse(line)
		require.NoError(t, err, line)
		require.Equal(t, want, got, line)
		require.Equal(t, line, Format(got))
	}

	got, err := Parse("  put 1 2 ")
	require.NoError(t, err)
	require.Equal(t, Put, got.Kind)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("JUMP 1 2")
	require.ErrorIs(t, err, ErrUnknownCommand)
	for _, line := range []string{"", "PUT 1", "PUT a b", "CLEAR now", "SHOW 3", "SHOW x", "SHOW 3 4"} {
		_, err := Parse(line)
		require.ErrorIs(t, err, ErrMalformed, line)
	}
}

func TestDecoderReadsShow(t *testing.T) {
	input := "CLEAR\n\nSHOW 3\nX..\n.O.\n...\nNEXT_WHITE\nSHOW 3 3\n...\n"
	dec := NewDecoder(strings.NewReader(input))

	cmd, err := dec.Decode()
	require.NoError(t, err)
	require.Equal(t, Clear, cmd.Kind)

	cmd, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, Show, cmd.Kind)
	require.Equal(t, "X..\n.O.\n...", cmd.Board.String())

	cmd, err = dec.Decode()
	require.NoError(t, err)
	require.Equal(t, core.White, cmd.Stone())

	_, err = dec.Decode()
	require.ErrorIs(t, err, ErrMalformed)

	_, err = dec.Decode()
	require.ErrorIs(t, err, io.EOF)
}

func TestEncoderShow(t *testing.T) {
	var buf bytes.Buffer
	b := core.NewBoard(3)
	require.NoError(t, b.Set(core.Point{Row: 1, Col: 1}, core.Black))
	require.NoError(t, NewEncoder(&buf).Encode(Command{Kind: Show, Board: b}))
	require.Equal(t, "SHOW 3\n...\n.X.\n...\n", buf.String())
}

type fixedMover struct {
	move  core.Point
	calls int
	seen  *core.Board
}

func (m *fixedMover) BestMove(_ context.Context, b *core.Board, _ core.Stone) (core.Decision, error) {
	m.calls++
	m.seen = b.Clone()
	return core.Decision{Move: m.move}, nil
}

func TestAgentRun(t *testing.T) {
	mover := &fixedMover{move: core.Point{Row: 2, Col: 2}}
	agent := NewAgent(mover, 5, zerolog.Nop())
	input := "PLAY_BLACK 0 0\nBOGUS\nNEXT_WHITE\nCLEAR\nSHOW 5\n.....\n.X...\n.....\n.....\n.....\nNEXT_WHITE\n"
	var out bytes.Buffer
	require.NoError(t, agent.Run(context.Background(), strings.NewReader(input), &out))

	require.Equal(t, "PUT 2 2\nPUT 2 2\n", out.String())
	require.Equal(t, 2, mover.calls)
	got, err := mover.seen.Get(core.Point{Row: 1, Col: 1})
	require.NoError(t, err)
	require.Equal(t, core.Black, got)
	require.Equal(t, 1, mover.seen.Count(core.Black))
}

func TestRemotePlayerAgainstAgent(t *testing.T) {
	chooser, err := core.NewChooser(core.EngineConfig{
		Depth:        1,
		Decay:        core.DefaultDecay,
		CacheEnabled: true,
		Workers:      1,
		Candidates:   core.CandidateOptions{Radius: 1, Order: true, Limit: 6},
		Weights:      core.DefaultEvaluationWeights(),
	})
	require.NoError(t, err)

	toAgentR, toAgentW := io.Pipe()
	fromAgentR, fromAgentW := io.Pipe()
	agent := NewAgent(chooser, 9, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- agent.Run(ctx, toAgentR, fromAgentW)
		fromAgentW.Close()
	}()

	player := NewRemotePlayer("agent", fromAgentR, toAgentW)
	require.NoError(t, player.Reset(ctx))

	b := core.NewBoard(9)
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Set(core.Point{Row: 4, Col: i}, core.White))
	}
	require.NoError(t, b.Set(core.Point{Row: 0, Col: 8}, core.Black))
	move, err := player.ChooseMove(ctx, b, core.Black)
	require.NoError(t, err)
	require.Equal(t, core.Point{Row: 4, Col: 4}, move)

	require.NoError(t, b.Set(move, core.Black))
	require.NoError(t, b.Set(core.Point{Row: 5, Col: 0}, core.White))
	second, err := player.ChooseMove(ctx, b, core.Black)
	require.NoError(t, err)
	require.NoError(t, b.Set(second, core.Black))

	toAgentW.Close()
	require.NoError(t, <-done)
}

func TestRemotePlayerDropsLateReply(t *testing.T) {
	toAgentR, toAgentW := io.Pipe()
	fromAgentR, fromAgentW := io.Pipe()
	release := make(chan struct{})
	go func() {
		defer fromAgentW.Close()
		answers := []string{"PUT 1 1\n", "PUT 2 2\n"}
		sc := bufio.NewScanner(toAgentR)
		for sc.Scan() {
			if !strings.HasPrefix(sc.Text(), "NEXT_") {
				continue
			}
			if len(answers) == 2 {
				<-release
			}
			if _, err := io.WriteString(fromAgentW, answers[0]); err != nil {
				return
			}
			answers = answers[1:]
			if len(answers) == 0 {
				return
			}
		}
	}()

	player := NewRemotePlayer("slow", fromAgentR, toAgentW)
	b := core.NewBoard(9)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := player.ChooseMove(ctx, b, core.Black)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	move, err := player.ChooseMove(ctx2, b, core.Black)
	require.NoError(t, err)
	require.Equal(t, core.Point{Row: 2, Col: 2}, move)
	toAgentW.Close()
}
