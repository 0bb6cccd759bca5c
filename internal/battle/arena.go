package battle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/game"
)

// Forfeit records a player losing by error, timeout or an illegal reply.
type Forfeit struct {
	Stone  core.Stone `json:"stone"`
	Reason string     `json:"reason"`
}

type Result struct {
	ID      string      `json:"id"`
	Black   string      `json:"black"`
	White   string      `json:"white"`
	Status  game.Status `json:"status"`
	Moves   []game.Move `json:"moves"`
	Forfeit *Forfeit    `json:"forfeit,omitempty"`
}

// Winner is the winning stone, or Empty for a draw.
func (r Result) Winner() core.Stone {
	switch r.Status {
	case game.StatusBlackWin:
		return core.Black
	case game.StatusWhiteWin:
		return core.White
	default:
		return core.Empty
	}
}

// Arena plays one match between two players.
type Arena struct {
	Size        int
	Black       Player
	White       Player
	Opening     Opening
	MoveTimeout time.Duration
	Logger      zerolog.Logger
}

func (a *Arena) Play(ctx context.Context) (Result, error) {
	g := game.New(a.Size)
	result := Result{ID: uuid.NewString(), Black: a.Black.Name(), White: a.White.Name()}
	logger := a.Logger.With().Str("game", result.ID).Logger()

	if err := g.Start(); err != nil {
		return result, err
	}
	for _, p := range a.Opening {
		if _, err := g.TakeMove(p); err != nil {
			return result, fmt.Errorf("opening move %v: %w", p, err)
		}
	}
	for _, player := range []Player{a.Black, a.White} {
		if r, ok := player.(Resetter); ok {
			if err := r.Reset(ctx); err != nil {
				return result, fmt.Errorf("reset %s: %w", player.Name(), err)
			}
		}
	}
	logger.Info().Msgf("starting %s (black) vs %s (white) after %d opening moves", result.Black, result.White, len(a.Opening))

	for g.Status() == game.StatusOn {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		toMove := g.ToMove()
		player := a.White
		if toMove == core.Black {
			player = a.Black
		}
		move, err := a.ask(ctx, player, g.Board(), toMove)
		if err == nil {
			_, err = g.TakeMove(move)
		}
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			logger.Warn().Err(err).Str("player", player.Name()).Msg("forfeit")
			result.Forfeit = &Forfeit{Stone: toMove, Reason: err.Error()}
			if abortErr := g.Abort(toMove); abortErr != nil {
				return result, abortErr
			}
		}
	}

	result.Status = g.Status()
	result.Moves = g.History()
	for _, player := range []Player{a.Black, a.White} {
		if r, ok := player.(Resetter); ok {
			_ = r.Reset(ctx)
		}
	}
	logger.Info().Msgf("completed with %s after %d moves", result.Status, len(result.Moves))
	return result, nil
}

func (a *Arena) ask(ctx context.Context, player Player, b *core.Board, toMove core.Stone) (core.Point, error) {
	if a.MoveTimeout <= 0 {
		return player.ChooseMove(ctx, b, toMove)
	}
	mctx, cancel := context.WithTimeout(ctx, a.MoveTimeout)
	defer cancel()
	move, err := player.ChooseMove(mctx, b, toMove)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return move, fmt.Errorf("no move within %s", a.MoveTimeout)
	}
	return move, err
}

type SeriesConfig struct {
	Games        int
	Parallel     int
	Size         int
	OpeningPlies int
	Seed         uint64
	MoveTimeout  time.Duration
}

// Tally counts outcomes from the point of view of the two factories.
type Tally struct {
	AWins    int      `json:"a_wins"`
	BWins    int      `json:"b_wins"`
	Draws    int      `json:"draws"`
	Forfeits int      `json:"forfeits"`
	Results  []Result `json:"results"`
}

// RunSeries plays cfg.Games matches, cfg.Parallel at a time. Each opening is
// played twice with colours swapped; A is Black in even-numbered games.
func RunSeries(ctx context.Context, cfg SeriesConfig, a, b PlayerFactory, logger zerolog.Logger) (Tally, error) {
	if cfg.Games < 1 {
		return Tally{}, nil
	}
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	openings := OpeningSuite(cfg.Seed, cfg.Size, cfg.OpeningPlies, (cfg.Games+1)/2)
	results := make([]Result, cfg.Games)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i := 0; i < cfg.Games; i++ {
		g.Go(func() error {
			pa, err := a()
			if err != nil {
				return err
			}
			pb, err := b()
			if err != nil {
				closePlayer(pa)
				return err
			}
			arena := &Arena{
				Size:        cfg.Size,
				Black:       pa,
				White:       pb,
				Opening:     openings[i/2],
				MoveTimeout: cfg.MoveTimeout,
				Logger:      logger.With().Int("index", i).Logger(),
			}
			if i%2 == 1 {
				arena.Black, arena.White = pb, pa
			}
			res, err := arena.Play(gctx)
			closePlayer(pa)
			closePlayer(pb)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Tally{}, err
	}

	tally := Tally{Results: results}
	for i, res := range results {
		if res.Forfeit != nil {
			tally.Forfeits++
		}
		aStone := core.Black
		if i%2 == 1 {
			aStone = core.White
		}
		switch res.Winner() {
		case core.Empty:
			tally.Draws++
		case aStone:
			tally.AWins++
		default:
			tally.BWins++
		}
	}
	logger.Info().Msgf("series complete: a=%d b=%d draws=%d", tally.AWins, tally.BWins, tally.Draws)
	return tally, nil
}

func closePlayer(p Player) {
	if c, ok := p.(io.Closer); ok {
		_ = c.Close()
	}
}
