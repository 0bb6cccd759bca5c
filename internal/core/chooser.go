package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var ErrNoMoves = errors.New("no legal moves available")

// EngineConfig gathers the knobs of a move chooser.
type EngineConfig struct {
	Depth        int               `json:"depth" yaml:"depth"`
	Decay        float64           `json:"decay" yaml:"decay"`
	CacheEnabled bool              `json:"cache_enabled" yaml:"cache_enabled"`
	Workers      int               `json:"workers" yaml:"workers"`
	Candidates   CandidateOptions  `json:"candidates" yaml:"candidates"`
	Weights      EvaluationWeights `json:"weights" yaml:"weights"`
}

func DefaultEngineConfig() EngineConfig {
	candidates := DefaultCandidateOptions()
	candidates.Limit = 12
	return EngineConfig{
		Depth:        2,
		Decay:        DefaultDecay,
		CacheEnabled: true,
		Workers:      1,
		Candidates:   candidates,
		Weights:      DefaultEvaluationWeights(),
	}
}

// StatsRecorder receives one report per completed move choice.
type StatsRecorder interface {
	RecordSearch(stats SearchStats, elapsed time.Duration)
}

type Decision struct {
	Move    Point         `json:"move"`
	Score   float64       `json:"score"`
	Stats   SearchStats   `json:"stats"`
	Elapsed time.Duration `json:"elapsed"`
}

// Chooser picks a move by scoring every root candidate with a fresh search.
type Chooser struct {
	cfg      EngineConfig
	eval     Evaluation
	searcher *Searcher
	logger   zerolog.Logger
	recorder StatsRecorder
}

type ChooserOption func(*Chooser)

func WithLogger(logger zerolog.Logger) ChooserOption {
	return func(c *Chooser) {
		c.logger = logger
	}
}

func WithRecorder(recorder StatsRecorder) ChooserOption {
	return func(c *Chooser) {
		c.recorder = recorder
	}
}

func NewChooser(cfg EngineConfig, opts ...ChooserOption) (*Chooser, error) {
	if cfg.Depth < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDepth, cfg.Depth)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	eval, err := NewEvaluation(cfg.Weights)
	if err != nil {
		return nil, err
	}
	c := &Chooser{cfg: cfg, eval: eval, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	searcher, err := c.newSearcher()
	if err != nil {
		return nil, err
	}
	c.searcher = searcher
	return c, nil
}

func (c *Chooser) Config() EngineConfig {
	return c.cfg
}

func (c *Chooser) newSearcher() (*Searcher, error) {
	return NewSearcher(
		WithEvaluation(c.eval),
		WithDecay(c.cfg.Decay),
		WithCache(c.cfg.CacheEnabled),
		WithCandidateOptions(c.cfg.Candidates),
	)
}

// BestMove returns the first candidate with the highest score for toMove. The
// caller's board is never modified. A Chooser runs one BestMove at a time.
func (c *Chooser) BestMove(ctx context.Context, b *Board, toMove Stone) (Decision, error) {
	if toMove != Black && toMove != White {
		return Decision{}, fmt.Errorf("%w: to move %s", ErrInvalidStone, toMove)
	}
	start := time.Now()
	work := b.Clone()
	moves := SelectCandidates(work, toMove, c.eval, c.cfg.Candidates)
	if len(moves) == 0 {
		return Decision{}, ErrNoMoves
	}

	var (
		decision Decision
		err      error
	)
	if c.cfg.Workers > 1 && len(moves) > 1 {
		decision, err = c.bestParallel(ctx, work, moves, toMove)
	} else {
		decision, err = c.bestSequential(ctx, work, moves, toMove)
	}
	if err != nil {
		return Decision{}, err
	}
	decision.Elapsed = time.Since(start)
	if c.recorder != nil {
		c.recorder.RecordSearch(decision.Stats, decision.Elapsed)
	}
	c.logger.Debug().
		Str("stone", toMove.String()).
		Str("move", decision.Move.String()).
		Float64("score", decision.Score).
		Int("candidates", len(moves)).
		Int64("nodes", decision.Stats.Nodes).
		Int64("cutoffs", decision.Stats.Cutoffs).
		Dur("elapsed", decision.Elapsed).
		Msg("move chosen")
	return decision, nil
}

// bestSequential threads the best score so far as alpha into each root
// search; a candidate that cannot beat it comes back at or below alpha.
func (c *Chooser) bestSequential(ctx context.Context, b *Board, moves []Point, toMove Stone) (Decision, error) {
	c.searcher.ResetStats()
	best := math.Inf(-1)
	var choice Point
	for _, p := range moves {
		if err := ctx.Err(); err != nil {
			return Decision{}, err
		}
		v, err := scoreRoot(c.searcher, b, p, toMove, c.cfg.Depth, best)
		if err != nil {
			return Decision{}, err
		}
		if v > best {
			best = v
			choice = p
		}
	}
	return Decision{Move: choice, Score: best, Stats: c.searcher.Stats()}, nil
}

// bestParallel scores each root candidate with a full window on its own board
// and searcher, so the choice matches the sequential one.
func (c *Chooser) bestParallel(ctx context.Context, b *Board, moves []Point, toMove Stone) (Decision, error) {
	scores := make([]float64, len(moves))
	stats := make([]SearchStats, len(moves))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, p := range moves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			searcher, err := c.newSearcher()
			if err != nil {
				return err
			}
			v, err := scoreRoot(searcher, b.Clone(), p, toMove, c.cfg.Depth, math.Inf(-1))
			if err != nil {
				return err
			}
			scores[i] = v
			stats[i] = searcher.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Decision{}, err
	}
	decision := Decision{Score: math.Inf(-1)}
	for i, v := range scores {
		decision.Stats.Add(stats[i])
		if v > decision.Score {
			decision.Score = v
			decision.Move = moves[i]
		}
	}
	return decision, nil
}

func scoreRoot(s *Searcher, b *Board, p Point, toMove Stone, depth int, alpha float64) (float64, error) {
	if err := b.Set(p, toMove); err != nil {
		return 0, err
	}
	defer b.Set(p, Empty)
	return s.ClearCacheAndSearch(depth, alpha, math.Inf(1), b, p, toMove, toMove, Signature(p))
}
