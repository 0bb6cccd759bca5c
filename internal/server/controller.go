package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/game"
	"github.com/51721198/gomoku-battle/internal/metrics"
)

var ErrNotHumanTurn = errors.New("not human turn")

type Mover interface {
	BestMove(ctx context.Context, b *core.Board, toMove core.Stone) (core.Decision, error)
}

// Settings says which colours the engine plays.
type Settings struct {
	BlackAI bool `json:"black_ai"`
	WhiteAI bool `json:"white_ai"`
}

func (s Settings) isAI(stone core.Stone) bool {
	switch stone {
	case core.Black:
		return s.BlackAI
	case core.White:
		return s.WhiteAI
	}
	return false
}

type StatusResponse struct {
	game.Snapshot
	Settings   Settings `json:"settings"`
	AiThinking bool     `json:"ai_thinking"`
	LastScore  float64  `json:"last_score"`
	LastNodes  int64    `json:"last_nodes"`
	LastMs     float64  `json:"last_ms"`
}

// Controller serialises human and engine moves onto one game.
type Controller struct {
	mu         sync.Mutex
	game       *game.Game
	settings   Settings
	mover      Mover
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	generation int
	thinking   bool
	last       core.Decision
}

func NewController(g *game.Game, mover Mover, settings Settings, m *metrics.Metrics, logger zerolog.Logger) *Controller {
	return &Controller{game: g, mover: mover, settings: settings, metrics: m, logger: logger}
}

func (c *Controller) Game() *game.Game {
	return c.game
}

// SetMover swaps the engine used for later moves.
func (c *Controller) SetMover(m Mover) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mover = m
}

func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// StartGame resets the board and starts a match with settings.
func (c *Controller) StartGame(settings Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.settings = settings
	c.thinking = false
	c.game.Reset()
	return c.game.Start()
}

// Stop abandons the current match and returns to READY.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.thinking = false
	c.game.Reset()
}

func (c *Controller) ApplyHumanMove(p core.Point) (game.Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.game.Status() == game.StatusOn && c.settings.isAI(c.game.ToMove()) {
		return game.Move{}, ErrNotHumanTurn
	}
	return c.applyLocked(p)
}

func (c *Controller) applyLocked(p core.Point) (game.Move, error) {
	move, err := c.game.TakeMove(p)
	if err != nil {
		return move, err
	}
	if c.metrics != nil {
		c.metrics.RecordMove(move.Stone)
		if status := c.game.Status(); status.Finished() {
			c.metrics.RecordResult(status.String())
		}
	}
	return move, nil
}

// Tick plays one engine move if the engine is to move. The search runs
// without the lock; a result for a reset game is discarded.
func (c *Controller) Tick(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.thinking || c.game.Status() != game.StatusOn || !c.settings.isAI(c.game.ToMove()) {
		c.mu.Unlock()
		return false, nil
	}
	c.thinking = true
	generation := c.generation
	toMove := c.game.ToMove()
	board := c.game.Board()
	mover := c.mover
	c.mu.Unlock()

	decision, err := mover.BestMove(ctx, board, toMove)

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false, nil
	}
	c.thinking = false
	if err != nil {
		return false, fmt.Errorf("engine move for %s: %w", toMove, err)
	}
	if _, err := c.applyLocked(decision.Move); err != nil {
		return false, fmt.Errorf("engine move %v: %w", decision.Move, err)
	}
	c.last = decision
	c.logger.Debug().
		Str("stone", toMove.String()).
		Int("row", decision.Move.Row).
		Int("col", decision.Move.Col).
		Float64("score", decision.Score).
		Dur("elapsed", decision.Elapsed).
		Msg("engine move")
	return true, nil
}

func (c *Controller) Status() StatusResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StatusResponse{
		Snapshot:   c.game.Snapshot(),
		Settings:   c.settings,
		AiThinking: c.thinking,
		LastScore:  c.last.Score,
		LastNodes:  c.last.Stats.Nodes,
		LastMs:     float64(c.last.Elapsed) / float64(time.Millisecond),
	}
}

// RunTicker calls Tick every interval until ctx ends.
func (c *Controller) RunTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Tick(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("tick failed")
			}
		}
	}
}
