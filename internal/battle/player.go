package battle

import (
	"context"

	"github.com/51721198/gomoku-battle/internal/core"
)

// Player proposes a move for toMove on a board it must not keep.
type Player interface {
	Name() string
	ChooseMove(ctx context.Context, b *core.Board, toMove core.Stone) (core.Point, error)
}

// Resetter is implemented by players that hold per-game state.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Mover is satisfied by *core.Chooser.
type Mover interface {
	BestMove(ctx context.Context, b *core.Board, toMove core.Stone) (core.Decision, error)
}

// EnginePlayer plays with an in-process chooser.
type EnginePlayer struct {
	name  string
	mover Mover
}

func NewEnginePlayer(name string, mover Mover) *EnginePlayer {
	return &EnginePlayer{name: name, mover: mover}
}

func (p *EnginePlayer) Name() string {
	return p.name
}

func (p *EnginePlayer) ChooseMove(ctx context.Context, b *core.Board, toMove core.Stone) (core.Point, error) {
	d, err := p.mover.BestMove(ctx, b, toMove)
	if err != nil {
		return core.Point{}, err
	}
	return d.Move, nil
}

// EngineFactory builds a fresh engine player per game from cfg.
func EngineFactory(name string, cfg core.EngineConfig, opts ...core.ChooserOption) PlayerFactory {
	return func() (Player, error) {
		chooser, err := core.NewChooser(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return NewEnginePlayer(name, chooser), nil
	}
}

// PlayerFactory makes a player that a single game owns.
type PlayerFactory func() (Player, error)
