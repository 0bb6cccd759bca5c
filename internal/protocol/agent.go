package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/51721198/gomoku-battle/internal/core"
)

// Mover picks a move for a position. *core.Chooser implements it.
type Mover interface {
	BestMove(ctx context.Context, b *core.Board, toMove core.Stone) (core.Decision, error)
}

// Agent answers protocol commands from a driver with moves chosen by a Mover.
// It keeps its own copy of the board.
type Agent struct {
	mover  Mover
	size   int
	board  *core.Board
	logger zerolog.Logger
}

func NewAgent(mover Mover, size int, logger zerolog.Logger) *Agent {
	return &Agent{mover: mover, size: size, board: core.NewBoard(size), logger: logger}
}

func (a *Agent) Board() *core.Board {
	return a.board.Clone()
}

type decoded struct {
	cmd Command
	err error
}

// Run serves commands from r and writes replies to w until r is exhausted
// or ctx is cancelled. Malformed input is logged and skipped.
func (a *Agent) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := NewDecoder(r)
	enc := NewEncoder(w)
	in := make(chan decoded)
	go func() {
		defer close(in)
		for {
			cmd, err := dec.Decode()
			select {
			case in <- decoded{cmd: cmd, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil && !errors.Is(err, ErrMalformed) && !errors.Is(err, ErrUnknownCommand) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok {
				return ctx.Err()
			}
			if msg.err != nil {
				if errors.Is(msg.err, io.EOF) {
					a.logger.Info().Msg("driver closed input")
					return nil
				}
				if errors.Is(msg.err, ErrMalformed) || errors.Is(msg.err, ErrUnknownCommand) {
					a.logger.Warn().Err(msg.err).Msg("ignoring command")
					continue
				}
				return msg.err
			}
			if err := a.Handle(ctx, msg.cmd, enc); err != nil {
				return err
			}
		}
	}
}

// Handle applies one command, replying through enc for NEXT commands.
func (a *Agent) Handle(ctx context.Context, cmd Command, enc *Encoder) error {
	switch cmd.Kind {
	case Clear:
		a.board = core.NewBoard(a.size)
		a.logger.Debug().Msg("board cleared")
	case PlayBlack, PlayWhite:
		if err := a.board.Set(cmd.Point, cmd.Stone()); err != nil {
			a.logger.Warn().Err(err).Str("command", Format(cmd)).Msg("ignoring move")
		}
	case Show:
		a.board = cmd.Board
		a.size = cmd.Board.Size()
	case NextBlack, NextWhite:
		stone := cmd.Stone()
		decision, err := a.mover.BestMove(ctx, a.board, stone)
		if err != nil {
			return fmt.Errorf("choose move for %s: %w", stone, err)
		}
		if err := a.board.Set(decision.Move, stone); err != nil {
			return err
		}
		a.logger.Info().
			Str("stone", stone.String()).
			Str("move", decision.Move.String()).
			Float64("score", decision.Score).
			Dur("elapsed", decision.Elapsed).
			Msg("put")
		return enc.Encode(Command{Kind: Put, Point: decision.Move})
	default:
		a.logger.Warn().Str("command", cmd.Kind.String()).Msg("unexpected command for an agent")
	}
	return nil
}
