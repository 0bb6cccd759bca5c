package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/51721198/gomoku-battle/internal/core"
)

var ErrUnexpectedReply = errors.New("unexpected reply from agent")

// RemotePlayer drives an agent on the other end of a reader/writer pair.
type RemotePlayer struct {
	name    string
	enc     *Encoder
	replies chan decoded
	once    sync.Once
	dec     *Decoder

	mu   sync.Mutex
	last *core.Board
	// stale counts requests abandoned on cancel whose PUT is still due.
	stale int
}

// NewRemotePlayer reads agent replies from r and writes commands to w.
func NewRemotePlayer(name string, r io.Reader, w io.Writer) *RemotePlayer {
	return &RemotePlayer{
		name:    name,
		enc:     NewEncoder(w),
		dec:     NewDecoder(r),
		replies: make(chan decoded, 1),
	}
}

func (p *RemotePlayer) Name() string {
	return p.name
}

func (p *RemotePlayer) startReader() {
	p.once.Do(func() {
		go func() {
			defer close(p.replies)
			for {
				cmd, err := p.dec.Decode()
				p.replies <- decoded{cmd: cmd, err: err}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Reset tells the agent to clear its board.
func (p *RemotePlayer) Reset(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = nil
	return p.enc.Encode(Command{Kind: Clear})
}

// ChooseMove reports the opponent's latest move, shows the board and asks the
// agent for toMove's reply. A reply that arrives after its request was
// cancelled is discarded by the next call.
func (p *RemotePlayer) ChooseMove(ctx context.Context, b *core.Board, toMove core.Stone) (core.Point, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startReader()

	if move, ok := opponentMove(p.last, b, core.NextType(toMove)); ok {
		if err := p.enc.Encode(PlayFor(core.NextType(toMove), move)); err != nil {
			return core.Point{}, err
		}
	}
	if err := p.enc.Encode(Command{Kind: Show, Board: b}); err != nil {
		return core.Point{}, err
	}
	if err := p.enc.Encode(NextFor(toMove)); err != nil {
		return core.Point{}, err
	}

	for {
		select {
		case <-ctx.Done():
			p.stale++
			return core.Point{}, ctx.Err()
		case msg, ok := <-p.replies:
			if !ok {
				return core.Point{}, fmt.Errorf("%s: %w", p.name, io.ErrUnexpectedEOF)
			}
			if msg.err != nil {
				return core.Point{}, fmt.Errorf("%s: %w", p.name, msg.err)
			}
			if msg.cmd.Kind == Put && p.stale > 0 {
				p.stale--
				continue
			}
			if msg.cmd.Kind != Put {
				return core.Point{}, fmt.Errorf("%w: %s sent %s", ErrUnexpectedReply, p.name, msg.cmd.Kind)
			}
			next := b.Clone()
			if err := next.Set(msg.cmd.Point, toMove); err == nil {
				p.last = next
			} else {
				p.last = b.Clone()
			}
			return msg.cmd.Point, nil
		}
	}
}

// opponentMove finds the single cell that changed to opponent since prev.
func opponentMove(prev, cur *core.Board, opponent core.Stone) (core.Point, bool) {
	if prev == nil || prev.Size() != cur.Size() {
		return core.Point{}, false
	}
	var (
		found core.Point
		count int
	)
	for row := 0; row < cur.Size(); row++ {
		for col := 0; col < cur.Size(); col++ {
			pt := core.Point{Row: row, Col: col}
			before, _ := prev.Get(pt)
			after, _ := cur.Get(pt)
			if before == core.Empty && after == opponent {
				found = pt
				count++
			}
		}
	}
	return found, count == 1
}
