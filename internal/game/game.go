package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/51721198/gomoku-battle/internal/core"
)

const DefaultBoardSize = 15

type EventType string

const (
	EventMoved  EventType = "moved"
	EventStatus EventType = "status"
	EventReset  EventType = "reset"
)

type Event struct {
	Type   EventType  `json:"type"`
	Status Status     `json:"status"`
	ToMove core.Stone `json:"to_move"`
	Move   *Move      `json:"move,omitempty"`
}

// Game is the match state machine. It is safe for concurrent use.
type Game struct {
	mu          sync.Mutex
	size        int
	board       *core.Board
	status      Status
	toMove      core.Stone
	history     []Move
	subscribers map[int]chan Event
	nextSub     int
}

func New(size int) *Game {
	if size < 1 {
		size = DefaultBoardSize
	}
	g := &Game{size: size, subscribers: make(map[int]chan Event)}
	g.resetLocked()
	return g
}

func (g *Game) resetLocked() {
	g.board = core.NewBoard(g.size)
	g.status = StatusReady
	g.toMove = core.Empty
	g.history = nil
}

// Reset returns to READY with an empty board.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
	g.publishLocked(Event{Type: EventReset, Status: g.status, ToMove: g.toMove})
}

// Start moves READY to ON with Black to play.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusReady {
		return fmt.Errorf("%w: status %s", ErrAlreadyStarted, g.status)
	}
	g.status = StatusOn
	g.toMove = core.Black
	g.publishLocked(Event{Type: EventStatus, Status: g.status, ToMove: g.toMove})
	return nil
}

// TakeMove places the side to move's stone at p and advances the state.
func (g *Game) TakeMove(p core.Point) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusOn {
		return Move{}, fmt.Errorf("%w: status %s", ErrNotRunning, g.status)
	}
	stone := g.toMove
	if err := g.board.Set(p, stone); err != nil {
		return Move{}, err
	}
	move := Move{Point: p, Stone: stone, Seq: len(g.history) + 1}
	g.history = append(g.history, move)

	switch {
	case core.IsWin(g.board, p):
		g.status = winStatus(stone)
		g.toMove = core.Empty
	case core.IsDraw(g.board, p):
		g.status = StatusDraw
		g.toMove = core.Empty
	default:
		g.toMove = core.NextType(stone)
	}
	g.publishLocked(Event{Type: EventMoved, Status: g.status, ToMove: g.toMove, Move: &move})
	if g.status.Finished() {
		g.publishLocked(Event{Type: EventStatus, Status: g.status, ToMove: g.toMove})
	}
	return move, nil
}

// Abort ends a running match as a win for the side not at fault.
func (g *Game) Abort(loser core.Stone) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusOn {
		return fmt.Errorf("%w: status %s", ErrNotRunning, g.status)
	}
	g.status = winStatus(core.NextType(loser))
	g.toMove = core.Empty
	g.publishLocked(Event{Type: EventStatus, Status: g.status, ToMove: g.toMove})
	return nil
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) ToMove() core.Stone {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.toMove
}

func (g *Game) Size() int {
	return g.size
}

// Board returns a copy of the current board.
func (g *Game) Board() *core.Board {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) History() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Move(nil), g.history...)
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap := Snapshot{
		Status: g.status,
		ToMove: g.toMove,
		Board:  g.board.Clone(),
		Moves:  append([]Move(nil), g.history...),
		Size:   g.size,
		Rows:   strings.Split(g.board.String(), "\n"),
	}
	if n := len(g.history); n > 0 {
		snap.HasLast = true
		snap.Last = g.history[n-1]
	}
	return snap
}

// Subscribe registers a listener. Events are dropped for a listener whose
// buffer is full. The returned func unsubscribes and closes the channel.
func (g *Game) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subscribers[id] = ch
	g.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.subscribers, id)
			g.mu.Unlock()
			close(ch)
		})
	}
}

func (g *Game) publishLocked(ev Event) {
	for _, ch := range g.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
