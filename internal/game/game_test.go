package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/51721198/gomoku-battle/internal/core"
)

func TestLifecycle(t *testing.T) {
	g := New(15)
	require.Equal(t, StatusReady, g.Status())
	require.Equal(t, core.Empty, g.ToMove(), "nobody moves before the start")

	_, err := g.TakeMove(core.Point{Row: 7, Col: 7})
	require.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, g.Start())
	require.ErrorIs(t, g.Start(), ErrAlreadyStarted)
	require.Equal(t, core.Black, g.ToMove())

	move, err := g.TakeMove(core.Point{Row: 7, Col: 7})
	require.NoError(t, err)
	require.Equal(t, Move{Point: core.Point{Row: 7, Col: 7}, Stone: core.Black, Seq: 1}, move)
	require.Equal(t, core.White, g.ToMove())

	_, err = g.TakeMove(core.Point{Row: 7, Col: 7})
	require.ErrorIs(t, err, core.ErrOccupied)
	_, err = g.TakeMove(core.Point{Row: 15, Col: 0})
	require.ErrorIs(t, err, core.ErrOutOfBounds)
	require.Equal(t, core.White, g.ToMove(), "rejected moves must not toggle the turn")

	g.Reset()
	require.Equal(t, StatusReady, g.Status())
	require.Equal(t, core.Empty, g.ToMove())
	require.Empty(t, g.History())
	require.Equal(t, 0, g.Board().Count(core.Black))
}

func TestBlackWins(t *testing.T) {
	g := New(15)
	require.NoError(t, g.Start())
	for i := 0; i < 4; i++ {
		_, err := g.TakeMove(core.Point{Row: 7, Col: 3 + i})
		require.NoError(t, err)
		_, err = g.TakeMove(core.Point{Row: 9, Col: 3 + i})
		require.NoError(t, err)
	}
	_, err := g.TakeMove(core.Point{Row: 7, Col: 7})
	require.NoError(t, err)
	require.Equal(t, StatusBlackWin, g.Status())
	require.Equal(t, core.Empty, g.ToMove())
	require.True(t, g.Status().Finished())

	_, err = g.TakeMove(core.Point{Row: 0, Col: 0})
	require.ErrorIs(t, err, ErrNotRunning)
	require.Len(t, g.History(), 9)
}

func TestDraw(t *testing.T) {
	g := New(2)
	require.NoError(t, g.Start())
	for _, p := range []core.Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 0}} {
		_, err := g.TakeMove(p)
		require.NoError(t, err)
		require.Equal(t, StatusOn, g.Status())
	}
	_, err := g.TakeMove(core.Point{Row: 1, Col: 1})
	require.NoError(t, err)
	require.Equal(t, StatusDraw, g.Status())
	require.Equal(t, core.Empty, g.ToMove())
}

func TestAbort(t *testing.T) {
	g := New(9)
	require.ErrorIs(t, g.Abort(core.Black), ErrNotRunning)
	require.NoError(t, g.Start())
	require.NoError(t, g.Abort(core.Black))
	require.Equal(t, StatusWhiteWin, g.Status())
}

func TestSubscribe(t *testing.T) {
	g := New(9)
	events, unsubscribe := g.Subscribe(8)
	require.NoError(t, g.Start())
	_, err := g.TakeMove(core.Point{Row: 4, Col: 4})
	require.NoError(t, err)

	ev := <-events
	require.Equal(t, EventStatus, ev.Type)
	require.Equal(t, StatusOn, ev.Status)
	ev = <-events
	require.Equal(t, EventMoved, ev.Type)
	require.NotNil(t, ev.Move)
	require.Equal(t, core.Point{Row: 4, Col: 4}, ev.Move.Point)
	require.Equal(t, core.White, ev.ToMove)

	unsubscribe()
	unsubscribe()
	_, ok := <-events
	require.False(t, ok)
	g.Reset()
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	g := New(9)
	events, unsubscribe := g.Subscribe(1)
	defer unsubscribe()
	require.NoError(t, g.Start())
	_, err := g.TakeMove(core.Point{Row: 4, Col: 4})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventStatus, (<-events).Type)
}

func TestSnapshot(t *testing.T) {
	g := New(5)
	require.NoError(t, g.Start())
	_, err := g.TakeMove(core.Point{Row: 0, Col: 1})
	require.NoError(t, err)
	snap := g.Snapshot()
	require.True(t, snap.HasLast)
	require.Equal(t, core.Point{Row: 0, Col: 1}, snap.Last.Point)
	require.Equal(t, []string{".X...", ".....", ".....", ".....", "....."}, snap.Rows)
	require.NoError(t, snap.Board.Set(core.Point{Row: 2, Col: 2}, core.White))
	require.Equal(t, 0, g.Board().Count(core.White))
}
