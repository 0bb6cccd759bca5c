package server

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	DefaultHeartbeat = 30 * time.Second

	writeWait = 10 * time.Second
)

// heartbeat pings a websocket peer with control frames and fails reads once
// the peer misses two intervals without a pong or a message.
type heartbeat struct {
	conn     *websocket.Conn
	interval time.Duration
}

func newHeartbeat(conn *websocket.Conn, interval time.Duration) *heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeat
	}
	h := &heartbeat{conn: conn, interval: interval}
	conn.SetPongHandler(func(string) error {
		return h.extend()
	})
	_ = h.extend()
	return h
}

// extend pushes the read deadline out after any sign of life.
func (h *heartbeat) extend() error {
	return h.conn.SetReadDeadline(time.Now().Add(2 * h.interval))
}

// pump writes queued messages under a deadline and pings every interval. A
// closed send ends the stream with a normal close frame.
func (h *heartbeat) pump(send <-chan []byte) error {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-send:
			deadline := time.Now().Add(writeWait)
			if !ok {
				closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = h.conn.WriteControl(websocket.CloseMessage, closing, deadline)
				return nil
			}
			if err := h.conn.SetWriteDeadline(deadline); err != nil {
				return err
			}
			if err := h.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := h.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
