package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/51721198/gomoku-battle/internal/game"
	"github.com/51721198/gomoku-battle/internal/metrics"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Client struct {
	id   string
	send chan []byte
}

func (c *Client) ID() string {
	return c.id
}

// sendJSON drops the message when the client is not keeping up.
func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewHub(m *metrics.Metrics, logger zerolog.Logger) *Hub {
	return &Hub{clients: make(map[*Client]struct{}), metrics: m, logger: logger}
}

func (h *Hub) Register(buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	c := &Client{id: uuid.NewString(), send: make(chan []byte, buffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.ClientConnected()
	}
	h.logger.Debug().Str("client", c.id).Msg("ws client registered")
	return c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	if h.metrics != nil {
		h.metrics.ClientDisconnected()
	}
	h.logger.Debug().Str("client", c.id).Msg("ws client unregistered")
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(kind string, payload any) {
	msg := wsMessage{Type: kind, Payload: mustMarshal(payload)}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.sendJSON(msg)
	}
}

// Relay forwards game events, each followed by a status snapshot, until ctx
// ends or events closes.
func (h *Hub) Relay(ctx context.Context, events <-chan game.Event, status func() StatusResponse) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast("event", ev)
			h.Broadcast("status", status())
		}
	}
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
