// Package server exposes a running match over HTTP and websockets.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/game"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Heartbeat    time.Duration
	ClientBuffer int
	Tick         time.Duration
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

type Server struct {
	controller  *Controller
	hub         *Hub
	opts        Options
	logger      zerolog.Logger
	events      <-chan game.Event
	unsubscribe func()
	router      chi.Router
}

type movePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func New(controller *Controller, hub *Hub, opts Options) *Server {
	if opts.ClientBuffer < 1 {
		opts.ClientBuffer = 16
	}
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	s := &Server{controller: controller, hub: hub, opts: opts, logger: opts.Logger}
	s.events, s.unsubscribe = controller.Game().Subscribe(64)
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings *Settings `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		settings := s.controller.Settings()
		if payload.Settings != nil {
			settings = *payload.Settings
		}
		if err := s.controller.StartGame(settings); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		s.controller.Stop()
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload movePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		_, err := s.controller.ApplyHumanMove(core.Point{Row: payload.Row, Col: payload.Col})
		switch {
		case errors.Is(err, ErrNotHumanTurn), errors.Is(err, game.ErrNotRunning):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		case err != nil:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, s.controller.Status())
	})

	r.Get("/ws/", s.serveWS)

	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	client := s.hub.Register(s.opts.ClientBuffer)
	client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.controller.Status())})

	hb := newHeartbeat(conn, s.opts.Heartbeat)
	go func() {
		defer conn.Close()
		if err := hb.pump(client.send); err != nil {
			s.logger.Debug().Err(err).Str("client", client.ID()).Msg("ws write ended")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			s.hub.Unregister(client)
			return
		}
		_ = hb.extend()
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case "request_status":
			client.sendJSON(wsMessage{Type: "status", Payload: mustMarshal(s.controller.Status())})
		}
	}
}

// Relay pushes game events to websocket clients until ctx ends.
func (s *Server) Relay(ctx context.Context) {
	defer s.unsubscribe()
	s.hub.Relay(ctx, s.events, s.controller.Status)
}

// Serve listens on addr, relays events and drives engine moves until ctx ends.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.Relay(gctx)
		return nil
	})
	g.Go(func() error {
		s.controller.RunTicker(gctx, s.opts.Tick)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn().Err(err).Msg("graceful shutdown failed")
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
