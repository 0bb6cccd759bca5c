package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/51721198/gomoku-battle/internal/config"
	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/game"
	"github.com/51721198/gomoku-battle/internal/logging"
	"github.com/51721198/gomoku-battle/internal/metrics"
	"github.com/51721198/gomoku-battle/internal/server"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard backend: REST, websocket stream and metrics",
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address override")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	engineLog := logging.Component(logger, "engine")
	chooser, err := core.NewChooser(cfg.Engine.Core(), core.WithLogger(engineLog), core.WithRecorder(m))
	if err != nil {
		return err
	}
	controller := server.NewController(
		game.New(cfg.Game.BoardSize),
		chooser,
		server.Settings{BlackAI: cfg.Game.BlackAI, WhiteAI: cfg.Game.WhiteAI},
		m,
		logging.Component(logger, "controller"),
	)
	hub := server.NewHub(m, logging.Component(logger, "hub"))
	opts := server.Options{
		Heartbeat:    time.Duration(cfg.Server.HeartbeatMs) * time.Millisecond,
		ClientBuffer: cfg.Server.ClientBuffer,
		Tick:         time.Duration(cfg.Game.TickMs) * time.Millisecond,
		Logger:       logging.Component(logger, "http"),
	}
	if cfg.Server.EnableMetrics {
		opts.Gatherer = reg
	}
	srv := server.New(controller, hub, opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, cfg.Server.Addr)
	})
	if configPath != "" {
		store := config.NewStore(cfg)
		g.Go(func() error {
			err := config.Watch(gctx, configPath, store, logging.Component(logger, "config"), func(next config.Config) {
				applyFlags(cmd, &next)
				reloaded, err := core.NewChooser(next.Engine.Core(), core.WithLogger(engineLog), core.WithRecorder(m))
				if err != nil {
					logger.Warn().Err(err).Msg("engine config rejected")
					return
				}
				controller.SetMover(reloaded)
				logger.Info().Int("depth", next.Engine.Depth).Msg("engine reconfigured")
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}
