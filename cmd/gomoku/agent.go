package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/logging"
	"github.com/51721198/gomoku-battle/internal/protocol"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Speak the line protocol on stdin/stdout; logs go to stderr",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		chooser, err := core.NewChooser(cfg.Engine.Core(), core.WithLogger(logging.Component(logger, "engine")))
		if err != nil {
			return err
		}
		agent := protocol.NewAgent(chooser, cfg.Game.BoardSize, logging.Component(logger, "agent"))
		return agent.Run(ctx, os.Stdin, os.Stdout)
	},
}
