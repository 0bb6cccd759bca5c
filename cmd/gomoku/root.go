package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/51721198/gomoku-battle/internal/config"
	"github.com/51721198/gomoku-battle/internal/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	depth      int
	workers    int
	limit      int

	cfg    config.Config
	logger zerolog.Logger

	rootCmd = &cobra.Command{
		Use:           "gomoku",
		Short:         "Gomoku alpha-beta engine, dashboard backend and battle runner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &loaded)
			if err := loaded.Validate(); err != nil {
				return err
			}
			cfg = loaded
			logger, err = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)
			return err
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML or JSON config file")
	pf.StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "console", "console or json")
	pf.IntVar(&depth, "depth", 0, "search depth override")
	pf.IntVar(&workers, "workers", 0, "root-parallel workers override")
	pf.IntVar(&limit, "limit", 0, "candidate limit override, 0 keeps all")

	rootCmd.AddCommand(serveCmd, agentCmd, battleCmd)
}

// applyFlags lets explicitly set flags win over file and environment values.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	if flags.Changed("depth") {
		c.Engine.Depth = depth
	}
	if flags.Changed("workers") {
		c.Engine.Workers = workers
	}
	if flags.Changed("limit") {
		c.Engine.Limit = limit
	}
}
