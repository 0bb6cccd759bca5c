package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/51721198/gomoku-battle/internal/battle"
	"github.com/51721198/gomoku-battle/internal/core"
	"github.com/51721198/gomoku-battle/internal/logging"
	"github.com/51721198/gomoku-battle/internal/protocol"
)

const processExitGrace = 2 * time.Second

var (
	playerA    string
	playerB    string
	depthA     int
	depthB     int
	games      int
	parallel   int
	jsonOutput bool

	battleCmd = &cobra.Command{
		Use:   "battle",
		Short: "Play a series between two engines or agent executables",
		Long: `Each side is "engine" for the in-process engine, or a command line that
starts an agent speaking the line protocol on stdin/stdout.`,
		RunE: runBattle,
	}
)

func init() {
	f := battleCmd.Flags()
	f.StringVar(&playerA, "a", "engine", "first player")
	f.StringVar(&playerB, "b", "engine", "second player")
	f.IntVar(&depthA, "a-depth", -1, "search depth for an engine A, -1 uses config")
	f.IntVar(&depthB, "b-depth", -1, "search depth for an engine B, -1 uses config")
	f.IntVar(&games, "games", 0, "number of games, 0 uses config")
	f.IntVar(&parallel, "parallel", 0, "games played at once, 0 uses config")
	f.BoolVar(&jsonOutput, "json", false, "print the full tally as JSON")
}

func runBattle(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	series := battle.SeriesConfig{
		Games:        cfg.Battle.Games,
		Parallel:     cfg.Battle.Parallel,
		Size:         cfg.Game.BoardSize,
		OpeningPlies: cfg.Battle.OpeningMoves,
		Seed:         cfg.Battle.Seed,
		MoveTimeout:  time.Duration(cfg.Battle.MoveTimeout) * time.Millisecond,
	}
	if games > 0 {
		series.Games = games
	}
	if parallel > 0 {
		series.Parallel = parallel
	}

	a, err := playerFactory("A", playerA, depthA)
	if err != nil {
		return err
	}
	b, err := playerFactory("B", playerB, depthB)
	if err != nil {
		return err
	}
	tally, err := battle.RunSeries(ctx, series, a, b, logging.Component(logger, "battle"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tally)
	}
	fmt.Fprintf(out, "A (%s): %d wins\nB (%s): %d wins\ndraws: %d\nforfeits: %d\n",
		playerA, tally.AWins, playerB, tally.BWins, tally.Draws, tally.Forfeits)
	return nil
}

func playerFactory(name, spec string, depth int) (battle.PlayerFactory, error) {
	if spec == "" || spec == "engine" {
		engine := cfg.Engine.Core()
		if depth >= 0 {
			engine.Depth = depth
		}
		return battle.EngineFactory(name, engine, core.WithLogger(logging.Component(logger, "engine"))), nil
	}
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, errors.New("empty player command")
	}
	return func() (battle.Player, error) {
		p, err := startProcess(name, fields)
		if err != nil {
			return nil, err
		}
		return p, nil
	}, nil
}

// processPlayer is an agent executable driven over its stdio.
type processPlayer struct {
	*protocol.RemotePlayer
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func startProcess(name string, argv []string) (*processPlayer, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	return &processPlayer{
		RemotePlayer: protocol.NewRemotePlayer(name, stdout, stdin),
		cmd:          cmd,
		stdin:        stdin,
	}, nil
}

// Close ends the agent's input and kills it if it does not exit in time.
func (p *processPlayer) Close() error {
	_ = p.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(processExitGrace):
		_ = p.cmd.Process.Kill()
		return <-done
	}
}
