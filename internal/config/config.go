package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/51721198/gomoku-battle/internal/core"
)

var ErrInvalid = errors.New("invalid config")

var validate = validator.New(validator.WithRequiredStructEnabled())

type Config struct {
	Engine EngineConfig `json:"engine" yaml:"engine"`
	Game   GameConfig   `json:"game" yaml:"game"`
	Server ServerConfig `json:"server" yaml:"server"`
	Battle BattleConfig `json:"battle" yaml:"battle"`
	Log    LogConfig    `json:"log" yaml:"log"`
}

type EngineConfig struct {
	Depth        int                    `json:"depth" yaml:"depth" validate:"gte=0,lte=8"`
	Decay        float64                `json:"decay" yaml:"decay" validate:"gt=0,lt=1"`
	CacheEnabled bool                   `json:"cache_enabled" yaml:"cache_enabled"`
	Workers      int                    `json:"workers" yaml:"workers" validate:"gte=1,lte=64"`
	Radius       int                    `json:"radius" yaml:"radius" validate:"gte=1,lte=4"`
	Order        bool                   `json:"order" yaml:"order"`
	Limit        int                    `json:"limit" yaml:"limit" validate:"gte=0"`
	Weights      core.EvaluationWeights `json:"weights" yaml:"weights"`
}

type GameConfig struct {
	BoardSize int  `json:"board_size" yaml:"board_size" validate:"gte=5,lte=25"`
	BlackAI   bool `json:"black_ai" yaml:"black_ai"`
	WhiteAI   bool `json:"white_ai" yaml:"white_ai"`
	TickMs    int  `json:"tick_ms" yaml:"tick_ms" validate:"gte=10"`
}

type ServerConfig struct {
	Addr          string `json:"addr" yaml:"addr" validate:"required"`
	HeartbeatMs   int    `json:"heartbeat_ms" yaml:"heartbeat_ms" validate:"gte=100"`
	ClientBuffer  int    `json:"client_buffer" yaml:"client_buffer" validate:"gte=1"`
	EnableMetrics bool   `json:"enable_metrics" yaml:"enable_metrics"`
}

type BattleConfig struct {
	Games        int    `json:"games" yaml:"games" validate:"gte=1"`
	Parallel     int    `json:"parallel" yaml:"parallel" validate:"gte=1"`
	OpeningMoves int    `json:"opening_moves" yaml:"opening_moves" validate:"gte=0,lte=10"`
	Seed         uint64 `json:"seed" yaml:"seed"`
	MoveTimeout  int    `json:"move_timeout_ms" yaml:"move_timeout_ms" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"oneof=console json"`
}

func Default() Config {
	engine := core.DefaultEngineConfig()
	return Config{
		Engine: EngineConfig{
			Depth:        engine.Depth,
			Decay:        engine.Decay,
			CacheEnabled: engine.CacheEnabled,
			Workers:      engine.Workers,
			Radius:       engine.Candidates.Radius,
			Order:        engine.Candidates.Order,
			Limit:        engine.Candidates.Limit,
			Weights:      engine.Weights,
		},
		Game: GameConfig{
			BoardSize: 15,
			BlackAI:   false,
			WhiteAI:   true,
			TickMs:    100,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			HeartbeatMs:   15000,
			ClientBuffer:  16,
			EnableMetrics: true,
		},
		Battle: BattleConfig{
			Games:        2,
			Parallel:     2,
			OpeningMoves: 2,
			Seed:         1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Core converts the engine section for core.NewChooser.
func (e EngineConfig) Core() core.EngineConfig {
	return core.EngineConfig{
		Depth:        e.Depth,
		Decay:        e.Decay,
		CacheEnabled: e.CacheEnabled,
		Workers:      e.Workers,
		Candidates: core.CandidateOptions{
			Radius: e.Radius,
			Order:  e.Order,
			Limit:  e.Limit,
		},
		Weights: e.Weights,
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := core.NewEvaluation(c.Engine.Weights); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Load applies defaults, then the file at path (YAML, falling back to JSON),
// then GOMOKU_* environment overrides, and validates the result. A missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	envInt("GOMOKU_DEPTH", &cfg.Engine.Depth)
	envInt("GOMOKU_WORKERS", &cfg.Engine.Workers)
	envInt("GOMOKU_LIMIT", &cfg.Engine.Limit)
	envInt("GOMOKU_BOARD_SIZE", &cfg.Game.BoardSize)
	envInt("GOMOKU_BATTLE_GAMES", &cfg.Battle.Games)
	envBool("GOMOKU_CACHE", &cfg.Engine.CacheEnabled)
	envBool("GOMOKU_BLACK_AI", &cfg.Game.BlackAI)
	envBool("GOMOKU_WHITE_AI", &cfg.Game.WhiteAI)
	if v := os.Getenv("GOMOKU_DECAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.Decay = f
		}
	}
	if v := os.Getenv("GOMOKU_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GOMOKU_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GOMOKU_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*dst = i
		}
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Store holds the live config for readers while Watch swaps it.
type Store struct {
	mu     sync.RWMutex
	config Config
}

func NewStore(cfg Config) *Store {
	return &Store{config: cfg}
}

func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *Store) Update(cfg Config) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
}
