package game

import (
	"errors"
	"fmt"

	"github.com/51721198/gomoku-battle/internal/core"
)

type Status int

const (
	StatusReady Status = iota
	StatusOn
	StatusBlackWin
	StatusWhiteWin
	StatusDraw
)

var statusNames = map[Status]string{
	StatusReady:    "READY",
	StatusOn:       "ON",
	StatusBlackWin: "BLACK_WIN",
	StatusWhiteWin: "WHITE_WIN",
	StatusDraw:     "DRAW",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for status, name := range statusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Finished reports whether the match has a result.
func (s Status) Finished() bool {
	return s == StatusBlackWin || s == StatusWhiteWin || s == StatusDraw
}

func winStatus(s core.Stone) Status {
	if s == core.Black {
		return StatusBlackWin
	}
	return StatusWhiteWin
}

var (
	ErrNotRunning     = errors.New("game not running")
	ErrAlreadyStarted = errors.New("game already started")
)

type Move struct {
	Point core.Point `json:"point"`
	Stone core.Stone `json:"stone"`
	Seq   int        `json:"seq"`
}

// Snapshot is a consistent copy of the game taken under its lock.
type Snapshot struct {
	Status  Status      `json:"status"`
	ToMove  core.Stone  `json:"to_move"`
	Board   *core.Board `json:"-"`
	Moves   []Move      `json:"moves"`
	Size    int         `json:"size"`
	Rows    []string    `json:"rows"`
	HasLast bool        `json:"has_last"`
	Last    Move        `json:"last"`
}
