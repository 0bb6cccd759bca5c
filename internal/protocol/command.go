// Package protocol implements the line-oriented text protocol spoken between
// a match driver and an engine agent.
//
// Driver to agent:
//
//	CLEAR
//	NEXT_BLACK | NEXT_WHITE
//	PLAY_BLACK row col | PLAY_WHITE row col
//	SHOW n         followed by n rows of '.', 'X', 'O'
//
// Agent to driver:
//
//	PUT row col
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/51721198/gomoku-battle/internal/core"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrMalformed      = errors.New("malformed command")
)

type Kind int

const (
	Clear Kind = iota
	NextBlack
	NextWhite
	PlayBlack
	PlayWhite
	Show
	Put
)

var kindNames = [...]string{
	Clear:     "CLEAR",
	NextBlack: "NEXT_BLACK",
	NextWhite: "NEXT_WHITE",
	PlayBlack: "PLAY_BLACK",
	PlayWhite: "PLAY_WHITE",
	Show:      "SHOW",
	Put:       "PUT",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

type Command struct {
	Kind  Kind
	Point core.Point
	// Board is set for Show.
	Board *core.Board
}

// NextFor is the NEXT command asking s to move.
func NextFor(s core.Stone) Command {
	if s == core.White {
		return Command{Kind: NextWhite}
	}
	return Command{Kind: NextBlack}
}

// PlayFor is the PLAY command reporting a move by s.
func PlayFor(s core.Stone, p core.Point) Command {
	if s == core.White {
		return Command{Kind: PlayWhite, Point: p}
	}
	return Command{Kind: PlayBlack, Point: p}
}

// Stone is the colour a NEXT or PLAY command refers to.
func (c Command) Stone() core.Stone {
	switch c.Kind {
	case NextBlack, PlayBlack:
		return core.Black
	case NextWhite, PlayWhite:
		return core.White
	default:
		return core.Empty
	}
}

// Format renders c without a trailing newline. Show spans several lines.
func Format(c Command) string {
	switch c.Kind {
	case PlayBlack, PlayWhite, Put:
		return fmt.Sprintf("%s %d %d", c.Kind, c.Point.Row, c.Point.Col)
	case Show:
		if c.Board == nil {
			return "SHOW 0"
		}
		return fmt.Sprintf("SHOW %d\n%s", c.Board.Size(), c.Board.String())
	default:
		return c.Kind.String()
	}
}

// parseHeader parses a single line. For Show the returned int is the number
// of board rows that follow.
func parseHeader(line string) (Command, int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, 0, fmt.Errorf("%w: empty line", ErrMalformed)
	}
	kind := Kind(-1)
	for k, name := range kindNames {
		if strings.EqualFold(fields[0], name) {
			kind = Kind(k)
			break
		}
	}
	args := fields[1:]
	switch kind {
	case Clear, NextBlack, NextWhite:
		if len(args) != 0 {
			return Command{}, 0, fmt.Errorf("%w: %s takes no arguments", ErrMalformed, kind)
		}
		return Command{Kind: kind}, 0, nil
	case PlayBlack, PlayWhite, Put:
		p, err := parsePoint(args)
		if err != nil {
			return Command{}, 0, fmt.Errorf("%w: %s: %v", ErrMalformed, kind, err)
		}
		return Command{Kind: kind, Point: p}, 0, nil
	case Show:
		// Older drivers send "SHOW rows cols"; the board is square either way.
		if len(args) < 1 || len(args) > 2 {
			return Command{}, 0, fmt.Errorf("%w: SHOW wants a size", ErrMalformed)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return Command{}, 0, fmt.Errorf("%w: SHOW size %q", ErrMalformed, args[0])
		}
		if len(args) == 2 && args[1] != args[0] {
			return Command{}, 0, fmt.Errorf("%w: SHOW board must be square", ErrMalformed)
		}
		return Command{Kind: Show}, n, nil
	default:
		return Command{}, 0, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
}

func parsePoint(args []string) (core.Point, error) {
	if len(args) != 2 {
		return core.Point{}, fmt.Errorf("want row and col, got %d values", len(args))
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return core.Point{}, err
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return core.Point{}, err
	}
	return core.Point{Row: row, Col: col}, nil
}

// Parse decodes one single-line command. Use a Decoder for SHOW.
func Parse(line string) (Command, error) {
	cmd, rows, err := parseHeader(line)
	if err != nil {
		return Command{}, err
	}
	if rows > 0 {
		return Command{}, fmt.Errorf("%w: SHOW needs its board rows", ErrMalformed)
	}
	return cmd, nil
}

type Decoder struct {
	scanner *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// Decode reads the next command, skipping blank lines. It returns io.EOF
// once the input is exhausted.
func (d *Decoder) Decode() (Command, error) {
	line, err := d.nextLine()
	if err != nil {
		return Command{}, err
	}
	cmd, n, err := parseHeader(line)
	if err != nil {
		return Command{}, err
	}
	if cmd.Kind != Show {
		return cmd, nil
	}
	rows := make([]string, 0, n)
	for len(rows) < n {
		row, err := d.nextLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Command{}, fmt.Errorf("%w: SHOW ended after %d of %d rows", ErrMalformed, len(rows), n)
			}
			return Command{}, err
		}
		rows = append(rows, row)
	}
	board, err := core.ParseRows(rows)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	cmd.Board = board
	return cmd, nil
}

func (d *Decoder) nextLine() (string, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := d.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

type Encoder struct {
	w *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode writes c followed by a newline and flushes.
func (e *Encoder) Encode(c Command) error {
	if _, err := e.w.WriteString(Format(c) + "\n"); err != nil {
		return err
	}
	return e.w.Flush()
}
