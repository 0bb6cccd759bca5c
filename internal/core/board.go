package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOutOfBounds = errors.New("coordinates out of bounds")
	ErrOccupied    = errors.New("cell already occupied")
	ErrBoardFormat = errors.New("malformed board text")
)

type Stone int

const (
	Empty Stone = iota
	Black
	White
)

func (s Stone) String() string {
	switch s {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return "Empty"
	}
}

func (s Stone) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stone) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "black":
		*s = Black
	case "white":
		*s = White
	case "empty", "":
		*s = Empty
	default:
		return fmt.Errorf("unknown stone %q", text)
	}
	return nil
}

// Char is the single-character board notation used by String and ParseBoard.
func (s Stone) Char() byte {
	switch s {
	case Black:
		return 'X'
	case White:
		return 'O'
	default:
		return '.'
	}
}

func stoneFromChar(c byte) (Stone, bool) {
	switch c {
	case 'X', 'x', 'B', 'b':
		return Black, true
	case 'O', 'o', 'W', 'w':
		return White, true
	case '.', '_', '+':
		return Empty, true
	default:
		return Empty, false
	}
}

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

func (p Point) step(d Direction, n int) Point {
	return Point{Row: p.Row + d.DRow*n, Col: p.Col + d.DCol*n}
}

// Board is a square grid of stones. The zero value is unusable; use NewBoard.
type Board struct {
	size   int
	cells  []Stone
	counts [3]int
}

func NewBoard(size int) *Board {
	if size < 1 {
		size = 1
	}
	b := &Board{size: size, cells: make([]Stone, size*size)}
	b.counts[Empty] = size * size
	return b
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) InBounds(p Point) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < b.size && p.Col < b.size
}

func (b *Board) Get(p Point) (Stone, error) {
	if !b.InBounds(p) {
		return Empty, fmt.Errorf("%w: %v on %dx%d board", ErrOutOfBounds, p, b.size, b.size)
	}
	return b.cells[b.index(p)], nil
}

// Set is the only mutator. Placing a stone on an occupied cell is rejected;
// setting Empty always clears the cell.
func (b *Board) Set(p Point, s Stone) error {
	if !b.InBounds(p) {
		return fmt.Errorf("%w: %v on %dx%d board", ErrOutOfBounds, p, b.size, b.size)
	}
	idx := b.index(p)
	prev := b.cells[idx]
	if s != Empty && prev != Empty {
		return fmt.Errorf("%w: %v holds %s", ErrOccupied, p, prev)
	}
	b.counts[prev]--
	b.counts[s]++
	b.cells[idx] = s
	return nil
}

func (b *Board) Count(s Stone) int {
	if s < Empty || s > White {
		return 0
	}
	return b.counts[s]
}

func (b *Board) Full() bool {
	return b.counts[Empty] == 0
}

func (b *Board) Clone() *Board {
	clone := &Board{size: b.size, counts: b.counts}
	clone.cells = make([]Stone, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.size != other.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// String renders one line per row using '.', 'X' and 'O'.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(b.size * (b.size + 1))
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			sb.WriteByte(b.cells[row*b.size+col].Char())
		}
		if row < b.size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard reads the notation produced by String. Blank lines are ignored.
func ParseBoard(text string) (*Board, error) {
	rows := make([]string, 0, 16)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	return ParseRows(rows)
}

func ParseRows(rows []string) (*Board, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrBoardFormat)
	}
	b := NewBoard(len(rows))
	for r, line := range rows {
		if len(line) != len(rows) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBoardFormat, r, len(line), len(rows))
		}
		for c := 0; c < len(line); c++ {
			s, ok := stoneFromChar(line[c])
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q at %d,%d", ErrBoardFormat, line[c], r, c)
			}
			if s == Empty {
				continue
			}
			if err := b.Set(Point{Row: r, Col: c}, s); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// at reads without bounds checking; callers guarantee InBounds.
func (b *Board) at(p Point) Stone {
	return b.cells[b.index(p)]
}

func (b *Board) index(p Point) int {
	return p.Row*b.size + p.Col
}
