package core

// WinLength is the number of contiguous stones needed to win.
const WinLength = 5

type Direction struct {
	DRow int
	DCol int
}

var (
	Horizontal   = Direction{DRow: 0, DCol: 1}
	Vertical     = Direction{DRow: 1, DCol: 0}
	Diagonal     = Direction{DRow: 1, DCol: 1}
	AntiDiagonal = Direction{DRow: 1, DCol: -1}
)

// Directions lists the four canonical line vectors. Scans always walk a
// direction and its negation.
var Directions = [4]Direction{Horizontal, Vertical, Diagonal, AntiDiagonal}

func (d Direction) Negate() Direction {
	return Direction{DRow: -d.DRow, DCol: -d.DCol}
}

func NextType(s Stone) Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// ContinuousRun counts the contiguous stones of p's colour through p along d.
// Out-of-range or empty points yield 0.
func ContinuousRun(b *Board, p Point, d Direction) int {
	if !b.InBounds(p) {
		return 0
	}
	target := b.at(p)
	if target == Empty {
		return 0
	}
	count := 1
	count += countDirection(b, p, d, target)
	count += countDirection(b, p, d.Negate(), target)
	return count
}

func countDirection(b *Board, start Point, d Direction, target Stone) int {
	count := 0
	for cur := start.step(d, 1); b.InBounds(cur) && b.at(cur) == target; cur = cur.step(d, 1) {
		count++
	}
	return count
}

func IsWin(b *Board, p Point) bool {
	for _, d := range Directions {
		if ContinuousRun(b, p, d) >= WinLength {
			return true
		}
	}
	return false
}

func IsDraw(b *Board, p Point) bool {
	return b.Full() && !IsWin(b, p)
}

// IsFeasibleLine reports whether own stones and empty cells through p along d
// still leave room for WinLength stones.
func IsFeasibleLine(b *Board, p Point, d Direction) bool {
	if !b.InBounds(p) {
		return false
	}
	target := b.at(p)
	possible := 1
	for _, dir := range [2]Direction{d, d.Negate()} {
		for cur := p.step(dir, 1); b.InBounds(cur) && possible < WinLength; cur = cur.step(dir, 1) {
			s := b.at(cur)
			if s != target && s != Empty {
				break
			}
			possible++
		}
	}
	return possible >= WinLength
}

// LineFeatures describes the shape through a point along one direction.
type LineFeatures struct {
	// Serial counts own stones: the point, both contiguous runs and the
	// larger of the two runs found beyond a single gap.
	Serial int
	// Gap is the number of sides (0..2) that reached an empty cell. Forced to
	// 0 when the line cannot reach WinLength.
	Gap int
	// Spaced is set when a run beyond a gap was credited to Serial.
	Spaced bool
	// OpenEnds counts sides with an empty cell next to the credited stones.
	OpenEnds int
	// Room counts sides of an unspaced shape with a second empty cell past
	// the first one.
	Room int
	// FarPair is set for a lone stone with an own stone exactly two empty
	// cells away and an empty cell past that stone.
	FarPair bool
}

type sideScan struct {
	run      int
	extra    int
	gap      bool
	endEmpty bool
	farPair  bool
}

func scanSide(b *Board, p Point, d Direction, target Stone) sideScan {
	var side sideScan
	cur := p.step(d, 1)
	for b.InBounds(cur) {
		s := b.at(cur)
		if s == target {
			if side.gap {
				side.extra++
			} else {
				side.run++
			}
		} else if s == Empty {
			if side.gap {
				side.endEmpty = true
				if side.extra == 0 {
					next := cur.step(d, 1)
					past := next.step(d, 1)
					side.farPair = b.InBounds(past) && b.at(next) == target && b.at(past) == Empty
				}
				break
			}
			side.gap = true
		} else {
			break
		}
		cur = cur.step(d, 1)
	}
	return side
}

// ScanLineFeatures scans both ways from p tolerating at most one empty cell
// per side. An empty or out-of-range p yields the zero value.
func ScanLineFeatures(b *Board, p Point, d Direction) LineFeatures {
	if !b.InBounds(p) {
		return LineFeatures{}
	}
	target := b.at(p)
	if target == Empty {
		return LineFeatures{}
	}
	fwd := scanSide(b, p, d, target)
	back := scanSide(b, p, d.Negate(), target)

	extra := fwd.extra
	creditFwd := fwd.extra > 0
	if back.extra > fwd.extra {
		extra = back.extra
		creditFwd = false
	}
	f := LineFeatures{
		Serial: 1 + fwd.run + back.run + extra,
		Spaced: extra > 0,
	}
	if fwd.gap {
		f.Gap++
	}
	if back.gap {
		f.Gap++
	}
	if sideOpen(fwd, extra > 0 && creditFwd) {
		f.OpenEnds++
	}
	if sideOpen(back, extra > 0 && !creditFwd) {
		f.OpenEnds++
	}
	if !f.Spaced {
		for _, side := range [2]sideScan{fwd, back} {
			if side.endEmpty {
				f.Room++
			}
		}
	}
	f.FarPair = f.Serial == 1 && (fwd.farPair || back.farPair)
	if !IsFeasibleLine(b, p, d) {
		f.Gap = 0
		f.OpenEnds = 0
		f.Room = 0
	}
	return f
}

func sideOpen(side sideScan, credited bool) bool {
	if credited {
		return side.endEmpty
	}
	return side.gap
}
