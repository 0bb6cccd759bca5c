package core

import "sort"

const DefaultNeighborhoodRadius = 2

// CandidateOptions bounds the successor cells the search considers.
type CandidateOptions struct {
	// Radius is the Chebyshev distance from an existing stone a cell must fall
	// within. Values below 1 use DefaultNeighborhoodRadius.
	Radius int `json:"radius" yaml:"radius"`
	// Order sorts candidates by descending immediate score for the mover.
	Order bool `json:"order" yaml:"order"`
	// Limit keeps only the first Limit candidates after ordering; 0 keeps all.
	Limit int `json:"limit" yaml:"limit"`
}

func DefaultCandidateOptions() CandidateOptions {
	return CandidateOptions{Radius: DefaultNeighborhoodRadius, Order: true}
}

// Candidates lists empty cells near existing stones in row-major order. An
// empty board yields its centre.
func Candidates(b *Board, radius int) []Point {
	if radius < 1 {
		radius = DefaultNeighborhoodRadius
	}
	size := b.Size()
	if b.Count(Empty) == size*size {
		center := size / 2
		return []Point{{Row: center, Col: center}}
	}
	near := make([]bool, size*size)
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if b.cells[row*size+col] == Empty {
				continue
			}
			for dr := -radius; dr <= radius; dr++ {
				for dc := -radius; dc <= radius; dc++ {
					p := Point{Row: row + dr, Col: col + dc}
					if b.InBounds(p) {
						near[b.index(p)] = true
					}
				}
			}
		}
	}
	moves := make([]Point, 0, 32)
	for idx, ok := range near {
		if ok && b.cells[idx] == Empty {
			moves = append(moves, Point{Row: idx / size, Col: idx % size})
		}
	}
	return moves
}

type scoredPoint struct {
	point Point
	score float64
}

// OrderCandidates sorts moves best first by the immediate score a stone there
// would give mover plus the score it would give the opponent, so blocks rank
// next to attacks. Ties keep their input order. The board is left unchanged.
func OrderCandidates(b *Board, moves []Point, mover Stone, eval Evaluation) []Point {
	scored := make([]scoredPoint, 0, len(moves))
	for _, p := range moves {
		own, ok := immediateScore(b, p, mover, eval)
		if !ok {
			continue
		}
		opp, _ := immediateScore(b, p, NextType(mover), eval)
		scored = append(scored, scoredPoint{point: p, score: own + opp})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	ordered := make([]Point, len(scored))
	for i, sp := range scored {
		ordered[i] = sp.point
	}
	return ordered
}

func immediateScore(b *Board, p Point, s Stone, eval Evaluation) (float64, bool) {
	if s == Empty {
		return 0, true
	}
	if err := b.Set(p, s); err != nil {
		return 0, false
	}
	score, _ := eval.PositionScore(b, p)
	_ = b.Set(p, Empty)
	return score, true
}

// SelectCandidates applies opts to the board for mover.
func SelectCandidates(b *Board, mover Stone, eval Evaluation, opts CandidateOptions) []Point {
	moves := Candidates(b, opts.Radius)
	if opts.Order {
		moves = OrderCandidates(b, moves, mover, eval)
	}
	if opts.Limit > 0 && len(moves) > opts.Limit {
		moves = moves[:opts.Limit]
	}
	return moves
}
