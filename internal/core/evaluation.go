package core

import (
	"errors"
	"fmt"
)

var ErrNonMonotonic = errors.New("evaluation weights must strictly increase with pattern rank")

// EvaluationWeights holds one score per rank tier. Categories sharing a rank
// share a weight.
type EvaluationWeights struct {
	Others       float64 `json:"others" yaml:"others"`
	WeakTwo      float64 `json:"weak_two" yaml:"weak_two"`
	OpenTwo      float64 `json:"open_two" yaml:"open_two"`
	WeakThree    float64 `json:"weak_three" yaml:"weak_three"`
	OpenThree    float64 `json:"open_three" yaml:"open_three"`
	HalfOpenFour float64 `json:"half_open_four" yaml:"half_open_four"`
	OpenFour     float64 `json:"open_four" yaml:"open_four"`
	Five         float64 `json:"five" yaml:"five"`
}

func DefaultEvaluationWeights() EvaluationWeights {
	return EvaluationWeights{
		Others:       0,
		WeakTwo:      10,
		OpenTwo:      50,
		WeakThree:    100,
		OpenThree:    500,
		HalfOpenFour: 1000,
		OpenFour:     10000,
		Five:         100000000,
	}
}

// Evaluation maps each pattern to its static score. It is immutable once built.
type Evaluation struct {
	scores [patternCount]float64
}

func NewEvaluation(w EvaluationWeights) (Evaluation, error) {
	tiers := []float64{w.Others, w.WeakTwo, w.OpenTwo, w.WeakThree, w.OpenThree, w.HalfOpenFour, w.OpenFour, w.Five}
	for i := 1; i < len(tiers); i++ {
		if !(tiers[i] > tiers[i-1]) {
			return Evaluation{}, fmt.Errorf("%w: tier %d (%g) <= tier %d (%g)", ErrNonMonotonic, i, tiers[i], i-1, tiers[i-1])
		}
	}
	// A five has to outweigh four open fours through the same point.
	if float64(Five.Stones())*w.Five <= float64(len(Directions)*OpenFour.Stones())*w.OpenFour {
		return Evaluation{}, fmt.Errorf("%w: five (%g) does not dominate open four (%g)", ErrNonMonotonic, w.Five, w.OpenFour)
	}
	var e Evaluation
	for _, p := range Patterns {
		e.scores[p] = tiers[p.Rank()]
	}
	return e, nil
}

func DefaultEvaluation() Evaluation {
	e, err := NewEvaluation(DefaultEvaluationWeights())
	if err != nil {
		panic(err)
	}
	return e
}

func (e Evaluation) Score(p Pattern) float64 {
	if !p.valid() {
		return 0
	}
	return e.scores[p]
}

// PositionScore sums Stones*Score over the four directions through p and
// reports whether any of them is a five.
func (e Evaluation) PositionScore(b *Board, p Point) (float64, bool) {
	total := 0.0
	five := false
	for _, d := range Directions {
		pattern := ClassifyAt(b, p, d)
		if pattern == Five {
			five = true
		}
		total += float64(pattern.Stones()) * e.scores[pattern]
	}
	return total, five
}

// Threat is the highest position score among s's stones on b.
func (e Evaluation) Threat(b *Board, s Stone) float64 {
	best := 0.0
	for row := 0; row < b.size; row++ {
		for col := 0; col < b.size; col++ {
			p := Point{Row: row, Col: col}
			if b.at(p) != s {
				continue
			}
			if v, _ := e.PositionScore(b, p); v > best {
				best = v
			}
		}
	}
	return best
}
