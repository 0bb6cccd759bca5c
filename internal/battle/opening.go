package battle

import (
	"golang.org/x/exp/rand"

	"github.com/51721198/gomoku-battle/internal/core"
)

// Opening is a fixed prefix of moves played alternately from Black.
type Opening []core.Point

var openingOffsets = []core.Point{
	{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: 1}, {Row: -1, Col: 0}, {Row: 0, Col: -1},
	{Row: 1, Col: 1}, {Row: -1, Col: -1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: 2, Col: 0}, {Row: 0, Col: 2},
}

// RandomOpening draws plies distinct cells near the centre. The result depends
// only on rng's state.
func RandomOpening(rng *rand.Rand, size, plies int) Opening {
	if plies <= 0 || size < 1 {
		return nil
	}
	center := size / 2
	used := make(map[core.Point]bool, plies)
	opening := make(Opening, 0, plies)
	for attempts := 0; len(opening) < plies && attempts < plies*64; attempts++ {
		off := openingOffsets[rng.Intn(len(openingOffsets))]
		p := core.Point{Row: center + off.Row, Col: center + off.Col}
		if p.Row < 0 || p.Col < 0 || p.Row >= size || p.Col >= size || used[p] {
			continue
		}
		used[p] = true
		opening = append(opening, p)
	}
	return opening
}

// OpeningSuite builds count openings from one seed.
func OpeningSuite(seed uint64, size, plies, count int) []Opening {
	rng := rand.New(rand.NewSource(seed))
	suite := make([]Opening, count)
	for i := range suite {
		suite[i] = RandomOpening(rng, size, plies)
	}
	return suite
}
