package core

// Pattern is a line shape category. Strength comes from the Rank in
// patternInfo, never from the constant's value.
type Pattern int

const (
	Others Pattern = iota
	HalfOpenTwo
	TwoSpacedOpenTwo
	OneSpacedOpenTwo
	OpenTwo
	HalfOpenThree
	SpacedOpenThree
	OpenThree
	HalfOpenFour
	OpenFour
	Five
	patternCount
)

type patternMeta struct {
	name   string
	rank   int
	stones int
}

var patternInfo = [patternCount]patternMeta{
	Others:           {name: "OTHERS", rank: 0, stones: 0},
	HalfOpenTwo:      {name: "HALF_OPEN_TWO", rank: 1, stones: 2},
	TwoSpacedOpenTwo: {name: "TWO_SPACED_OPEN_TWO", rank: 1, stones: 2},
	OneSpacedOpenTwo: {name: "ONE_SPACED_OPEN_TWO", rank: 1, stones: 2},
	OpenTwo:          {name: "OPEN_TWO", rank: 2, stones: 2},
	HalfOpenThree:    {name: "HALF_OPEN_THREE", rank: 3, stones: 3},
	SpacedOpenThree:  {name: "SPACED_OPEN_THREE", rank: 3, stones: 3},
	OpenThree:        {name: "OPEN_THREE", rank: 4, stones: 3},
	HalfOpenFour:     {name: "HALF_OPEN_FOUR", rank: 5, stones: 4},
	OpenFour:         {name: "OPEN_FOUR", rank: 6, stones: 4},
	Five:             {name: "FIVE", rank: 7, stones: 5},
}

// Patterns lists every category, weakest first.
var Patterns = [patternCount]Pattern{
	Others, HalfOpenTwo, TwoSpacedOpenTwo, OneSpacedOpenTwo, OpenTwo,
	HalfOpenThree, SpacedOpenThree, OpenThree, HalfOpenFour, OpenFour, Five,
}

func (p Pattern) valid() bool {
	return p >= Others && p < patternCount
}

func (p Pattern) String() string {
	if !p.valid() {
		return "UNKNOWN"
	}
	return patternInfo[p].name
}

func (p Pattern) Rank() int {
	if !p.valid() {
		return -1
	}
	return patternInfo[p].rank
}

// Stones is the minimum stone count the shape represents.
func (p Pattern) Stones() int {
	if !p.valid() {
		return 0
	}
	return patternInfo[p].stones
}

func ParsePattern(name string) (Pattern, bool) {
	for _, p := range Patterns {
		if patternInfo[p].name == name {
			return p, true
		}
	}
	return Others, false
}

func Classify(f LineFeatures) Pattern {
	if f.Serial >= WinLength {
		return Five
	}
	if f.Gap == 0 || f.OpenEnds == 0 {
		return Others
	}
	open := f.OpenEnds >= 2
	switch f.Serial {
	case 4:
		if open && !f.Spaced {
			return OpenFour
		}
		return HalfOpenFour
	case 3:
		if !open {
			return HalfOpenThree
		}
		if f.Spaced {
			return SpacedOpenThree
		}
		if f.Room == 0 {
			return HalfOpenThree
		}
		return OpenThree
	case 2:
		if !open {
			return HalfOpenTwo
		}
		if f.Spaced {
			return OneSpacedOpenTwo
		}
		return OpenTwo
	case 1:
		if open && f.FarPair {
			return TwoSpacedOpenTwo
		}
	}
	return Others
}

// ClassifyAt classifies the shape through p along d.
func ClassifyAt(b *Board, p Point, d Direction) Pattern {
	return Classify(ScanLineFeatures(b, p, d))
}
