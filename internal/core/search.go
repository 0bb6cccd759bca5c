package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const DefaultDecay = 0.9

var (
	ErrInvalidDecay = errors.New("decay must be strictly between 0 and 1")
	ErrInvalidDepth = errors.New("search depth must not be negative")
	ErrInvalidStone = errors.New("stone must be black or white")
	ErrNotPlaced    = errors.New("searched point does not hold the moving stone")
)

type SearchStats struct {
	Nodes       int64 `json:"nodes"`
	Leaves      int64 `json:"leaves"`
	Cutoffs     int64 `json:"cutoffs"`
	CacheProbes int64 `json:"cache_probes"`
	CacheHits   int64 `json:"cache_hits"`
	CacheStores int64 `json:"cache_stores"`
}

func (s *SearchStats) Add(other SearchStats) {
	s.Nodes += other.Nodes
	s.Leaves += other.Leaves
	s.Cutoffs += other.Cutoffs
	s.CacheProbes += other.CacheProbes
	s.CacheHits += other.CacheHits
	s.CacheStores += other.CacheStores
}

// Searcher runs depth-decayed alpha-beta over speculative moves. It owns its
// cache and mutates the boards it is given, so one Searcher serves one search
// at a time.
type Searcher struct {
	eval         Evaluation
	decay        float64
	cacheEnabled bool
	candidates   CandidateOptions
	cache        *SearchCache
	stats        SearchStats
}

type SearchOption func(*Searcher)

func WithDecay(decay float64) SearchOption {
	return func(s *Searcher) {
		s.decay = decay
	}
}

func WithCache(enabled bool) SearchOption {
	return func(s *Searcher) {
		s.cacheEnabled = enabled
	}
}

func WithEvaluation(eval Evaluation) SearchOption {
	return func(s *Searcher) {
		s.eval = eval
	}
}

func WithCandidateOptions(opts CandidateOptions) SearchOption {
	return func(s *Searcher) {
		s.candidates = opts
	}
}

func NewSearcher(opts ...SearchOption) (*Searcher, error) {
	s := &Searcher{
		eval:         DefaultEvaluation(),
		decay:        DefaultDecay,
		cacheEnabled: true,
		candidates:   DefaultCandidateOptions(),
		cache:        NewSearchCache(defaultCacheStripes),
	}
	for _, opt := range opts {
		opt(s)
	}
	if !(s.decay > 0 && s.decay < 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidDecay, s.decay)
	}
	return s, nil
}

func (s *Searcher) Decay() float64 {
	return s.decay
}

func (s *Searcher) Evaluation() Evaluation {
	return s.eval
}

func (s *Searcher) CacheEnabled() bool {
	return s.cacheEnabled
}

func (s *Searcher) CacheLen() int {
	return s.cache.Len()
}

func (s *Searcher) Stats() SearchStats {
	return s.stats
}

func (s *Searcher) ResetStats() {
	s.stats = SearchStats{}
}

// ClearCacheAndSearch empties the cache and scores the move already placed at
// point for moving, looking depth plies ahead. The result and the alpha/beta
// window are expressed from root's point of view. The board is restored
// before returning on every path.
func (s *Searcher) ClearCacheAndSearch(depth int, alpha, beta float64, b *Board, point Point, moving, root Stone, signature string) (float64, error) {
	if depth < 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDepth, depth)
	}
	if moving != Black && moving != White {
		return 0, fmt.Errorf("%w: moving %s", ErrInvalidStone, moving)
	}
	if root != Black && root != White {
		return 0, fmt.Errorf("%w: root %s", ErrInvalidStone, root)
	}
	placed, err := b.Get(point)
	if err != nil {
		return 0, err
	}
	if placed != moving {
		return 0, fmt.Errorf("%w: %v holds %s, want %s", ErrNotPlaced, point, placed, moving)
	}
	s.cache.Clear()
	if moving == root {
		return s.search(depth, alpha, beta, b, point, moving, signature)
	}
	v, err := s.search(depth, -beta, -alpha, b, point, moving, signature)
	return -v, err
}

// search returns the value of the move at p from moving's side. A leaf is
// worth its decayed immediate score, less the opponent's strongest standing
// shape unless the move made five. An inner node is worth the negated best
// reply, decayed once more.
func (s *Searcher) search(depth int, alpha, beta float64, b *Board, p Point, moving Stone, signature string) (float64, error) {
	s.stats.Nodes++
	key := CacheKey{Depth: depth, Signature: signature, Stone: moving}
	if s.cacheEnabled {
		s.stats.CacheProbes++
		if v, ok := s.cache.Probe(key); ok {
			s.stats.CacheHits++
			return v, nil
		}
	}

	score, five := s.eval.PositionScore(b, p)
	if five {
		return s.leaf(key, score*s.decay), nil
	}
	reply := NextType(moving)
	var moves []Point
	if depth > 0 {
		moves = SelectCandidates(b, reply, s.eval, s.candidates)
	}
	if len(moves) == 0 {
		return s.leaf(key, (score-s.eval.Threat(b, reply))*s.decay), nil
	}

	// value = -decay*best, so best must land in (lo, hi) to matter.
	lo, hi := -beta/s.decay, -alpha/s.decay
	best := math.Inf(-1)
	for _, c := range moves {
		v, err := s.searchChild(depth-1, math.Max(lo, best), hi, b, c, reply, signature+pathStep(c))
		if err != nil {
			return 0, err
		}
		if v > best {
			best = v
		}
		if best >= hi {
			s.stats.Cutoffs++
			break
		}
	}
	value := -best * s.decay
	s.store(key, value)
	return value, nil
}

func (s *Searcher) leaf(key CacheKey, value float64) float64 {
	s.stats.Leaves++
	s.store(key, value)
	return value
}

func (s *Searcher) searchChild(depth int, alpha, beta float64, b *Board, p Point, moving Stone, signature string) (float64, error) {
	if err := b.Set(p, moving); err != nil {
		return 0, err
	}
	defer b.Set(p, Empty)
	return s.search(depth, alpha, beta, b, p, moving, signature)
}

func (s *Searcher) store(key CacheKey, value float64) {
	if !s.cacheEnabled {
		return
	}
	s.cache.Store(key, value)
	s.stats.CacheStores++
}

// pathStep is the signature fragment one move appends to its parent's path.
func pathStep(p Point) string {
	return strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col) + ";"
}

// Signature renders a move sequence the way the search extends paths.
func Signature(moves ...Point) string {
	sig := ""
	for _, p := range moves {
		sig += pathStep(p)
	}
	return sig
}
