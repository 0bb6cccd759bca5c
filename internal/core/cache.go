package core

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const defaultCacheStripes = 64

// CacheKey identifies a node by its path from the search root, not by board
// content. Two move orders reaching the same board are distinct entries.
type CacheKey struct {
	Depth     int
	Signature string
	Stone     Stone
}

type CacheStats struct {
	Probes int64 `json:"probes"`
	Hits   int64 `json:"hits"`
	Stores int64 `json:"stores"`
}

type cacheStripe struct {
	mu      sync.RWMutex
	entries map[CacheKey]float64
}

// SearchCache is a striped map of node values. Locking is per stripe so
// several searchers can share one instance.
type SearchCache struct {
	stripes []cacheStripe
	mask    uint64
	probes  atomic.Int64
	hits    atomic.Int64
	stores  atomic.Int64
}

// NewSearchCache rounds stripes up to a power of two; values below 1 use a
// default.
func NewSearchCache(stripes int) *SearchCache {
	if stripes < 1 {
		stripes = defaultCacheStripes
	}
	n := 1
	for n < stripes {
		n *= 2
	}
	c := &SearchCache{
		stripes: make([]cacheStripe, n),
		mask:    uint64(n - 1),
	}
	for i := range c.stripes {
		c.stripes[i].entries = make(map[CacheKey]float64)
	}
	return c
}

func (c *SearchCache) stripeFor(key CacheKey) *cacheStripe {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key.Signature))
	sum := h.Sum64() ^ uint64(key.Depth)<<8 ^ uint64(key.Stone)
	return &c.stripes[sum&c.mask]
}

func (c *SearchCache) Probe(key CacheKey) (float64, bool) {
	c.probes.Add(1)
	stripe := c.stripeFor(key)
	stripe.mu.RLock()
	value, ok := stripe.entries[key]
	stripe.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	}
	return value, ok
}

func (c *SearchCache) Store(key CacheKey, value float64) {
	stripe := c.stripeFor(key)
	stripe.mu.Lock()
	stripe.entries[key] = value
	stripe.mu.Unlock()
	c.stores.Add(1)
}

// Clear drops every entry and resets the counters.
func (c *SearchCache) Clear() {
	c.lockAll()
	defer c.unlockAll()
	for i := range c.stripes {
		c.stripes[i].entries = make(map[CacheKey]float64)
	}
	c.probes.Store(0)
	c.hits.Store(0)
	c.stores.Store(0)
}

func (c *SearchCache) Len() int {
	count := 0
	for i := range c.stripes {
		c.stripes[i].mu.RLock()
		count += len(c.stripes[i].entries)
		c.stripes[i].mu.RUnlock()
	}
	return count
}

func (c *SearchCache) Stats() CacheStats {
	return CacheStats{
		Probes: c.probes.Load(),
		Hits:   c.hits.Load(),
		Stores: c.stores.Load(),
	}
}

func (c *SearchCache) lockAll() {
	for i := range c.stripes {
		c.stripes[i].mu.Lock()
	}
}

func (c *SearchCache) unlockAll() {
	for i := len(c.stripes) - 1; i >= 0; i-- {
		c.stripes[i].mu.Unlock()
	}
}
