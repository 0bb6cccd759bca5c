package core

import (
	"fmt"
	"sync"
	"testing"
)

func TestSearchCacheProbeStoreClear(t *testing.T) {
	c := NewSearchCache(3)
	if len(c.stripes) != 4 {
		t.Fatalf("expected stripes rounded to 4, got %d", len(c.stripes))
	}
	key := CacheKey{Depth: 2, Signature: Signature(Point{Row: 1, Col: 2}), Stone: Black}
	if _, ok := c.Probe(key); ok {
		t.Fatalf("expected miss on empty cache")
	}
	c.Store(key, 42.5)
	if v, ok := c.Probe(key); !ok || v != 42.5 {
		t.Fatalf("expected hit with 42.5, got %v (%v)", v, ok)
	}
	other := key
	other.Stone = White
	if _, ok := c.Probe(other); ok {
		t.Fatalf("expected stone to be part of the key")
	}
	stats := c.Stats()
	if stats.Probes != 3 || stats.Hits != 1 || stats.Stores != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	c.Clear()
	if c.Len() != 0 || c.Stats() != (CacheStats{}) {
		t.Fatalf("expected empty cache after clear, got len %d stats %+v", c.Len(), c.Stats())
	}
}

func TestSignatureDistinguishesOrder(t *testing.T) {
	a := Signature(Point{Row: 1, Col: 2}, Point{Row: 3, Col: 4})
	b := Signature(Point{Row: 3, Col: 4}, Point{Row: 1, Col: 2})
	if a == b {
		t.Fatalf("expected move order to change the signature")
	}
	if a != "1,2;3,4;" {
		t.Fatalf("expected 1,2;3,4;, got %q", a)
	}
}

func TestSearchCacheConcurrentProbeStore(t *testing.T) {
	c := NewSearchCache(16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := CacheKey{Depth: i % 4, Signature: fmt.Sprintf("%d,%d;", worker, i), Stone: Black}
				c.Store(key, float64(i))
				c.Probe(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() != 8*500 {
		t.Fatalf("expected %d entries, got %d", 8*500, c.Len())
	}
}
