// Package cache provides the bounded, thread-safe LRU used for schema caching.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Capacity  int
}

// LRU is a size-bounded least-recently-used cache whose GetOrCreate builds
// each missing value at most once, even under concurrent first use.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[K, V]
	capacity int
	purging  bool
	onEvict  func(K, V)

	hits, misses, evictions atomic.Uint64
}

// New creates an LRU holding at most size entries. onEvict, when non-nil,
// is called for entries dropped to make room (not for Purge).
func New[K comparable, V any](size int, onEvict func(K, V)) (*LRU[K, V], error) {
	c := &LRU[K, V]{capacity: size, onEvict: onEvict}
	l, err := simplelru.NewLRU[K, V](size, c.evicted)
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// evicted runs with c.mu held.
func (c *LRU[K, V]) evicted(k K, v V) {
	if c.purging {
		return
	}
	c.evictions.Add(1)
	if c.onEvict != nil {
		c.onEvict(k, v)
	}
}

// Get returns the cached value for k and marks it recently used.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(k)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// GetOrCreate returns the value for k, calling create on a miss. The lock is
// held while create runs, so concurrent callers for any key wait and at most
// one value is ever built per key. A failing (or panicking) create leaves
// the cache unchanged.
func (c *LRU[K, V]) GetOrCreate(k K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lru.Get(k); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.lru.Add(k, v)
	return v, nil
}

// Contains reports whether k is cached without touching recency or counters.
func (c *LRU[K, V]) Contains(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(k)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Resize changes the capacity, evicting the oldest entries when shrinking.
// It returns the number of evicted entries.
func (c *LRU[K, V]) Resize(size int) int {
	if size <= 0 {
		size = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = size
	return c.lru.Resize(size)
}

// Purge drops every entry. Counters are kept.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purging = true
	c.lru.Purge()
	c.purging = false
}

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	n, capacity := c.lru.Len(), c.capacity
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       n,
		Capacity:  capacity,
	}
}
