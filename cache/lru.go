package cache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the capacity used when a cache is created with a non-positive size.
const DefaultSize = 256

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
	MaxSize   int
}

// HitRate returns hits / lookups, or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// LRU is a bounded least-recently-used map. A single mutex guards every read and the
// read-modify-write sequences, so GetOrAdd never builds the same key twice.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	cache   *lru.Cache[K, V]
	maxSize int

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewLRU creates a cache holding at most size entries. onEvict, when not nil, runs for
// every entry pushed out by capacity, removed, or purged.
func NewLRU[K comparable, V any](size int, onEvict func(K, V)) (*LRU[K, V], error) {
	if size <= 0 {
		size = DefaultSize
	}

	c := &LRU[K, V]{maxSize: size}
	inner, err := lru.NewWithEvict(size, func(key K, value V) {
		c.evictions++
		if onEvict != nil {
			onEvict(key, value)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	c.cache = inner
	return c, nil
}

// Get returns the cached value and marks it recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(key)
}

func (c *LRU[K, V]) get(key K) (V, bool) {
	v, ok := c.cache.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Add stores value under key and reports whether an older entry was evicted.
func (c *LRU[K, V]) Add(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Add(key, value)
}

// GetOrAdd returns the cached value for key, or builds, stores and returns a new one.
// The boolean is true on a cache hit. build errors are returned and nothing is stored.
func (c *LRU[K, V]) GetOrAdd(key K, build func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.get(key); ok {
		return v, true, nil
	}

	v, err := build()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.cache.Add(key, v)
	return v, false, nil
}

// Contains reports presence without touching recency or counters.
func (c *LRU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Contains(key)
}

// Remove deletes key and reports whether it was present.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Remove(key)
}

// Keys returns the keys from oldest to newest.
func (c *LRU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Keys()
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}

// Purge drops every entry, running the eviction callback for each.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Purge()
}

// Stats returns the current counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.cache.Len(),
		MaxSize:   c.maxSize,
	}
}
