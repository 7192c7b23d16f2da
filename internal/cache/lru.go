// Package cache provides a small LRU cache used for prepared statements and
// prepared templates.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the default maximum number of cached entries.
const DefaultCapacity = 1000

// LRU is a thread-safe fixed-capacity cache with least-recently-used
// eviction. The optional evict callback runs for values displaced by Set,
// evicted at capacity, or dropped by Clear, so callers can release resources
// such as prepared statements.
type LRU[V any] struct {
	mu       sync.RWMutex
	capacity int
	items    map[string]*list.Element
	lruList  *list.List
	onEvict  func(V)

	// Metrics using atomic for lock-free access.
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// entry represents a single cached value.
type entry[V any] struct {
	key   string
	value V
}

// New creates an LRU cache. A non-positive capacity falls back to
// DefaultCapacity; onEvict may be nil.
func New[V any](capacity int, onEvict func(V)) *LRU[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lruList:  list.New(),
		onEvict:  onEvict,
	}
}

// Get retrieves a cached value by key. Accessing a value moves it to the
// front of the LRU list.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	// Move to front (most recently used).
	c.lruList.MoveToFront(elem)
	c.hits.Add(1)

	return elem.Value.(*entry[V]).value, true
}

// Set stores a value under key. A displaced value for the same key and the
// least recently used value at capacity both go through the evict callback.
func (c *LRU[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		// Update existing entry and move to front.
		c.lruList.MoveToFront(elem)
		e := elem.Value.(*entry[V])
		if c.onEvict != nil {
			c.onEvict(e.value)
		}
		e.value = value
		return
	}

	if c.lruList.Len() >= c.capacity {
		c.evictOldest()
	}

	elem := c.lruList.PushFront(&entry[V]{key: key, value: value})
	c.items[key] = elem
}

// evictOldest removes the least recently used value.
// Must be called with lock held.
func (c *LRU[V]) evictOldest() {
	elem := c.lruList.Back()
	if elem == nil {
		return
	}

	c.lruList.Remove(elem)
	e := elem.Value.(*entry[V])
	delete(c.items, e.key)

	if c.onEvict != nil {
		c.onEvict(e.value)
	}
	c.evictions.Add(1)
}

// Clear removes all cached values, passing each through the evict callback.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for elem := c.lruList.Front(); elem != nil; elem = elem.Next() {
			c.onEvict(elem.Value.(*entry[V]).value)
		}
	}

	c.items = make(map[string]*list.Element, c.capacity)
	c.lruList.Init()
}

// Len returns the current number of cached values.
func (c *LRU[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lruList.Len()
}

// Stats holds cache performance metrics.
type Stats struct {
	Size      int     // Current number of cached values.
	Capacity  int     // Maximum capacity.
	Hits      uint64  // Number of successful cache lookups.
	Misses    uint64  // Number of cache misses.
	Evictions uint64  // Number of evicted values.
	HitRate   float64 // Cache hit rate (hits / total requests).
}

// Stats returns cache statistics.
func (c *LRU[V]) Stats() Stats {
	c.mu.RLock()
	size := c.lruList.Len()
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()
	evictions := c.evictions.Load()

	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      size,
		Capacity:  c.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		HitRate:   hitRate,
	}
}
