/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package lrucache

import (
	"fmt"

	"github.com/acronis/go-cachekit/dlist"
)

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRUCache represents a fixed-capacity in-memory cache with LRU eviction and Prometheus metrics.
// Entries are ordered by recency of use, and when the capacity is exceeded,
// the least recently used entry is evicted to make room.
//
// LRUCache does no internal locking and is not safe for concurrent use.
// It's intended to be owned by a single goroutine or protected by the caller's own
// synchronization; for a ready-made thread-safe wrapper, see the shardedcache package.
type LRUCache[K comparable, V any] struct {
	maxEntries int

	lruList *dlist.List[cacheEntry[K, V]]
	cache   map[K]*dlist.Node[cacheEntry[K, V]] // map of cache entries, value is a lruList node

	hits      int64
	misses    int64
	evictions int64

	metricsCollector MetricsCollector
}

// New creates a new LRUCache with the provided maximum number of entries and metrics collector.
// Metrics collector is used to collect statistics about cache usage.
// It can be nil, in this case, metrics will be disabled.
func New[K comparable, V any](maxEntries int, metricsCollector MetricsCollector) (*LRUCache[K, V], error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("maxEntries must be greater than 0")
	}
	if metricsCollector == nil {
		metricsCollector = noopMetrics{}
	}

	return &LRUCache[K, V]{
		maxEntries:       maxEntries,
		lruList:          dlist.New[cacheEntry[K, V]](),
		cache:            make(map[K]*dlist.Node[cacheEntry[K, V]]),
		metricsCollector: metricsCollector,
	}, nil
}

// Get returns a value from the cache by the provided key
// and marks the entry as the most recently used one.
func (c *LRUCache[K, V]) Get(key K) (value V, ok bool) {
	node, hit := c.cache[key]
	if !hit {
		c.misses++
		c.metricsCollector.IncMisses()
		return value, false
	}
	c.lruList.MoveToFront(node)
	c.hits++
	c.metricsCollector.IncHits()
	return node.Value.value, true
}

// Peek returns a value from the cache by the provided key
// without updating the recency order or the hits/misses statistics.
func (c *LRUCache[K, V]) Peek(key K) (value V, ok bool) {
	node, hit := c.cache[key]
	if !hit {
		return value, false
	}
	return node.Value.value, true
}

// Contains checks if the provided key is in the cache
// without updating the recency order or the hits/misses statistics.
func (c *LRUCache[K, V]) Contains(key K) bool {
	_, ok := c.cache[key]
	return ok
}

// Add adds a value to the cache with the provided key.
// If the key already exists, its value is replaced and the entry becomes the most recently used,
// the hits/misses statistics are not affected in this case.
// If the cache is full, the least recently used entry is evicted.
func (c *LRUCache[K, V]) Add(key K, value V) {
	if node, ok := c.cache[key]; ok {
		c.lruList.MoveToFront(node)
		node.Value.value = value
		return
	}
	c.addNew(key, value)
}

// GetOrAdd returns a value from the cache by the provided key.
// If the key does not exist, the provided function is called to obtain the value,
// and the result is added to the cache.
func (c *LRUCache[K, V]) GetOrAdd(key K, valueProvider func() V) (value V, exists bool) {
	if value, exists = c.Get(key); exists {
		return value, true
	}
	value = valueProvider()
	c.addNew(key, value)
	return value, false
}

// Remove removes a value from the cache by the provided key.
// It returns true if the key was present.
func (c *LRUCache[K, V]) Remove(key K) bool {
	node, ok := c.cache[key]
	if !ok {
		return false
	}
	c.lruList.Remove(node)
	delete(c.cache, key)
	c.metricsCollector.SetAmount(len(c.cache))
	return true
}

// RemoveOldest removes the least recently used entry from the cache and returns it.
// Unlike eviction on Add, this removal is not counted in the evictions statistics.
func (c *LRUCache[K, V]) RemoveOldest() (key K, value V, ok bool) {
	if key, value, ok = c.removeOldest(); !ok {
		return key, value, false
	}
	c.metricsCollector.SetAmount(len(c.cache))
	return key, value, true
}

// GetOldest returns the least recently used entry from the cache
// without updating the recency order or the hits/misses statistics.
func (c *LRUCache[K, V]) GetOldest() (key K, value V, ok bool) {
	node := c.lruList.Back()
	if node == nil {
		return key, value, false
	}
	return node.Value.key, node.Value.value, true
}

// GetNewest returns the most recently used entry from the cache
// without updating the recency order or the hits/misses statistics.
func (c *LRUCache[K, V]) GetNewest() (key K, value V, ok bool) {
	node := c.lruList.Front()
	if node == nil {
		return key, value, false
	}
	return node.Value.key, node.Value.value, true
}

// Keys returns all keys in the cache ordered from the most recently used to the least recently used.
func (c *LRUCache[K, V]) Keys() []K {
	keys := make([]K, 0, len(c.cache))
	for node := c.lruList.Front(); node != nil; node = node.Next() {
		keys = append(keys, node.Value.key)
	}
	return keys
}

// Entry is a key-value pair of a single cache entry.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Entries returns all entries in the cache ordered from the most recently used to the least recently used.
func (c *LRUCache[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, len(c.cache))
	for node := c.lruList.Front(); node != nil; node = node.Next() {
		entries = append(entries, Entry[K, V]{Key: node.Value.key, Value: node.Value.value})
	}
	return entries
}

// Purge clears the cache and resets the hits/misses/evictions statistics.
// Keep in mind that this method does not reset the cache capacity
// and does not reset Prometheus metrics except for the total number of entries.
// All removed entries will not be counted as evictions.
func (c *LRUCache[K, V]) Purge() {
	c.metricsCollector.SetAmount(0)
	c.cache = make(map[K]*dlist.Node[cacheEntry[K, V]])
	c.lruList.Init()
	c.hits, c.misses, c.evictions = 0, 0, 0
}

// Resize changes the cache size and returns the number of evicted entries.
func (c *LRUCache[K, V]) Resize(size int) (evicted int) {
	if size <= 0 {
		return 0
	}

	c.maxEntries = size
	evicted = len(c.cache) - size
	if evicted <= 0 {
		return 0
	}
	for i := 0; i < evicted; i++ {
		_, _, _ = c.removeOldest()
	}
	c.evictions += int64(evicted)
	c.metricsCollector.SetAmount(len(c.cache))
	c.metricsCollector.AddEvictions(evicted)
	return evicted
}

// Len returns the number of entries in the cache.
func (c *LRUCache[K, V]) Len() int {
	return len(c.cache)
}

// Stats represents a snapshot of the cache usage statistics.
type Stats struct {
	// Size is the current number of entries in the cache.
	Size int

	// Capacity is the maximum number of entries the cache can hold.
	Capacity int

	// Hits is the number of successfully found keys, and Misses is the number of not found keys.
	// Lookups that don't update the recency order (Peek, Contains) are not counted.
	Hits   int64
	Misses int64

	// Evictions is the number of entries removed to make room for new ones.
	Evictions int64

	// HitRate is Hits / (Hits + Misses), or 0 if there were no lookups yet.
	HitRate float64

	// Utilization is Size / Capacity.
	Utilization float64
}

// Stats returns a snapshot of the cache usage statistics.
// The hits/misses/evictions counters grow monotonically until the cache is purged.
func (c *LRUCache[K, V]) Stats() Stats {
	stats := Stats{
		Size:      len(c.cache),
		Capacity:  c.maxEntries,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
	if lookups := stats.Hits + stats.Misses; lookups > 0 {
		stats.HitRate = float64(stats.Hits) / float64(lookups)
	}
	stats.Utilization = float64(stats.Size) / float64(stats.Capacity)
	return stats
}

func (c *LRUCache[K, V]) addNew(key K, value V) {
	c.cache[key] = c.lruList.PushFront(cacheEntry[K, V]{key: key, value: value})
	if len(c.cache) <= c.maxEntries {
		c.metricsCollector.SetAmount(len(c.cache))
		return
	}
	if _, _, ok := c.removeOldest(); ok {
		c.evictions++
		c.metricsCollector.AddEvictions(1)
	}
}

func (c *LRUCache[K, V]) removeOldest() (key K, value V, ok bool) {
	node := c.lruList.Back()
	if node == nil {
		return key, value, false
	}
	entry := c.lruList.Remove(node)
	delete(c.cache, entry.key)
	return entry.key, entry.value, true
}
