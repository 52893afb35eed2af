/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package shardedcache

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"math/bits"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/acronis/go-cachekit/log"
	"github.com/acronis/go-cachekit/lrucache"
)

// DefaultShardCount is the number of shards used when Options.ShardCount is not set.
const DefaultShardCount = 16

type cacheShard[K comparable, V any] struct {
	mu    sync.Mutex
	cache *lrucache.LRUCache[K, V]
}

// ShardedCache represents a thread-safe LRU cache split into multiple shards.
// Each key is mapped to a shard by its hash, and each shard is an independent
// lrucache.LRUCache protected by its own mutex.
//
// Only the per-key operations are O(1) with single-shard locking;
// Len, Purge, Resize, and Stats visit shards one at a time,
// so their results are consistent per shard, not across the whole cache.
type ShardedCache[K comparable, V any] struct {
	shards    []*cacheShard[K, V]
	shardMask uint32

	inflight inflightGroup[K, V]
}

// Options represents options for the sharded cache.
type Options struct {
	// ShardCount is the number of shards the cache is split into.
	// It is rounded up to the nearest power of two.
	// If zero, DefaultShardCount is used.
	ShardCount int
}

// New creates a new ShardedCache with the provided total maximum number of entries and metrics collector.
func New[K comparable, V any](maxEntries int, metricsCollector lrucache.MetricsCollector) (*ShardedCache[K, V], error) {
	return NewWithOpts[K, V](maxEntries, metricsCollector, Options{})
}

// NewWithOpts creates a new ShardedCache with the provided total maximum number of entries,
// metrics collector, and options.
// Metrics collector is used to collect statistics about cache usage.
// It can be nil, in this case, metrics will be disabled.
//
// The capacity is split evenly between the shards, rounding up,
// so the effective total capacity may slightly exceed maxEntries.
func NewWithOpts[K comparable, V any](
	maxEntries int, metricsCollector lrucache.MetricsCollector, opts Options,
) (*ShardedCache[K, V], error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("maxEntries must be greater than 0")
	}
	if opts.ShardCount < 0 {
		return nil, fmt.Errorf("shardCount must be greater or equal to 0 (default is used)")
	}
	shardCount := opts.ShardCount
	if shardCount == 0 {
		shardCount = DefaultShardCount
	}
	shardCount = nextPowerOfTwo(shardCount)
	shardMaxEntries := (maxEntries + shardCount - 1) / shardCount

	entriesTotal := atomic.NewInt64(0)
	shards := make([]*cacheShard[K, V], shardCount)
	for i := range shards {
		shardCollector := metricsCollector
		if shardCollector != nil {
			shardCollector = &shardMetricsCollector{parent: metricsCollector, entriesTotal: entriesTotal}
		}
		cache, err := lrucache.New[K, V](shardMaxEntries, shardCollector)
		if err != nil {
			return nil, err
		}
		shards[i] = &cacheShard[K, V]{cache: cache}
	}
	return &ShardedCache[K, V]{shards: shards, shardMask: uint32(shardCount - 1)}, nil
}

// Get returns a value from the cache by the provided key
// and marks the entry as the most recently used one within its shard.
func (c *ShardedCache[K, V]) Get(key K) (value V, ok bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(key)
}

// Peek returns a value from the cache by the provided key
// without updating the recency order or the hits/misses statistics.
func (c *ShardedCache[K, V]) Peek(key K) (value V, ok bool) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Peek(key)
}

// Contains checks if the provided key is in the cache
// without updating the recency order or the hits/misses statistics.
func (c *ShardedCache[K, V]) Contains(key K) bool {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Contains(key)
}

// Add adds a value to the cache with the provided key.
// If the key already exists, its value is replaced.
// If the key's shard is full, the shard's least recently used entry is evicted.
func (c *ShardedCache[K, V]) Add(key K, value V) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, value)
}

// GetOrAdd returns a value from the cache by the provided key.
// If the key does not exist, valueProvider is called to obtain the value,
// and the result is added to the cache.
// Concurrent calls for the same key share a single valueProvider invocation
// (see inflightGroup); if valueProvider returns an error,
// nothing is cached and the error is returned to all of them.
func (c *ShardedCache[K, V]) GetOrAdd(key K, valueProvider func() (V, error)) (V, error) {
	s := c.shard(key)
	s.mu.Lock()
	value, ok := s.cache.Get(key)
	s.mu.Unlock()
	if ok {
		return value, nil
	}

	return c.inflight.Do(key, func() (V, error) {
		// The value may have been cached by a previous flight
		// between the missed Get above and this point.
		s.mu.Lock()
		if value, ok := s.cache.Peek(key); ok {
			s.mu.Unlock()
			return value, nil
		}
		s.mu.Unlock()

		value, err := valueProvider()
		if err != nil {
			return value, err
		}
		s.mu.Lock()
		s.cache.Add(key, value)
		s.mu.Unlock()
		return value, nil
	})
}

// Remove removes a value from the cache by the provided key.
// It returns true if the key was present.
func (c *ShardedCache[K, V]) Remove(key K) bool {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(key)
}

// Len returns the total number of entries in the cache.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += s.cache.Len()
		s.mu.Unlock()
	}
	return total
}

// Purge clears all shards and resets their hits/misses/evictions statistics.
// Keep in mind that this method does not reset the cache capacity
// and does not reset Prometheus metrics except for the total number of entries.
// All removed entries will not be counted as evictions.
func (c *ShardedCache[K, V]) Purge() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.cache.Purge()
		s.mu.Unlock()
	}
}

// Resize changes the total cache size and returns the number of evicted entries.
// The new size is split evenly between the shards, rounding up,
// the same way as in NewWithOpts.
func (c *ShardedCache[K, V]) Resize(size int) (evicted int) {
	if size <= 0 {
		return 0
	}
	shardSize := (size + len(c.shards) - 1) / len(c.shards)
	for _, s := range c.shards {
		s.mu.Lock()
		evicted += s.cache.Resize(shardSize)
		s.mu.Unlock()
	}
	return evicted
}

// Stats returns a snapshot of the cache usage statistics aggregated over all shards.
// Size, Capacity, Hits, Misses, and Evictions are sums of the per-shard values,
// and HitRate and Utilization are recomputed from those sums.
func (c *ShardedCache[K, V]) Stats() lrucache.Stats {
	var stats lrucache.Stats
	for _, s := range c.shards {
		s.mu.Lock()
		shardStats := s.cache.Stats()
		s.mu.Unlock()
		stats.Size += shardStats.Size
		stats.Capacity += shardStats.Capacity
		stats.Hits += shardStats.Hits
		stats.Misses += shardStats.Misses
		stats.Evictions += shardStats.Evictions
	}
	if lookups := stats.Hits + stats.Misses; lookups > 0 {
		stats.HitRate = float64(stats.Hits) / float64(lookups)
	}
	stats.Utilization = float64(stats.Size) / float64(stats.Capacity)
	return stats
}

// RunPeriodicStatsLogging runs a cycle of periodic logging of the aggregated cache statistics.
// It's supposed to be run in a separate goroutine and returns when ctx is done.
func (c *ShardedCache[K, V]) RunPeriodicStatsLogging(
	ctx context.Context, interval time.Duration, logger log.FieldLogger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := c.Stats()
			logger.Info("cache stats",
				log.Int("size", stats.Size),
				log.Int("capacity", stats.Capacity),
				log.Int64("hits", stats.Hits),
				log.Int64("misses", stats.Misses),
				log.Int64("evictions", stats.Evictions),
				log.Float64("hit_rate", stats.HitRate),
				log.Float64("utilization", stats.Utilization),
			)
		}
	}
}

// shard maps the key to one of the shards by the FNV-1a hash of its byte representation.
// Fast paths cover strings and fixed-size built-in types,
// everything else goes through gob encoding, which is at least an order of magnitude slower.
func (c *ShardedCache[K, V]) shard(key K) *cacheShard[K, V] {
	h := fnv.New32a()
	switch v := any(key).(type) {
	case string:
		_, _ = h.Write([]byte(v))
	case int:
		_, _ = h.Write(uintBytes(uint64(v)))
	case uint:
		_, _ = h.Write(uintBytes(uint64(v)))
	case uintptr:
		_, _ = h.Write(uintBytes(uint64(v)))
	case fmt.Stringer:
		_, _ = h.Write([]byte(v.String()))
	case bool, int8, uint8, int16, uint16, int32, uint32, int64, uint64, float32, float64:
		var buf bytes.Buffer
		_ = binary.Write(&buf, binary.LittleEndian, v)
		_, _ = h.Write(buf.Bytes())
	default:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			panic(fmt.Sprintf("could not encode key of type %T as bytes: %v", key, err))
		}
		_, _ = h.Write(buf.Bytes())
	}
	return c.shards[h.Sum32()&c.shardMask]
}

func uintBytes(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}

func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

// shardMetricsCollector routes a shard's metrics to the shared parent collector.
// Hits, misses, and evictions are plain counters and pass through as is,
// but the entries amount is a per-shard gauge, so each shard's last reported
// amount is tracked and the parent always receives the sum over all shards.
type shardMetricsCollector struct {
	parent       lrucache.MetricsCollector
	entriesTotal *atomic.Int64
	shardEntries atomic.Int64
}

var _ lrucache.MetricsCollector = (*shardMetricsCollector)(nil)

func (mc *shardMetricsCollector) SetAmount(amount int) {
	delta := int64(amount) - mc.shardEntries.Swap(int64(amount))
	mc.parent.SetAmount(int(mc.entriesTotal.Add(delta)))
}

func (mc *shardMetricsCollector) IncHits() {
	mc.parent.IncHits()
}

func (mc *shardMetricsCollector) IncMisses() {
	mc.parent.IncMisses()
}

func (mc *shardMetricsCollector) AddEvictions(amount int) {
	mc.parent.AddEvictions(amount)
}
