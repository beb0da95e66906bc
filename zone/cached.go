package zone

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/theory/zonetime/zone/types"
)

const (
	// DefaultCacheSize is the number of buckets a Cached zone keeps by
	// default.
	DefaultCacheSize = 256

	// DefaultBucketWidth is the span of time each bucket of a Cached zone
	// covers by default.
	DefaultBucketWidth = 24 * time.Hour
)

// CacheObserver receives notice of cache hits and misses. Implementations
// must be safe for concurrent use.
type CacheObserver interface {
	CacheHit(zoneID string)
	CacheMiss(zoneID string)
}

// CacheStats reports activity of a Cached zone.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// CacheOption configures a Cached zone.
type CacheOption func(*Cached)

// WithCacheSize sets the number of buckets to keep. Values less than one
// select DefaultCacheSize.
func WithCacheSize(n int) CacheOption {
	return func(c *Cached) {
		if n > 0 {
			c.size = n
		}
	}
}

// WithBucketWidth sets the span of time covered by each bucket. It is
// truncated to whole seconds, with a minimum of one second.
func WithBucketWidth(d time.Duration) CacheOption {
	return func(c *Cached) {
		c.width = max(int64(d/time.Second), 1)
	}
}

// WithObserver sets an observer to notify of each hit and miss.
func WithObserver(o CacheObserver) CacheOption {
	return func(c *Cached) { c.observer = o }
}

// Cached decorates a Zone with a bounded cache of recent lookups. Time is
// divided into fixed-width buckets, and each bucket remembers the last
// interval found within it. A cached interval answers a lookup only if it
// contains the instant, so results are identical to those of the underlying
// zone.
//
// When full, the cache evicts the bucket it stored first. Concurrent lookups
// share a read lock; a miss that finds another goroutine already updating
// the cache skips storing its result rather than wait.
type Cached struct {
	zone     Zone
	size     int
	width    int64
	observer CacheObserver

	mu      sync.RWMutex
	entries map[int64]Interval
	order   []int64
	head    int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached wraps z in a cache. If z is itself a *Cached, the new cache
// wraps the zone z decorates.
func NewCached(z Zone, opts ...CacheOption) *Cached {
	if c, ok := z.(*Cached); ok {
		z = c.zone
	}
	c := &Cached{
		zone:  z,
		size:  DefaultCacheSize,
		width: int64(DefaultBucketWidth / time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.entries = make(map[int64]Interval, c.size)
	c.order = make([]int64, c.size)
	return c
}

// ID returns the ID of the underlying zone.
func (c *Cached) ID() string { return c.zone.ID() }

// MinOffset returns the minimum offset of the underlying zone.
func (c *Cached) MinOffset() types.Offset { return c.zone.MinOffset() }

// MaxOffset returns the maximum offset of the underlying zone.
func (c *Cached) MaxOffset() types.Offset { return c.zone.MaxOffset() }

// Uncached returns the underlying zone.
func (c *Cached) Uncached() Zone { return c.zone }

// Interval returns the interval containing t, from the cache if possible.
func (c *Cached) Interval(t types.Instant) Interval {
	if !t.IsValid() {
		return c.zone.Interval(t)
	}

	key := c.bucket(t)
	c.mu.RLock()
	iv, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && iv.Contains(t) {
		c.hits.Add(1)
		if c.observer != nil {
			c.observer.CacheHit(c.zone.ID())
		}
		return iv
	}

	c.misses.Add(1)
	if c.observer != nil {
		c.observer.CacheMiss(c.zone.ID())
	}
	iv = c.zone.Interval(t)
	c.store(key, iv)
	return iv
}

// bucket returns the number of the bucket containing t.
func (c *Cached) bucket(t types.Instant) int64 {
	sec := t.UnixSeconds()
	b := sec / c.width
	if sec%c.width < 0 {
		b--
	}
	return b
}

// store records iv as the entry for bucket key unless another goroutine
// holds the lock.
func (c *Cached) store(key int64, iv Interval) {
	if !c.mu.TryLock() {
		return
	}
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		if len(c.entries) == c.size {
			delete(c.entries, c.order[c.head])
		}
		c.order[c.head] = key
		c.head = (c.head + 1) % c.size
	}
	c.entries[key] = iv
}

// Stats returns the hit and miss counts and the number of cached buckets.
func (c *Cached) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: n,
	}
}

// String returns the ID of the underlying zone.
func (c *Cached) String() string { return c.zone.ID() }
