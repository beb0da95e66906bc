package tzdb

import (
	"maps"
	"slices"
	"sync"

	"github.com/theory/zonetime/zone"
	"golang.org/x/sync/singleflight"
)

// Option configures a Registry.
type Option func(*Registry)

// WithCacheSize sets the number of buckets in the cache wrapped around each
// loaded zone. Zero disables caching. Defaults to zone.DefaultCacheSize.
func WithCacheSize(n int) Option { return func(r *Registry) { r.cacheSize = max(n, 0) } }

// WithObserver sets an observer to notify of cache hits and misses in every
// zone the Registry loads.
func WithObserver(o zone.CacheObserver) Option { return func(r *Registry) { r.observer = o } }

// Registry loads zones from a Source on first request and returns the same
// zone for every later request. It is safe for concurrent use; concurrent
// first requests for an ID share a single load.
type Registry struct {
	source    Source
	cacheSize int
	observer  zone.CacheObserver

	mu    sync.RWMutex
	zones map[string]zone.Zone
	group singleflight.Group
}

// NewRegistry creates a Registry that loads zones from src. If src is nil it
// uses a zero LocationSource.
func NewRegistry(src Source, opt ...Option) *Registry {
	if src == nil {
		src = LocationSource{}
	}
	r := &Registry{
		source:    src,
		cacheSize: zone.DefaultCacheSize,
		zones:     map[string]zone.Zone{},
	}
	for _, o := range opt {
		o(r)
	}
	return r
}

// Zone returns the zone identified by id, loading it if necessary. "UTC"
// always returns zone.UTC. Returns an error wrapping ErrInvalidID if id is
// malformed, or the error returned by the Source, which wraps
// ErrUnknownZone if it has no such zone. Failed loads are not remembered.
func (r *Registry) Zone(id string) (zone.Zone, error) {
	if id == zone.UTC.ID() {
		return zone.UTC, nil
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if z, ok := r.lookup(id); ok {
		return z, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		if z, ok := r.lookup(id); ok {
			return z, nil
		}
		z, err := r.source.Load(id)
		if err != nil {
			return nil, err
		}
		z = r.wrap(z)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.zones[id] = z
		return z, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(zone.Zone), nil
}

func (r *Registry) lookup(id string) (zone.Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[id]
	return z, ok
}

// wrap decorates z with a cache unless caching is disabled.
func (r *Registry) wrap(z zone.Zone) zone.Zone {
	if r.cacheSize == 0 {
		return z
	}
	opts := []zone.CacheOption{zone.WithCacheSize(r.cacheSize)}
	if r.observer != nil {
		opts = append(opts, zone.WithObserver(r.observer))
	}
	return zone.NewCached(z, opts...)
}

// Loaded returns the IDs of the zones loaded so far, in sorted order.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.zones))
}
