// Package metrics counts zone cache activity with Prometheus counters.
package metrics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

const (
	hitsName   = "zonetime_cache_hits_total"
	missesName = "zonetime_cache_misses_total"
	zoneLabel  = "zone"
)

// Metrics implements zone.CacheObserver, counting cache hits and misses per
// zone on its own registry.
type Metrics struct {
	registry *prometheus.Registry
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
}

// ZoneStats reports the cache activity of a single zone.
type ZoneStats struct {
	Zone   string  `json:"zone"   yaml:"zone"`
	Hits   float64 `json:"hits"   yaml:"hits"`
	Misses float64 `json:"misses" yaml:"misses"`
}

// New creates a Metrics with a new registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: hitsName,
			Help: "Total number of zone interval lookups answered by the cache",
		}, []string{zoneLabel}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: missesName,
			Help: "Total number of zone interval lookups not answered by the cache",
		}, []string{zoneLabel}),
	}
}

// CacheHit increments the hit counter for zoneID.
func (m *Metrics) CacheHit(zoneID string) {
	m.hits.WithLabelValues(zoneID).Inc()
}

// CacheMiss increments the miss counter for zoneID.
func (m *Metrics) CacheMiss(zoneID string) {
	m.misses.WithLabelValues(zoneID).Inc()
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Stats gathers the counters and returns the stats for each zone, sorted by
// zone ID.
func (m *Metrics) Stats() ([]ZoneStats, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	byZone := map[string]*ZoneStats{}
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			id := zoneOf(metric)
			st, ok := byZone[id]
			if !ok {
				st = &ZoneStats{Zone: id}
				byZone[id] = st
			}
			switch fam.GetName() {
			case hitsName:
				st.Hits = metric.GetCounter().GetValue()
			case missesName:
				st.Misses = metric.GetCounter().GetValue()
			}
		}
	}

	stats := make([]ZoneStats, 0, len(byZone))
	for _, st := range byZone {
		stats = append(stats, *st)
	}
	slices.SortFunc(stats, func(a, b ZoneStats) int { return cmp.Compare(a.Zone, b.Zone) })
	return stats, nil
}

func zoneOf(metric *dto.Metric) string {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == zoneLabel {
			return lp.GetValue()
		}
	}
	return ""
}
