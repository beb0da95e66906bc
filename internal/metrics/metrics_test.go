package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/types"
)

func TestMetrics(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)
	m := New()

	stats, err := m.Stats()
	r.NoError(err)
	a.Empty(stats)

	m.CacheMiss("Europe/Paris")
	m.CacheHit("Europe/Paris")
	m.CacheHit("Europe/Paris")
	m.CacheMiss("Asia/Tokyo")

	a.InDelta(2.0, testutil.ToFloat64(m.hits.WithLabelValues("Europe/Paris")), 0)
	a.InDelta(1.0, testutil.ToFloat64(m.misses.WithLabelValues("Europe/Paris")), 0)
	a.InDelta(1.0, testutil.ToFloat64(m.misses.WithLabelValues("Asia/Tokyo")), 0)

	stats, err = m.Stats()
	r.NoError(err)
	a.Equal([]ZoneStats{
		{Zone: "Asia/Tokyo", Hits: 0, Misses: 1},
		{Zone: "Europe/Paris", Hits: 2, Misses: 1},
	}, stats)

	r.NoError(testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP zonetime_cache_hits_total Total number of zone interval lookups answered by the cache
# TYPE zonetime_cache_hits_total counter
zonetime_cache_hits_total{zone="Europe/Paris"} 2
`), hitsName))
}

func TestMetricsObserveCache(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	m := New()

	z := zone.NewFixed("Test/Fixed", "TST", types.OffsetOfHours(3))
	c := zone.NewCached(z, zone.WithObserver(m))
	at := types.MustFromTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	for range 3 {
		c.Interval(at)
	}

	a.InDelta(2.0, testutil.ToFloat64(m.hits.WithLabelValues("Test/Fixed")), 0)
	a.InDelta(1.0, testutil.ToFloat64(m.misses.WithLabelValues("Test/Fixed")), 0)
	a.Equal(1, testutil.CollectAndCount(m.hits))
}
