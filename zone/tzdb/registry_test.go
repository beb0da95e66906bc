package tzdb

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/types"
)

type countingSource struct {
	Source
	loads atomic.Int64
}

func (s *countingSource) Load(id string) (zone.Zone, error) {
	s.loads.Add(1)
	return s.Source.Load(id)
}

type countingObserver struct {
	hits, misses atomic.Int64
}

func (o *countingObserver) CacheHit(string)  { o.hits.Add(1) }
func (o *countingObserver) CacheMiss(string) { o.misses.Add(1) }

var testTime = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func testSource() MapSource {
	return MapSource{
		"Test/Plus_One": zone.NewFixed("Test/Plus_One", "P1", types.OffsetOfHours(1)),
		"Test/Plus_Two": zone.NewFixed("Test/Plus_Two", "P2", types.OffsetOfHours(2)),
	}
}

func TestMapSource(t *testing.T) {
	t.Parallel()
	src := testSource()

	z, err := src.Load("Test/Plus_One")
	require.NoError(t, err)
	assert.Equal(t, "Test/Plus_One", z.ID())

	_, err = src.Load("Test/Nope")
	require.ErrorIs(t, err, ErrUnknownZone)
	require.EqualError(t, err, "unknown zone Test/Nope")
}

func TestRegistryZone(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)
	src := &countingSource{Source: testSource()}
	reg := NewRegistry(src)

	z, err := reg.Zone("Test/Plus_One")
	r.NoError(err)
	a.Equal("Test/Plus_One", z.ID())
	a.IsType(&zone.Cached{}, z)

	again, err := reg.Zone("Test/Plus_One")
	r.NoError(err)
	a.Same(z, again)
	a.Equal(int64(1), src.loads.Load())

	// UTC never reaches the source.
	u, err := reg.Zone("UTC")
	r.NoError(err)
	a.Same(zone.UTC, u)
	a.Equal(int64(1), src.loads.Load())

	_, err = reg.Zone("Test/Plus_Two")
	r.NoError(err)
	a.Equal([]string{"Test/Plus_One", "Test/Plus_Two"}, reg.Loaded())
}

func TestRegistryErrors(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	src := &countingSource{Source: testSource()}
	reg := NewRegistry(src)

	_, err := reg.Zone("Test//Plus_One")
	a.ErrorIs(err, ErrInvalidID)
	a.Equal(int64(0), src.loads.Load())

	// Failures are not remembered.
	for range 2 {
		_, err = reg.Zone("Test/Missing")
		a.ErrorIs(err, ErrUnknownZone)
	}
	a.Equal(int64(2), src.loads.Load())
	a.Empty(reg.Loaded())
}

func TestRegistryOptions(t *testing.T) {
	t.Parallel()

	t.Run("no_cache", func(t *testing.T) {
		t.Parallel()
		reg := NewRegistry(testSource(), WithCacheSize(0))
		z, err := reg.Zone("Test/Plus_Two")
		require.NoError(t, err)
		assert.IsType(t, &zone.Fixed{}, z)
	})

	t.Run("negative_cache", func(t *testing.T) {
		t.Parallel()
		reg := NewRegistry(testSource(), WithCacheSize(-3))
		z, err := reg.Zone("Test/Plus_Two")
		require.NoError(t, err)
		assert.IsType(t, &zone.Fixed{}, z)
	})

	t.Run("observer", func(t *testing.T) {
		t.Parallel()
		a := assert.New(t)
		obs := &countingObserver{}
		reg := NewRegistry(testSource(), WithCacheSize(4), WithObserver(obs))
		z, err := reg.Zone("Test/Plus_One")
		require.NoError(t, err)

		ts := types.MustFromTime(testTime)
		z.Interval(ts)
		z.Interval(ts)
		a.Equal(int64(1), obs.misses.Load())
		a.Equal(int64(1), obs.hits.Load())
		a.Equal(zone.CacheStats{Hits: 1, Misses: 1, Entries: 1}, z.(*zone.Cached).Stats())
	})

	t.Run("default_source", func(t *testing.T) {
		t.Parallel()
		reg := NewRegistry(nil)
		z, err := reg.Zone("Europe/Paris")
		require.NoError(t, err)
		assert.Equal(t, "CET", z.Interval(types.MustFromTime(testTime)).Name())
		assert.IsType(t, &zone.Precalculated{}, z.(*zone.Cached).Uncached())
	})
}

func TestRegistryConcurrent(t *testing.T) {
	t.Parallel()
	src := &countingSource{Source: testSource()}
	reg := NewRegistry(src)

	var wg sync.WaitGroup
	zones := make([]zone.Zone, 32)
	for i := range zones {
		wg.Add(1)
		go func() {
			defer wg.Done()
			z, err := reg.Zone("Test/Plus_One")
			assert.NoError(t, err)
			zones[i] = z
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), src.loads.Load())
	for _, z := range zones {
		assert.Same(t, zones[0], z)
	}
}
