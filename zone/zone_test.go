package zone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/zonetime/zone/types"
)

func instant(y int, m time.Month, d, h, mi, s, ns int) types.Instant {
	return types.MustFromTime(time.Date(y, m, d, h, mi, s, ns, time.UTC))
}

// singleTransition returns a zone that switches from a to b hours at
// 2000-01-01T00:00:00Z.
func singleTransition(t *testing.T, a, b int) *Precalculated {
	t.Helper()
	z, err := NewPrecalculated("Test/Single", []Transition{
		{At: types.BeforeMinValue, Name: "P", WallOffset: types.OffsetOfHours(a)},
		{At: instant(2000, 1, 1, 0, 0, 0, 0), Name: "N", WallOffset: types.OffsetOfHours(b)},
	}, nil)
	require.NoError(t, err)
	return z
}

// semiannual returns a zone on local mean time until 2000, then alternating
// between standard time at +01:00 and summer time at +02:00 every six
// months through 2002.
func semiannual(t *testing.T) *Precalculated {
	t.Helper()
	std, dst := types.OffsetOfHours(1), types.OffsetOfHours(2)
	hour := types.OffsetOfHours(1)
	transitions := []Transition{
		{At: types.BeforeMinValue, Name: "LMT", WallOffset: types.MustOffset(3208)},
	}
	for year := 2000; year <= 2002; year++ {
		transitions = append(
			transitions,
			Transition{At: instant(year, 1, 1, 0, 0, 0, 0), Name: "STD", WallOffset: std},
			Transition{At: instant(year, 7, 1, 0, 0, 0, 0), Name: "DST", WallOffset: dst, Savings: hour},
		)
	}
	z, err := NewPrecalculated("Test/Semiannual", transitions, nil)
	require.NoError(t, err)
	return z
}

func TestZoneHelpers(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	z := semiannual(t)

	a.Equal(types.OffsetOfHours(2), OffsetAt(z, instant(2001, 8, 1, 0, 0, 0, 0)))
	a.Equal(types.MustOffset(3208), OffsetAt(z, instant(1900, 1, 1, 0, 0, 0, 0)))
	a.Equal(types.OffsetOfHours(2), OffsetAt(z, types.AfterMaxValue))

	next, ok := NextTransition(z, instant(2001, 8, 1, 0, 0, 0, 0))
	a.True(ok)
	a.Equal(instant(2002, 1, 1, 0, 0, 0, 0), next)

	next, ok = NextTransition(z, instant(2002, 1, 1, 0, 0, 0, 0))
	a.True(ok)
	a.Equal(instant(2002, 7, 1, 0, 0, 0, 0), next)

	_, ok = NextTransition(z, instant(2002, 7, 1, 0, 0, 0, 0))
	a.False(ok)

	prev, ok := PreviousTransition(z, instant(2001, 8, 1, 0, 0, 0, 0))
	a.True(ok)
	a.Equal(instant(2001, 7, 1, 0, 0, 0, 0), prev)

	prev, ok = PreviousTransition(z, instant(2001, 7, 1, 0, 0, 0, 0))
	a.True(ok)
	a.Equal(instant(2001, 7, 1, 0, 0, 0, 0), prev)

	_, ok = PreviousTransition(z, instant(1999, 1, 1, 0, 0, 0, 0))
	a.False(ok)

	_, ok = NextTransition(UTC, types.MinValue)
	a.False(ok)
}

func TestJustBefore(t *testing.T) {
	t.Parallel()
	a := assert.New(t)

	a.Equal(instant(1999, 12, 31, 23, 59, 59, 999999999), justBefore(instant(2000, 1, 1, 0, 0, 0, 0)))
	a.Equal(types.BeforeMinValue, justBefore(types.MinValue))
	a.Equal(types.BeforeMinValue, justBefore(types.BeforeMinValue))
}
