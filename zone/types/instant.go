package types

import (
	"cmp"
	"fmt"
	"time"
)

// Instant is an absolute point on the global timeline, independent of any
// time zone or calendar. It counts nanoseconds from the Unix epoch, stored
// as a day number and a nanosecond within that day so that the full range
// from MinValue to MaxValue stays exact.
//
// Two sentinel values, BeforeMinValue and AfterMaxValue, stand for the open
// ends of the timeline. They compare before and after every finite instant
// respectively and are only equal to themselves.
type Instant struct {
	days      int32
	nanoOfDay int64
	tag       tag
}

//nolint:gochecknoglobals
var (
	// MinValue is the earliest finite instant: -9998-01-01T00:00:00Z.
	MinValue = Instant{days: MinDays}

	// MaxValue is the latest finite instant: 9999-12-31T23:59:59.999999999Z.
	MaxValue = Instant{days: MaxDays, nanoOfDay: NanosPerDay - 1}

	// BeforeMinValue represents the beginning of time.
	BeforeMinValue = Instant{tag: beforeTime}

	// AfterMaxValue represents the end of time.
	AfterMaxValue = Instant{tag: afterTime}

	// Epoch is the Unix epoch, 1970-01-01T00:00:00Z.
	Epoch = Instant{}
)

// instantFromParts returns the finite instant for days and nanoOfDay, which
// must be normalized to [0, NanosPerDay). Returns an error wrapping
// ErrOverflow if days is out of range.
func instantFromParts(days, nanoOfDay int64) (Instant, error) {
	if days < int64(MinDays) || days > int64(MaxDays) {
		return Instant{}, fmt.Errorf(
			"%w: day %d is outside the instant range [%d, %d]",
			ErrOverflow, days, MinDays, MaxDays,
		)
	}
	return Instant{days: int32(days), nanoOfDay: nanoOfDay}, nil
}

// FromUnixNanos returns the instant n nanoseconds after the Unix epoch. Every
// int64 value lies within the representable range.
func FromUnixNanos(n int64) Instant {
	return Instant{
		days:      int32(floorDiv(n, NanosPerDay)),
		nanoOfDay: floorMod(n, NanosPerDay),
	}
}

// FromUnixSeconds returns the instant sec seconds after the Unix epoch.
// Returns an error wrapping ErrOverflow if the result is out of range.
func FromUnixSeconds(sec int64) (Instant, error) {
	return instantFromParts(
		floorDiv(sec, secondsPerDay),
		floorMod(sec, secondsPerDay)*NanosPerSecond,
	)
}

// FromDays returns the instant nanoOfDay nanoseconds into the day days after
// the Unix epoch. Returns an error wrapping ErrOverflow if either value is out
// of range.
func FromDays(days int32, nanoOfDay int64) (Instant, error) {
	if nanoOfDay < 0 || nanoOfDay >= NanosPerDay {
		return Instant{}, fmt.Errorf(
			"%w: nanosecond of day %d is outside [0, %d)",
			ErrOverflow, nanoOfDay, NanosPerDay,
		)
	}
	return instantFromParts(int64(days), nanoOfDay)
}

// FromTime converts t to an Instant. Returns an error wrapping ErrOverflow if
// t lies outside [MinValue, MaxValue].
func FromTime(t time.Time) (Instant, error) {
	i, err := FromUnixSeconds(t.Unix())
	if err != nil {
		return Instant{}, err
	}
	i.nanoOfDay += int64(t.Nanosecond())
	return i, nil
}

// MustFromTime is like FromTime but panics if t is out of range.
func MustFromTime(t time.Time) Instant {
	i, err := FromTime(t)
	if err != nil {
		panic(err)
	}
	return i
}

// IsValid returns true if i is a finite instant and false for
// BeforeMinValue and AfterMaxValue.
func (i Instant) IsValid() bool { return i.tag == finite }

// Days returns the number of whole days between the Unix epoch and i,
// rounded towards negative infinity. The result is meaningless for the
// sentinels.
func (i Instant) Days() int32 { return i.days }

// NanoOfDay returns the nanosecond within the day of i, in [0, NanosPerDay).
func (i Instant) NanoOfDay() int64 { return i.nanoOfDay }

// UnixSeconds returns the number of whole seconds between the Unix epoch and
// i, rounded towards negative infinity. Sentinels return the values for
// MinValue and MaxValue.
func (i Instant) UnixSeconds() int64 {
	i = i.clamp()
	return int64(i.days)*secondsPerDay + i.nanoOfDay/NanosPerSecond
}

// UnixNanos returns the number of nanoseconds between the Unix epoch and i.
// Returns an error wrapping ErrOverflow if the count does not fit in an
// int64 (roughly the years 1678 to 2262) or i is a sentinel.
func (i Instant) UnixNanos() (int64, error) {
	if !i.IsValid() {
		return 0, fmt.Errorf("%w: %v has no nanosecond count", ErrOverflow, i)
	}
	days, nanos := int64(i.days), i.nanoOfDay
	if days < 0 {
		// Borrow a day so the partial day before MinInt64 still fits.
		days++
		nanos -= NanosPerDay
	}
	hi := days * NanosPerDay
	n := hi + nanos
	if hi/NanosPerDay != days || (nanos > 0 && n < hi) || (nanos < 0 && n > hi) {
		return 0, fmt.Errorf("%w: %v does not fit in int64 nanoseconds", ErrOverflow, i)
	}
	return n, nil
}

// Time returns i as a UTC time.Time. Sentinels return the times of MinValue
// and MaxValue.
func (i Instant) Time() time.Time {
	i = i.clamp()
	return time.Unix(
		int64(i.days)*secondsPerDay+i.nanoOfDay/NanosPerSecond,
		i.nanoOfDay%NanosPerSecond,
	).UTC()
}

// clamp maps the sentinels to MinValue and MaxValue.
func (i Instant) clamp() Instant {
	switch i.tag {
	case beforeTime:
		return MinValue
	case afterTime:
		return MaxValue
	default:
		return i
	}
}

// Compare compares i with u. If i is before u, it returns -1; if i is after
// u, it returns +1; if they're the same, it returns 0.
func (i Instant) Compare(u Instant) int {
	if i.tag != u.tag {
		return cmp.Compare(i.tag, u.tag)
	}
	if c := cmp.Compare(i.days, u.days); c != 0 {
		return c
	}
	return cmp.Compare(i.nanoOfDay, u.nanoOfDay)
}

// Before reports whether i is before u.
func (i Instant) Before(u Instant) bool { return i.Compare(u) < 0 }

// After reports whether i is after u.
func (i Instant) After(u Instant) bool { return i.Compare(u) > 0 }

// Add returns i+d. The sentinels absorb any duration. Returns an error
// wrapping ErrOverflow if the result leaves [MinValue, MaxValue].
func (i Instant) Add(d time.Duration) (Instant, error) {
	if !i.IsValid() {
		return i, nil
	}
	n := int64(d)
	days := int64(i.days) + floorDiv(n, NanosPerDay)
	nanos := i.nanoOfDay + floorMod(n, NanosPerDay)
	if nanos >= NanosPerDay {
		nanos -= NanosPerDay
		days++
	}
	return instantFromParts(days, nanos)
}

// Plus returns the local instant observed at i on a clock running at offset
// o. Local instants may extend a day beyond the instant range, so Plus cannot
// overflow. The sentinels map to the corresponding local sentinels.
func (i Instant) Plus(o Offset) LocalInstant {
	if !i.IsValid() {
		return LocalInstant{tag: i.tag}
	}
	days, nanos := addNanos(i.days, i.nanoOfDay, o.Nanoseconds())
	return LocalInstant{days: days, nanoOfDay: nanos}
}

// addNanos adds n, which must have a magnitude under one day, to the day
// and nanosecond pair and renormalizes the result.
func addNanos(days int32, nanoOfDay, n int64) (int32, int64) {
	nanoOfDay += n
	switch {
	case nanoOfDay < 0:
		return days - 1, nanoOfDay + NanosPerDay
	case nanoOfDay >= NanosPerDay:
		return days + 1, nanoOfDay - NanosPerDay
	default:
		return days, nanoOfDay
	}
}

// String returns i in RFC 3339 format with nanosecond precision, or
// "BeginningOfTime" or "EndOfTime" for the sentinels.
func (i Instant) String() string {
	switch i.tag {
	case beforeTime:
		return "BeginningOfTime"
	case afterTime:
		return "EndOfTime"
	default:
		return i.Time().Format(time.RFC3339Nano)
	}
}
