package types

import (
	"cmp"
	"fmt"
	"time"
)

// LocalInstant is a wall-clock reading: the value an Instant takes once a UTC
// offset has been added to it. It shares the representation of Instant but is
// a distinct type because the two are not comparable without going through a
// time zone.
//
// Local instants extend one day beyond each end of the instant range so that
// every finite Instant plus any Offset is representable.
type LocalInstant struct {
	days      int32
	nanoOfDay int64
	tag       tag
}

const (
	minLocalDays = int64(MinDays) - 1
	maxLocalDays = int64(MaxDays) + 1
)

// LocalOf returns the wall-clock reading of t, ignoring its location: the
// year, month, day, and time of day shown by t become the local instant.
// Returns an error wrapping ErrOverflow if the reading is out of range.
func LocalOf(t time.Time) (LocalInstant, error) {
	_, off := t.Zone()
	sec := t.Unix() + int64(off)
	days := floorDiv(sec, secondsPerDay)
	if days < minLocalDays || days > maxLocalDays {
		return LocalInstant{}, fmt.Errorf(
			"%w: local date %v is outside the supported range",
			ErrOverflow, t.Format("2006-01-02"),
		)
	}
	return LocalInstant{
		days:      int32(days),
		nanoOfDay: floorMod(sec, secondsPerDay)*NanosPerSecond + int64(t.Nanosecond()),
	}, nil
}

// NewLocal returns the local instant for the given wall-clock fields in the
// proleptic Gregorian calendar. The fields are normalized as by time.Date.
// Readings before or after the supported range saturate to the local
// equivalents of BeforeMinValue and AfterMaxValue.
func NewLocal(year int, month time.Month, day, hour, minute, sec, nsec int) LocalInstant {
	t := time.Date(year, month, day, hour, minute, sec, nsec, time.UTC)
	l, err := LocalOf(t)
	if err != nil {
		if year < 0 {
			return LocalInstant{tag: beforeTime}
		}
		return LocalInstant{tag: afterTime}
	}
	return l
}

// IsValid returns true if l is finite and false for the local sentinels.
func (l LocalInstant) IsValid() bool { return l.tag == finite }

// Days returns the local day number relative to 1970-01-01.
func (l LocalInstant) Days() int32 { return l.days }

// NanoOfDay returns the nanosecond within the local day, in [0, NanosPerDay).
func (l LocalInstant) NanoOfDay() int64 { return l.nanoOfDay }

// Compare compares l with m. If l is before m, it returns -1; if l is after
// m, it returns +1; if they're the same, it returns 0.
func (l LocalInstant) Compare(m LocalInstant) int {
	if l.tag != m.tag {
		return cmp.Compare(l.tag, m.tag)
	}
	if c := cmp.Compare(l.days, m.days); c != 0 {
		return c
	}
	return cmp.Compare(l.nanoOfDay, m.nanoOfDay)
}

// Before reports whether l is before m.
func (l LocalInstant) Before(m LocalInstant) bool { return l.Compare(m) < 0 }

// After reports whether l is after m.
func (l LocalInstant) After(m LocalInstant) bool { return l.Compare(m) > 0 }

// Minus returns the Instant at which a clock running at offset o reads l.
// The local sentinels map to BeforeMinValue and AfterMaxValue. Returns an
// error wrapping ErrOverflow if the result is out of the instant range.
func (l LocalInstant) Minus(o Offset) (Instant, error) {
	if !l.IsValid() {
		return Instant{tag: l.tag}, nil
	}
	days, nanos := addNanos(l.days, l.nanoOfDay, -o.Nanoseconds())
	return instantFromParts(int64(days), nanos)
}

// MinusZeroOffset reinterprets l as an Instant, as though it were read on a
// UTC clock. Values beyond the instant range clamp to MinValue and MaxValue.
func (l LocalInstant) MinusZeroOffset() Instant {
	switch {
	case l.tag == beforeTime || l.days < MinDays:
		return MinValue
	case l.tag == afterTime || l.days > MaxDays:
		return MaxValue
	default:
		return Instant{days: l.days, nanoOfDay: l.nanoOfDay}
	}
}

// Time returns the wall-clock reading l as a time.Time in UTC. The local
// sentinels return the times of MinValue and MaxValue.
func (l LocalInstant) Time() time.Time {
	switch l.tag {
	case beforeTime:
		return MinValue.Time()
	case afterTime:
		return MaxValue.Time()
	}
	return time.Unix(
		int64(l.days)*secondsPerDay+l.nanoOfDay/NanosPerSecond,
		l.nanoOfDay%NanosPerSecond,
	).UTC()
}

// localFormat represents the canonical string format for LocalInstant
// values.
const localFormat = "2006-01-02T15:04:05.999999999"

// String returns l using the format "2006-01-02T15:04:05.999999999", or
// "BeginningOfTime" or "EndOfTime" for the local sentinels.
func (l LocalInstant) String() string {
	switch l.tag {
	case beforeTime:
		return "BeginningOfTime"
	case afterTime:
		return "EndOfTime"
	default:
		return l.Time().Format(localFormat)
	}
}
