// Package zone resolves instants and wall-clock times against time zones.
//
// A time zone is not a single offset but a timeline of offset changes. This
// package models a zone as a gapless, non-overlapping sequence of Interval
// values, each a maximal half-open span of time with a constant name and UTC
// offset, and provides the three operations built on that model:
//
//   - point lookup: the Interval covering an instant (Zone.Interval)
//   - local resolution: the Interval or Intervals in which a wall-clock
//     reading occurs, which may be none (a gap) or two (an ambiguity)
//     (MapLocal)
//   - range enumeration: every Interval touching a span of time, optionally
//     coalescing neighbours that differ only in attributes the caller does
//     not care about (Intervals, IntervalsWith)
//
// Three zone implementations are provided: Fixed, for a single offset
// forever; Precalculated, for an ascending transition table with an optional
// recurring TailRule beyond it; and Cached, a decorator that amortizes
// repeated nearby lookups.
//
// Zones are immutable once built and safe for concurrent use. Cached keeps
// mutable state, but results never depend on it.
package zone

import (
	"errors"
	"time"

	"github.com/theory/zonetime/zone/types"
)

var (
	// ErrInvalidRange wraps errors reporting an end that precedes its start,
	// passed either to range enumeration or interval construction.
	ErrInvalidRange = errors.New("invalid range")

	// ErrSkippedTime wraps errors reporting that a local time does not occur
	// in a zone because the clocks skipped over it.
	ErrSkippedTime = errors.New("skipped time")

	// ErrAmbiguousTime wraps errors reporting that a local time occurs twice
	// in a zone because the clocks went back over it.
	ErrAmbiguousTime = errors.New("ambiguous time")
)

// IntervalMap defines the capability shared by every zone and tail rule:
// resolving an instant to the Interval that contains it.
type IntervalMap interface {
	// Interval returns the Interval containing t. It must accept every
	// instant, including types.BeforeMinValue and types.AfterMaxValue.
	Interval(t types.Instant) Interval
}

// Zone defines the interface for time zones.
type Zone interface {
	IntervalMap

	// ID returns the stable identifier of the zone, such as "Europe/London".
	ID() string

	// MinOffset returns the smallest wall offset the zone ever observes.
	MinOffset() types.Offset

	// MaxOffset returns the largest wall offset the zone ever observes.
	MaxOffset() types.Offset
}

// OffsetAt returns the wall offset in effect in z at t.
func OffsetAt(z Zone, t types.Instant) types.Offset {
	return z.Interval(t).WallOffset()
}

// NextTransition returns the first transition in z strictly after t. Returns
// false if z never changes offset after t.
func NextTransition(z Zone, t types.Instant) (types.Instant, bool) {
	iv := z.Interval(t)
	if !iv.HasEnd() {
		return types.AfterMaxValue, false
	}
	return iv.End(), true
}

// PreviousTransition returns the most recent transition in z at or before t.
// Returns false if z has observed a single interval since the beginning of
// time up to t.
func PreviousTransition(z Zone, t types.Instant) (types.Instant, bool) {
	iv := z.Interval(t)
	if !iv.HasStart() {
		return types.BeforeMinValue, false
	}
	return iv.Start(), true
}

// justBefore returns the instant one nanosecond before t, or
// types.BeforeMinValue if t is types.MinValue.
func justBefore(t types.Instant) types.Instant {
	prev, err := t.Add(-time.Nanosecond)
	if err != nil {
		return types.BeforeMinValue
	}
	return prev
}
