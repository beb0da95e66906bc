package zone

import (
	"fmt"
	"slices"

	"github.com/theory/zonetime/zone/types"
)

// Mapping describes how a local time maps onto the instants of a zone. Count
// is 0 when the local time falls in a gap, 1 when it occurs exactly once, and
// 2 when it occurs twice.
//
// When Count is 1, EarlyInterval and LateInterval are the same interval. When
// it is 2, EarlyInterval is the earlier of the two intervals containing the
// local time and LateInterval the later. When it is 0, EarlyInterval is the
// interval before the gap and LateInterval the one after it.
type Mapping struct {
	zone  Zone
	local types.LocalInstant
	early Interval
	late  Interval
	count int
}

// MapLocal maps the local time l onto z.
//
// It starts from the interval containing l read as a UTC instant. Because
// every wall offset of z lies within [z.MinOffset(), z.MaxOffset()], any
// interval whose local span could contain l lies no further back than the
// first interval starting at or before l - MaxOffset and no further forward
// than the first ending after l - MinOffset. MapLocal walks that neighborhood
// and collects the intervals whose local span holds l.
func MapLocal(z Zone, l types.LocalInstant) Mapping {
	m := Mapping{zone: z, local: l}
	if !l.IsValid() {
		// The local sentinels lie beyond every wall-clock reading.
		t, _ := l.Minus(types.ZeroOffset)
		m.early = z.Interval(t)
		m.late, m.count = m.early, 1
		return m
	}

	guess := z.Interval(l.MinusZeroOffset())
	maxOff, minOff := z.MaxOffset(), z.MinOffset()

	span := make([]Interval, 1, 4)
	span[0] = guess
	for iv := guess; iv.HasStart() && iv.start.Plus(maxOff).After(l); {
		iv = z.Interval(justBefore(iv.start))
		span = append(span, iv)
	}
	slices.Reverse(span)
	for iv := guess; iv.HasEnd() && !iv.end.Plus(minOff).After(l); {
		iv = z.Interval(iv.end)
		span = append(span, iv)
	}

	for _, iv := range span {
		if !iv.ContainsLocal(l) {
			continue
		}
		if m.count == 0 {
			m.early = iv
		}
		m.late = iv
		m.count++
	}

	switch {
	case m.count > 2:
		// Only possible if z reuses a wall-clock reading three times, which
		// no real zone does. Keep the outermost pair.
		m.count = 2
	case m.count == 0:
		// The first interval of span starts locally at or before l and the
		// last after it, so the gap lies between two neighbors in span.
		for i := len(span) - 2; i >= 0; i-- {
			if !span[i].LocalStart().After(l) {
				m.early, m.late = span[i], span[i+1]
				break
			}
		}
	}

	return m
}

// Zone returns the zone of the mapping.
func (m Mapping) Zone() Zone { return m.zone }

// Local returns the local time that was mapped.
func (m Mapping) Local() types.LocalInstant { return m.local }

// Count returns the number of instants at which the local time occurs: 0, 1,
// or 2.
func (m Mapping) Count() int { return m.count }

// EarlyInterval returns the earlier interval of the mapping.
func (m Mapping) EarlyInterval() Interval { return m.early }

// LateInterval returns the later interval of the mapping.
func (m Mapping) LateInterval() Interval { return m.late }

// Single returns the instant at which the local time occurs. Returns an
// error wrapping ErrSkippedTime or ErrAmbiguousTime if Count is not 1.
func (m Mapping) Single() (types.Instant, error) {
	switch m.count {
	case 0:
		return types.Instant{}, m.skipped()
	case 1:
		return m.at(m.early)
	default:
		return types.Instant{}, fmt.Errorf(
			"%w: local time %v occurs twice in zone %s, at offsets %v and %v",
			ErrAmbiguousTime, m.local, m.zone.ID(), m.early.wall, m.late.wall,
		)
	}
}

// First returns the earlier instant at which the local time occurs. Returns
// an error wrapping ErrSkippedTime if Count is 0.
func (m Mapping) First() (types.Instant, error) {
	if m.count == 0 {
		return types.Instant{}, m.skipped()
	}
	return m.at(m.early)
}

// Last returns the later instant at which the local time occurs. Returns an
// error wrapping ErrSkippedTime if Count is 0.
func (m Mapping) Last() (types.Instant, error) {
	if m.count == 0 {
		return types.Instant{}, m.skipped()
	}
	return m.at(m.late)
}

// Resolve resolves the mapping to a single instant using r.
func (m Mapping) Resolve(r Resolver) (types.Instant, error) { return r(m) }

// String returns a representation of m for debugging.
func (m Mapping) String() string {
	switch m.count {
	case 0:
		return fmt.Sprintf("%v in %s: skipped between %s and %s", m.local, m.zone.ID(), m.early.name, m.late.name)
	case 1:
		return fmt.Sprintf("%v in %s: %s", m.local, m.zone.ID(), m.early.name)
	default:
		return fmt.Sprintf("%v in %s: ambiguous between %s and %s", m.local, m.zone.ID(), m.early.name, m.late.name)
	}
}

func (m Mapping) at(iv Interval) (types.Instant, error) {
	return m.local.Minus(iv.wall)
}

func (m Mapping) skipped() error {
	return fmt.Errorf(
		"%w: local time %v falls in the gap between %v and %v in zone %s",
		ErrSkippedTime, m.local, m.early.LocalEnd(), m.late.LocalStart(), m.zone.ID(),
	)
}

// Resolver converts a Mapping to a single instant.
type Resolver func(Mapping) (types.Instant, error)

// Strict resolves only unambiguous local times. Returns an error wrapping
// ErrSkippedTime or ErrAmbiguousTime otherwise.
func Strict(m Mapping) (types.Instant, error) { return m.Single() }

// Lenient resolves an ambiguous local time to its earlier instant and a
// skipped local time by reading it at the offset in effect before the gap,
// which shifts it forward by the length of the gap.
func Lenient(m Mapping) (types.Instant, error) {
	if m.count == 0 {
		return m.at(m.early)
	}
	return m.First()
}

// Earlier resolves an ambiguous local time to its earlier instant and a
// skipped local time to the first instant after the gap.
func Earlier(m Mapping) (types.Instant, error) {
	if m.count == 0 {
		return m.late.start, nil
	}
	return m.First()
}

// Later resolves an ambiguous local time to its later instant and a skipped
// local time to the first instant after the gap.
func Later(m Mapping) (types.Instant, error) {
	if m.count == 0 {
		return m.late.start, nil
	}
	return m.Last()
}
