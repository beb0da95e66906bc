package zone

import (
	"fmt"

	"github.com/theory/zonetime/zone/types"
)

// Interval represents a maximal half-open span of time, [Start, End), during
// which a zone's name and offsets are constant. Its start may be
// types.BeforeMinValue and its end types.AfterMaxValue, which stand for the
// beginning and end of time.
//
// Intervals are comparable values: two Intervals are equal if all of their
// fields are equal.
type Interval struct {
	name    string
	start   types.Instant
	end     types.Instant
	wall    types.Offset
	savings types.Offset
}

// NewInterval creates an Interval. The standard offset is wall - savings.
// Returns an error wrapping ErrInvalidRange if end is not after start and
// an error wrapping types.ErrOverflow if the standard offset is out of range.
func NewInterval(
	name string,
	start, end types.Instant,
	wall, savings types.Offset,
) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf(
			"%w: interval %q ends at %v, not after its start at %v",
			ErrInvalidRange, name, end, start,
		)
	}
	if _, err := wall.Sub(savings); err != nil {
		return Interval{}, fmt.Errorf("interval %q standard offset: %w", name, err)
	}
	return Interval{name: name, start: start, end: end, wall: wall, savings: savings}, nil
}

// MustInterval is like NewInterval but panics on error.
func MustInterval(name string, start, end types.Instant, wall, savings types.Offset) Interval {
	iv, err := NewInterval(name, start, end, wall, savings)
	if err != nil {
		panic(err)
	}
	return iv
}

// Name returns the abbreviation or name of the interval, such as "EST".
func (iv Interval) Name() string { return iv.name }

// Start returns the first instant of the interval, or types.BeforeMinValue.
func (iv Interval) Start() types.Instant { return iv.start }

// End returns the first instant after the interval, or types.AfterMaxValue.
func (iv Interval) End() types.Instant { return iv.end }

// HasStart returns false if the interval extends back to the beginning of
// time.
func (iv Interval) HasStart() bool { return iv.start != types.BeforeMinValue }

// HasEnd returns false if the interval extends to the end of time.
func (iv Interval) HasEnd() bool { return iv.end != types.AfterMaxValue }

// WallOffset returns the offset observed on clocks during the interval.
func (iv Interval) WallOffset() types.Offset { return iv.wall }

// Savings returns the daylight savings portion of the wall offset.
func (iv Interval) Savings() types.Offset { return iv.savings }

// StandardOffset returns the wall offset less any daylight savings.
func (iv Interval) StandardOffset() types.Offset {
	return types.MustOffset(iv.wall.Seconds() - iv.savings.Seconds())
}

// LocalStart returns the wall-clock reading at the start of the interval.
func (iv Interval) LocalStart() types.LocalInstant { return iv.start.Plus(iv.wall) }

// LocalEnd returns the wall-clock reading at the end of the interval, as
// though the interval's offset were still in effect.
func (iv Interval) LocalEnd() types.LocalInstant { return iv.end.Plus(iv.wall) }

// Contains returns true if t is in [Start, End).
func (iv Interval) Contains(t types.Instant) bool {
	return !t.Before(iv.start) && t.Before(iv.end)
}

// ContainsLocal returns true if l is in [LocalStart, LocalEnd): that is, if
// a clock running at the interval's wall offset shows l at some instant
// within the interval.
func (iv Interval) ContainsLocal(l types.LocalInstant) bool {
	return !l.Before(iv.LocalStart()) && l.Before(iv.LocalEnd())
}

// Equal returns true if iv and o have identical fields.
func (iv Interval) Equal(o Interval) bool { return iv == o }

// String returns a representation of iv for debugging.
func (iv Interval) String() string {
	return fmt.Sprintf(
		"%s: [%v, %v) %v (%v)",
		iv.name, iv.start, iv.end, iv.wall, iv.savings,
	)
}

// withStart returns a copy of iv starting at start.
func (iv Interval) withStart(start types.Instant) Interval {
	iv.start = start
	return iv
}

// withEnd returns a copy of iv ending at end.
func (iv Interval) withEnd(end types.Instant) Interval {
	iv.end = end
	return iv
}
