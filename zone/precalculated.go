package zone

import (
	"fmt"
	"sort"

	"github.com/theory/zonetime/zone/types"
)

// Transition describes a change of state in a zone: from At onward, until
// the next Transition, clocks show WallOffset and the zone goes by Name.
type Transition struct {
	At         types.Instant
	Name       string
	WallOffset types.Offset
	Savings    types.Offset
}

// TailRule computes intervals from a recurring rule, such as "DST from the
// second Sunday in March to the first Sunday in November". A Precalculated
// zone consults its TailRule for instants at or after its final transition.
type TailRule interface {
	IntervalMap

	// MinOffset returns the smallest wall offset the rule produces.
	MinOffset() types.Offset

	// MaxOffset returns the largest wall offset the rule produces.
	MaxOffset() types.Offset
}

// Precalculated is a zone defined by a table of transitions, optionally
// followed by a TailRule.
type Precalculated struct {
	id        string
	starts    []types.Instant
	intervals []Interval
	tail      TailRule
	tailStart types.Instant
	minOffset types.Offset
	maxOffset types.Offset
}

// NewPrecalculated creates a zone from transitions, which must be in strictly
// ascending order of At. The state of the first transition applies from the
// beginning of time, so its At value serves only for ordering. If tail is
// nil, the state of the last transition applies to the end of time;
// otherwise tail answers for every instant at or after the last transition,
// with the first of its intervals truncated to begin there.
//
// Returns an error wrapping ErrInvalidRange if transitions is empty or out of
// order.
func NewPrecalculated(id string, transitions []Transition, tail TailRule) (*Precalculated, error) {
	if len(transitions) == 0 {
		return nil, fmt.Errorf("%w: zone %s has no transitions", ErrInvalidRange, id)
	}

	p := &Precalculated{
		id:        id,
		starts:    make([]types.Instant, len(transitions)),
		intervals: make([]Interval, len(transitions)),
		tail:      tail,
		minOffset: transitions[0].WallOffset,
		maxOffset: transitions[0].WallOffset,
	}

	for i, tr := range transitions {
		start, end := tr.At, types.AfterMaxValue
		if i == 0 {
			start = types.BeforeMinValue
		}
		if i+1 < len(transitions) {
			end = transitions[i+1].At
			if !tr.At.Before(end) {
				return nil, fmt.Errorf(
					"%w: zone %s transition %d at %v is not before transition %d at %v",
					ErrInvalidRange, id, i, tr.At, i+1, end,
				)
			}
		}

		iv, err := NewInterval(tr.Name, start, end, tr.WallOffset, tr.Savings)
		if err != nil {
			return nil, fmt.Errorf("zone %s transition %d: %w", id, i, err)
		}

		p.starts[i] = start
		p.intervals[i] = iv
		p.widen(tr.WallOffset, tr.WallOffset)
	}

	p.tailStart = p.starts[len(p.starts)-1]
	if tail != nil {
		p.widen(tail.MinOffset(), tail.MaxOffset())
	}

	return p, nil
}

func (p *Precalculated) widen(lo, hi types.Offset) {
	if lo.Compare(p.minOffset) < 0 {
		p.minOffset = lo
	}
	if hi.Compare(p.maxOffset) > 0 {
		p.maxOffset = hi
	}
}

// ID returns the identifier of p.
func (p *Precalculated) ID() string { return p.id }

// MinOffset returns the smallest wall offset of any transition or of the
// tail rule.
func (p *Precalculated) MinOffset() types.Offset { return p.minOffset }

// MaxOffset returns the largest wall offset of any transition or of the
// tail rule.
func (p *Precalculated) MaxOffset() types.Offset { return p.maxOffset }

// Interval returns the interval containing t.
func (p *Precalculated) Interval(t types.Instant) Interval {
	if p.tail != nil && !t.Before(p.tailStart) {
		iv := p.tail.Interval(t)
		if iv.start.Before(p.tailStart) {
			iv = iv.withStart(p.tailStart)
		}
		return iv
	}

	// Binary search for the last interval starting at or before t. The
	// first interval starts at BeforeMinValue, so there always is one.
	i := sort.Search(len(p.starts), func(i int) bool {
		return p.starts[i].After(t)
	})
	return p.intervals[i-1]
}

// Tail returns the tail rule of p, or nil if it has none.
func (p *Precalculated) Tail() TailRule { return p.tail }

// String returns the ID of p.
func (p *Precalculated) String() string { return p.id }
