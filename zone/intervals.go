package zone

import (
	"fmt"
	"iter"
	"slices"

	"github.com/theory/zonetime/zone/types"
)

// Coalescing determines which adjacent intervals IntervalsWith merges.
type Coalescing int

const (
	// MatchNames merges nothing: every interval the zone defines is
	// yielded, even where neighbors differ only by name.
	MatchNames Coalescing = iota

	// OnlyMatchWallOffset merges neighbors with equal wall offsets. A merged
	// interval keeps the name and offset split of the earliest interval in
	// its run.
	OnlyMatchWallOffset

	// MatchOffsetComponents merges neighbors with equal wall offsets and
	// equal savings, and therefore equal standard offsets. A merged interval
	// keeps the name of the earliest interval in its run.
	MatchOffsetComponents
)

// String returns the name of the coalescing option.
func (c Coalescing) String() string {
	switch c {
	case MatchNames:
		return "names"
	case OnlyMatchWallOffset:
		return "wall"
	case MatchOffsetComponents:
		return "components"
	default:
		return fmt.Sprintf("Coalescing(%d)", int(c))
	}
}

// ParseCoalescing parses the string form of a Coalescing value.
func ParseCoalescing(s string) (Coalescing, error) {
	for c := MatchNames; c <= MatchOffsetComponents; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return MatchNames, fmt.Errorf("unknown coalescing option %q", s)
}

// merges reports whether a and b, adjacent with a first, belong in the same
// coalesced interval.
func (c Coalescing) merges(a, b Interval) bool {
	switch c {
	case OnlyMatchWallOffset:
		return a.wall == b.wall
	case MatchOffsetComponents:
		return a.wall == b.wall && a.savings == b.savings
	default:
		return false
	}
}

// matches reports whether a and b are interchangeable under c.
func (c Coalescing) matches(a, b Interval) bool {
	switch c {
	case OnlyMatchWallOffset:
		return a.wall == b.wall
	case MatchOffsetComponents:
		return a.wall == b.wall && a.savings == b.savings
	default:
		return a.name == b.name && a.wall == b.wall && a.savings == b.savings
	}
}

// Intervals returns every interval of z that overlaps [start, end), in
// ascending order. The first and last intervals are not clipped to the
// range. If start equals end, the sequence is empty. Returns an error
// wrapping ErrInvalidRange if end precedes start.
//
// The sequence computes intervals lazily each time it is ranged over.
func Intervals(z Zone, start, end types.Instant) (iter.Seq[Interval], error) {
	return IntervalsWith(z, start, end, MatchNames)
}

// IntervalsWith is like Intervals, but merges runs of adjacent intervals in
// the enumerated sequence according to c. A merged interval spans its whole
// run and keeps the name of the earliest interval in it.
func IntervalsWith(z Zone, start, end types.Instant, c Coalescing) (iter.Seq[Interval], error) {
	if end.Before(start) {
		return nil, fmt.Errorf(
			"%w: end %v precedes start %v", ErrInvalidRange, end, start,
		)
	}
	if c < MatchNames || c > MatchOffsetComponents {
		return nil, fmt.Errorf("unknown coalescing option %v", c)
	}

	seq := func(yield func(Interval) bool) {
		for cursor := start; cursor.Before(end); {
			iv := z.Interval(cursor)
			if !yield(iv) {
				return
			}
			cursor = iv.end
		}
	}
	if c == MatchNames {
		return seq, nil
	}
	return coalesce(seq, c), nil
}

// coalesce merges runs of adjacent intervals from seq for which c.merges
// returns true.
func coalesce(seq iter.Seq[Interval], c Coalescing) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		var pending Interval
		have := false
		for iv := range seq {
			switch {
			case !have:
				pending, have = iv, true
			case c.merges(pending, iv):
				pending = pending.withEnd(iv.end)
			default:
				if !yield(pending) {
					return
				}
				pending = iv
			}
		}
		if have {
			yield(pending)
		}
	}
}

// Equivalent reports whether zones a and b behave identically over
// [start, end) according to c. Intervals are clipped to the range before
// comparison, so transitions outside it are ignored. Under MatchNames the
// zones must agree on interval names as well as offsets. Returns an error
// wrapping ErrInvalidRange if end precedes start.
func Equivalent(a, b Zone, start, end types.Instant, c Coalescing) (bool, error) {
	as, err := IntervalsWith(a, start, end, c)
	if err != nil {
		return false, err
	}
	bs, err := IntervalsWith(b, start, end, c)
	if err != nil {
		return false, err
	}

	clip := func(iv Interval) Interval {
		if iv.start.Before(start) {
			iv = iv.withStart(start)
		}
		if iv.end.After(end) {
			iv = iv.withEnd(end)
		}
		return iv
	}

	next, stop := iter.Pull(as)
	defer stop()
	for bv := range bs {
		av, ok := next()
		if !ok {
			return false, nil
		}
		av, bv = clip(av), clip(bv)
		if av.start != bv.start || av.end != bv.end || !c.matches(av, bv) {
			return false, nil
		}
	}
	_, more := next()
	return !more, nil
}

// Collect returns the intervals of z overlapping [start, end) as a slice.
func Collect(z Zone, start, end types.Instant, c Coalescing) ([]Interval, error) {
	seq, err := IntervalsWith(z, start, end, c)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}
