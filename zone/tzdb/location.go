package tzdb

import (
	"fmt"
	"time"

	"4d63.com/tz"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/types"
)

// DefaultHorizon is the last year for which LocationSource precomputes
// transitions.
const DefaultHorizon = 2037

// LoadFunc loads a *time.Location by name.
type LoadFunc func(name string) (*time.Location, error)

// LocationSource is a Source that builds zones from *time.Location values.
// The zero value loads locations from the IANA data embedded in
// 4d63.com/tz, so results do not depend on the host's zoneinfo files.
type LocationSource struct {
	// Loader loads locations. Defaults to tz.LoadLocation.
	Loader LoadFunc

	// Horizon is the last year to precompute. Defaults to DefaultHorizon.
	Horizon int
}

// Load returns the zone for id. It never loads the host's local time zone.
func (s LocationSource) Load(id string) (zone.Zone, error) {
	if id == "" || id == "Local" {
		return nil, fmt.Errorf("%w %s", ErrUnknownZone, id)
	}

	load := s.Loader
	if load == nil {
		load = tz.LoadLocation
	}
	loc, err := load(id)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrUnknownZone, id, err)
	}

	horizon := s.Horizon
	if horizon == 0 {
		horizon = DefaultHorizon
	}
	return FromLocation(id, loc, horizon)
}

// FromLocation converts loc into a zone identified by id. It precomputes
// every transition before the start of the year following horizon. If loc
// continues to change offsets after that, the zone consults loc directly for
// later instants.
//
// A *time.Location reports only whether each offset is daylight saving time,
// not by how much, so FromLocation takes the savings of a daylight saving
// interval to be its offset less that of the adjacent standard interval,
// preferring the one before it, or one hour if neither neighbour is
// standard time.
func FromLocation(id string, loc *time.Location, horizon int) (*zone.Precalculated, error) {
	stop := time.Date(horizon+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	var (
		states []state
		more   bool
		t      = types.MinValue.Time().In(loc)
	)
	for {
		st := stateAt(t)
		// Repeats of the same name and offset extend the previous state.
		if n := len(states); n == 0 || !states[n-1].same(st) {
			at := types.BeforeMinValue
			if n > 0 {
				var err error
				if at, err = types.FromTime(t); err != nil {
					return nil, fmt.Errorf("zone %s: %w", id, err)
				}
			}
			st.at = at
			states = append(states, st)
		}

		end, ok := nextBound(t)
		if !ok {
			break
		}
		if !end.Before(stop) {
			more = true
			break
		}
		t = end.In(loc)
	}

	transitions := make([]zone.Transition, len(states))
	for i, st := range states {
		var prev, next *state
		if i > 0 {
			prev = &states[i-1]
		}
		if i+1 < len(states) {
			next = &states[i+1]
		}
		savings, err := st.savings(prev, next)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", id, err)
		}
		wall, err := types.NewOffset(st.offset)
		if err != nil {
			return nil, fmt.Errorf("zone %s: %w", id, err)
		}
		transitions[i] = zone.Transition{
			At:         st.at,
			Name:       st.name,
			WallOffset: wall,
			Savings:    savings,
		}
	}

	var tail zone.TailRule
	if more {
		var err error
		if tail, err = newLocationTail(loc, stop); err != nil {
			return nil, fmt.Errorf("zone %s: %w", id, err)
		}
	}
	return zone.NewPrecalculated(id, transitions, tail)
}

// state describes the name and offset in effect in a location from at until
// the next state.
type state struct {
	at     types.Instant
	name   string
	offset int
	isDST  bool
}

func stateAt(t time.Time) state {
	name, offset := t.Zone()
	return state{name: name, offset: offset, isDST: t.IsDST()}
}

func (s state) same(o state) bool {
	return s.name == o.name && s.offset == o.offset && s.isDST == o.isDST
}

// savings infers the daylight saving offset of s from its neighbours.
func (s state) savings(prev, next *state) (types.Offset, error) {
	if !s.isDST {
		return types.ZeroOffset, nil
	}
	for _, n := range []*state{prev, next} {
		if n != nil && !n.isDST && n.offset != s.offset {
			return types.NewOffset(s.offset - n.offset)
		}
	}
	return types.OffsetOfHours(1), nil
}

// locationTail answers lookups beyond the precomputed horizon by consulting
// a *time.Location.
type locationTail struct {
	loc *time.Location
	min types.Offset
	max types.Offset
}

// tailYears is the number of years after the horizon scanned to find the
// offsets a location's rule produces.
const tailYears = 2

func newLocationTail(loc *time.Location, from time.Time) (*locationTail, error) {
	lt := &locationTail{loc: loc}
	until := from.AddDate(tailYears, 0, 0)
	first := true
	for t := from.In(loc); t.Before(until); {
		_, secs := t.Zone()
		off, err := types.NewOffset(secs)
		if err != nil {
			return nil, err
		}
		if first || off.Compare(lt.min) < 0 {
			lt.min = off
		}
		if first || off.Compare(lt.max) > 0 {
			lt.max = off
		}
		first = false

		end, ok := nextBound(t)
		if !ok {
			break
		}
		t = end.In(loc)
	}
	return lt, nil
}

// nextBound returns the first time after t at which t's location may change
// offsets, or false if it never changes again. Past the last transition of a
// location, ZoneBounds reports boundaries at the start of each year and, in
// leap years, an end of year one day early that may not follow t. nextBound
// skips to the next year in that case.
func nextBound(t time.Time) (time.Time, bool) {
	_, end := t.ZoneBounds()
	switch {
	case end.IsZero():
		return time.Time{}, false
	case end.After(t):
		return end, true
	default:
		return time.Date(t.UTC().Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC).In(t.Location()), true
	}
}

// MinOffset returns the smallest offset observed after the horizon.
func (lt *locationTail) MinOffset() types.Offset { return lt.min }

// MaxOffset returns the largest offset observed after the horizon.
func (lt *locationTail) MaxOffset() types.Offset { return lt.max }

// Interval returns the interval of lt.loc containing t. Boundaries
// ZoneBounds reports between identical states are skipped, so the interval
// runs from the previous change of state to the next.
func (lt *locationTail) Interval(t types.Instant) zone.Interval {
	switch {
	case t.Compare(types.MinValue) < 0:
		t = types.MinValue
	case t.Compare(types.MaxValue) > 0:
		t = types.MaxValue
	}

	tt := t.Time().In(lt.loc)
	st := stateAt(tt)

	start, _ := tt.ZoneBounds()
	for !start.IsZero() {
		before := start.Add(-time.Nanosecond).In(lt.loc)
		if !stateAt(before).same(st) {
			break
		}
		start, _ = before.ZoneBounds()
	}

	last := types.MaxValue.Time()
	end, ok := nextBound(tt)
	for ok && !end.After(last) && stateAt(end.In(lt.loc)).same(st) {
		end, ok = nextBound(end.In(lt.loc))
	}

	var prev, next *state
	if st.isDST {
		if !start.IsZero() {
			p := stateAt(start.Add(-time.Nanosecond).In(lt.loc))
			prev = &p
		}
		if ok {
			n := stateAt(end.In(lt.loc))
			next = &n
		}
	}

	// Offsets from a loaded location are always in range.
	savings, _ := st.savings(prev, next)
	return zone.MustInterval(
		st.name, boundary(start, types.BeforeMinValue), boundary(end, types.AfterMaxValue),
		types.MustOffset(st.offset), savings,
	)
}

// boundary converts a zone boundary into an instant, returning sentinel if
// it is zero or out of range.
func boundary(t time.Time, sentinel types.Instant) types.Instant {
	if t.IsZero() {
		return sentinel
	}
	i, err := types.FromTime(t)
	if err != nil {
		return sentinel
	}
	return i
}
