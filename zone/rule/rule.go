// Package rule parses POSIX TZ strings, such as "EST5EDT,M3.2.0,M11.1.0",
// and evaluates them as recurring zone rules.
//
// A POSIX TZ string names a standard time and its offset, and optionally a
// daylight time, its offset, and the dates and times on which daylight time
// starts and ends each year. The format is that of the TZ environment
// variable described by POSIX, with the extensions of tzcode version 3:
// quoted names such as "<+03>", rule times from -167 to 167 hours, and
// permanent daylight time expressed as a rule covering the whole year.
//
// Offsets in a TZ string count hours west of Greenwich, so "EST5" has a UTC
// offset of -05:00. Parsed values use the usual east-positive convention.
package rule

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/types"
)

// ErrSyntax wraps errors reporting a malformed POSIX TZ string.
var ErrSyntax = errors.New("syntax")

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour

	// Rules applied when a string names a daylight time without rules.
	defaultRules = ",M3.2.0,M11.1.0"

	// Local time of a transition when a rule omits it.
	defaultTime = 2 * secondsPerHour

	maxZoneHours = 24
	maxRuleHours = 24*7 - 1
)

type kind int

const (
	standardOnly kind = iota
	permanentDST
	alternating
)

type state struct {
	name   string
	offset types.Offset
}

type dateKind int

const (
	julian       dateKind = iota // Jn: 1-365, never counting February 29
	zeroJulian                   // n: 0-365, counting February 29
	monthWeekDay                 // Mm.w.d: day d of week w of month m
)

// date is the yearly date and local time of a transition.
type date struct {
	kind    dateKind
	day     int
	month   time.Month
	week    int
	weekday time.Weekday
	secs    int
}

// Rule is a parsed POSIX TZ string. It implements zone.TailRule.
type Rule struct {
	source string
	kind   kind
	std    state
	dst    state
	start  date
	end    date
}

// Parse parses a POSIX TZ string. Returns an error wrapping ErrSyntax if s
// is malformed.
func Parse(s string) (*Rule, error) {
	p := &parser{src: s, rest: s}
	r := &Rule{source: s}

	var err error
	if r.std, err = p.state(); err != nil {
		return nil, err
	}
	if p.rest == "" {
		return r, nil
	}

	if r.dst.name, err = p.name(); err != nil {
		return nil, err
	}
	if p.rest != "" && p.rest[0] != ',' && p.rest[0] != ';' {
		if r.dst.offset, err = p.offset(); err != nil {
			return nil, err
		}
	} else if r.dst.offset, err = r.std.offset.Add(types.OffsetOfHours(1)); err != nil {
		return nil, p.wrap("daylight offset", err)
	}
	if _, err = r.dst.offset.Sub(r.std.offset); err != nil {
		return nil, p.wrap("daylight savings", err)
	}

	if p.rest == "" {
		p.rest = defaultRules
	}
	// POSIX requires a comma, but tzcode also accepts a semicolon.
	if p.rest[0] != ',' && p.rest[0] != ';' {
		return nil, p.errorf("expected ',' before rules")
	}
	p.rest = p.rest[1:]

	if r.start, err = p.date(); err != nil {
		return nil, err
	}
	if err = p.expect(','); err != nil {
		return nil, err
	}
	if r.end, err = p.date(); err != nil {
		return nil, err
	}
	if p.rest != "" {
		return nil, p.errorf("unexpected %q after rules", p.rest)
	}

	r.kind = alternating
	if r.start.kind != monthWeekDay && r.end.kind != monthWeekDay {
		// Daylight time lasting a whole leap year lasts forever, as in
		// "EST5EDT,0/0,J365/25".
		if r.end.unix(2000, r.dst.offset)-r.start.unix(2000, r.std.offset) >= 366*secondsPerDay {
			r.kind = permanentDST
		}
	}

	return r, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Rule {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the TZ string r was parsed from.
func (r *Rule) String() string { return r.source }

// StandardName returns the name of standard time.
func (r *Rule) StandardName() string { return r.std.name }

// StandardOffset returns the UTC offset of standard time.
func (r *Rule) StandardOffset() types.Offset { return r.std.offset }

// HasDaylight returns true if r observes daylight time for at least part of
// the year.
func (r *Rule) HasDaylight() bool { return r.kind != standardOnly }

// DaylightName returns the name of daylight time, or an empty string if r
// has none.
func (r *Rule) DaylightName() string { return r.dst.name }

// DaylightOffset returns the UTC offset of daylight time, or the standard
// offset if r has none.
func (r *Rule) DaylightOffset() types.Offset {
	if r.kind == standardOnly {
		return r.std.offset
	}
	return r.dst.offset
}

// MinOffset returns the smaller of the standard and daylight offsets.
func (r *Rule) MinOffset() types.Offset {
	if r.DaylightOffset().Compare(r.std.offset) < 0 {
		return r.dst.offset
	}
	return r.std.offset
}

// MaxOffset returns the larger of the standard and daylight offsets.
func (r *Rule) MaxOffset() types.Offset {
	if r.DaylightOffset().Compare(r.std.offset) > 0 {
		return r.dst.offset
	}
	return r.std.offset
}

// Zone returns a zone identified by id that follows r for all time.
func (r *Rule) Zone(id string) (*zone.Precalculated, error) {
	return zone.NewPrecalculated(id, []zone.Transition{{
		At:         types.BeforeMinValue,
		Name:       r.std.name,
		WallOffset: r.std.offset,
	}}, r)
}

// Interval returns the interval containing t.
func (r *Rule) Interval(t types.Instant) zone.Interval {
	switch r.kind {
	case standardOnly:
		return r.interval(types.BeforeMinValue, types.AfterMaxValue, false)
	case permanentDST:
		return r.interval(types.BeforeMinValue, types.AfterMaxValue, true)
	}

	// Rule times may fall up to a week outside the year, so two years on
	// either side bound the transitions around t.
	year := t.Time().Year()
	trans := make([]transition, 0, 10)
	for y := year - 2; y <= year+2; y++ {
		trans = r.appendYear(trans, y)
	}
	trans = collapse(trans)

	start, end := types.BeforeMinValue, types.AfterMaxValue
	dst := len(trans) > 0 && !trans[0].dst
	for _, tr := range trans {
		if tr.at.After(t) {
			end = tr.at
			break
		}
		start, dst = tr.at, tr.dst
	}
	return r.interval(start, end, dst)
}

func (r *Rule) interval(start, end types.Instant, dst bool) zone.Interval {
	if dst {
		return zone.MustInterval(
			r.dst.name, start, end, r.dst.offset,
			types.MustOffset(r.dst.offset.Seconds()-r.std.offset.Seconds()),
		)
	}
	return zone.MustInterval(r.std.name, start, end, r.std.offset, types.ZeroOffset)
}

// transition is a change to (dst true) or from daylight time.
type transition struct {
	at  types.Instant
	dst bool
}

// appendYear appends the transitions of year to trans. Transitions outside
// the instant range are dropped.
func (r *Rule) appendYear(trans []transition, year int) []transition {
	if at, err := types.FromUnixSeconds(r.start.unix(year, r.std.offset)); err == nil {
		trans = append(trans, transition{at: at, dst: true})
	}
	if at, err := types.FromUnixSeconds(r.end.unix(year, r.dst.offset)); err == nil {
		trans = append(trans, transition{at: at, dst: false})
	}
	return trans
}

// collapse sorts trans and removes transitions that change nothing. Of
// transitions at the same instant, the last one wins.
func collapse(trans []transition) []transition {
	slices.SortStableFunc(trans, func(a, b transition) int {
		return a.at.Compare(b.at)
	})
	out := trans[:0]
	for _, tr := range trans {
		if n := len(out); n > 0 && out[n-1].at == tr.at {
			out = out[:n-1]
		}
		if n := len(out); n > 0 && out[n-1].dst == tr.dst {
			continue
		}
		out = append(out, tr)
	}
	return out
}

// unix returns the Unix time of d in year on a clock running at offset.
func (d date) unix(year int, offset types.Offset) int64 {
	var day time.Time
	switch d.kind {
	case julian:
		day = time.Date(year, time.January, d.day, 0, 0, 0, 0, time.UTC)
		if d.day >= 31+29 && isLeap(year) {
			day = day.AddDate(0, 0, 1)
		}
	case zeroJulian:
		day = time.Date(year, time.January, 1+d.day, 0, 0, 0, 0, time.UTC)
	default:
		first := time.Date(year, d.month, 1, 0, 0, 0, 0, time.UTC)
		n := 1 + (int(d.weekday)-int(first.Weekday())+7)%7 + (d.week-1)*7
		if n > daysIn(year, d.month) {
			n -= 7
		}
		day = first.AddDate(0, 0, n-1)
	}
	return day.Unix() + int64(d.secs) - int64(offset.Seconds())
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// parser consumes a TZ string from the front.
type parser struct {
	src  string
	rest string
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s in TZ string %q", ErrSyntax, fmt.Sprintf(format, args...), p.src)
}

func (p *parser) wrap(what string, err error) error {
	return fmt.Errorf("%w: %s in TZ string %q: %w", ErrSyntax, what, p.src, err)
}

func (p *parser) expect(c byte) error {
	if p.rest == "" || p.rest[0] != c {
		return p.errorf("expected %q", c)
	}
	p.rest = p.rest[1:]
	return nil
}

// state parses a name followed by an offset.
func (p *parser) state() (state, error) {
	name, err := p.name()
	if err != nil {
		return state{}, err
	}
	off, err := p.offset()
	if err != nil {
		return state{}, err
	}
	return state{name: name, offset: off}, nil
}

// name parses a zone abbreviation: three or more letters, or three or more
// letters, digits, and signs between angle brackets.
func (p *parser) name() (string, error) {
	s := p.rest
	if strings.HasPrefix(s, "<") {
		i := strings.IndexByte(s, '>')
		if i < 0 {
			return "", p.errorf("unterminated name %q", s)
		}
		name := s[1:i]
		if len(name) < 3 || strings.IndexFunc(name, func(r rune) bool {
			return !isLetter(r) && !isDigit(r) && r != '+' && r != '-'
		}) >= 0 {
			return "", p.errorf("invalid name %q", name)
		}
		p.rest = s[i+1:]
		return name, nil
	}

	i := strings.IndexFunc(s, func(r rune) bool { return !isLetter(r) })
	if i < 0 {
		i = len(s)
	}
	if i < 3 {
		return "", p.errorf("name %q shorter than three letters", s[:i])
	}
	p.rest = s[i:]
	return s[:i], nil
}

// offset parses a POSIX offset and returns it negated to the east-positive
// convention.
func (p *parser) offset() (types.Offset, error) {
	secs, err := p.clock(maxZoneHours)
	if err != nil {
		return types.ZeroOffset, err
	}
	off, err := types.NewOffset(-secs)
	if err != nil {
		return types.ZeroOffset, p.wrap("offset", err)
	}
	return off, nil
}

// clock parses [+|-]hh[:mm[:ss]] and returns the number of seconds.
func (p *parser) clock(maxHours int) (int, error) {
	sign := 1
	switch {
	case strings.HasPrefix(p.rest, "+"):
		p.rest = p.rest[1:]
	case strings.HasPrefix(p.rest, "-"):
		p.rest = p.rest[1:]
		sign = -1
	}

	hours, err := p.num(0, maxHours)
	if err != nil {
		return 0, err
	}
	secs := hours * secondsPerHour
	for _, unit := range []int{secondsPerMinute, 1} {
		if !strings.HasPrefix(p.rest, ":") {
			break
		}
		p.rest = p.rest[1:]
		n, err := p.num(0, 59)
		if err != nil {
			return 0, err
		}
		secs += n * unit
	}
	return sign * secs, nil
}

// date parses a rule date with an optional /time suffix.
func (p *parser) date() (date, error) {
	var (
		d   date
		err error
	)
	switch {
	case strings.HasPrefix(p.rest, "J"):
		p.rest = p.rest[1:]
		d.kind = julian
		d.day, err = p.num(1, 365)
	case strings.HasPrefix(p.rest, "M"):
		p.rest = p.rest[1:]
		d.kind = monthWeekDay
		err = p.monthWeekDay(&d)
	default:
		d.kind = zeroJulian
		d.day, err = p.num(0, 365)
	}
	if err != nil {
		return d, err
	}

	d.secs = defaultTime
	if strings.HasPrefix(p.rest, "/") {
		p.rest = p.rest[1:]
		d.secs, err = p.clock(maxRuleHours)
	}
	return d, err
}

func (p *parser) monthWeekDay(d *date) error {
	month, err := p.num(1, 12)
	if err != nil {
		return err
	}
	if err = p.expect('.'); err != nil {
		return err
	}
	if d.week, err = p.num(1, 5); err != nil {
		return err
	}
	if err = p.expect('.'); err != nil {
		return err
	}
	weekday, err := p.num(0, 6)
	if err != nil {
		return err
	}
	d.month, d.weekday = time.Month(month), time.Weekday(weekday)
	return nil
}

// num parses a decimal number in [lo, hi].
func (p *parser) num(lo, hi int) (int, error) {
	i := strings.IndexFunc(p.rest, func(r rune) bool { return !isDigit(r) })
	if i < 0 {
		i = len(p.rest)
	}
	if i == 0 {
		return 0, p.errorf("expected number at %q", p.rest)
	}
	n, err := strconv.Atoi(p.rest[:i])
	if err != nil || n < lo || n > hi {
		return 0, p.errorf("number %s out of range [%d, %d]", p.rest[:i], lo, hi)
	}
	p.rest = p.rest[i:]
	return n, nil
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
