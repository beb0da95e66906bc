package rule

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/types"
)

func instant(y int, m time.Month, d, h, mi int) types.Instant {
	return types.MustFromTime(time.Date(y, m, d, h, mi, 0, 0, time.UTC))
}

func hm(h, m int) types.Offset {
	o, err := types.OffsetOf(h, m)
	if err != nil {
		panic(err)
	}
	return o
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name     string
		tz       string
		std      string
		stdOff   types.Offset
		dst      string
		dstOff   types.Offset
		daylight bool
		kind     kind
	}{
		{
			name:   "utc",
			tz:     "UTC0",
			std:    "UTC",
			stdOff: types.ZeroOffset,
			kind:   standardOnly,
		},
		{
			name:   "quoted_east",
			tz:     "<+03>-3",
			std:    "+03",
			stdOff: types.OffsetOfHours(3),
			kind:   standardOnly,
		},
		{
			name:   "minutes",
			tz:     "IST-5:30",
			std:    "IST",
			stdOff: hm(5, 30),
			kind:   standardOnly,
		},
		{
			name:   "seconds",
			tz:     "LMT+0:25:21",
			std:    "LMT",
			stdOff: types.MustOffset(-(25*60 + 21)),
			kind:   standardOnly,
		},
		{
			name:     "us_default_rules",
			tz:       "EST5EDT",
			std:      "EST",
			stdOff:   types.OffsetOfHours(-5),
			dst:      "EDT",
			dstOff:   types.OffsetOfHours(-4),
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "us_explicit",
			tz:       "EST5EDT4,M3.2.0/02:00:00,M11.1.0/02:00:00",
			std:      "EST",
			stdOff:   types.OffsetOfHours(-5),
			dst:      "EDT",
			dstOff:   types.OffsetOfHours(-4),
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "australia",
			tz:       "AEST-10AEDT,M10.1.0,M4.1.0/3",
			std:      "AEST",
			stdOff:   types.OffsetOfHours(10),
			dst:      "AEDT",
			dstOff:   types.OffsetOfHours(11),
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "ireland_negative_savings",
			tz:       "IST-1GMT0,M10.5.0,M3.5.0/1",
			std:      "IST",
			stdOff:   types.OffsetOfHours(1),
			dst:      "GMT",
			dstOff:   types.ZeroOffset,
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "greenland_negative_time",
			tz:       "<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
			std:      "-02",
			stdOff:   types.OffsetOfHours(-2),
			dst:      "-01",
			dstOff:   types.OffsetOfHours(-1),
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "jerusalem_extended_time",
			tz:       "IST-2IDT,M3.4.4/26,M10.5.0",
			std:      "IST",
			stdOff:   types.OffsetOfHours(2),
			dst:      "IDT",
			dstOff:   types.OffsetOfHours(3),
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "semicolon",
			tz:       "EST5EDT;M3.2.0,M11.1.0",
			std:      "EST",
			stdOff:   types.OffsetOfHours(-5),
			dst:      "EDT",
			dstOff:   types.OffsetOfHours(-4),
			daylight: true,
			kind:     alternating,
		},
		{
			name:     "permanent_dst",
			tz:       "EST5EDT,0/0,J365/25",
			std:      "EST",
			stdOff:   types.OffsetOfHours(-5),
			dst:      "EDT",
			dstOff:   types.OffsetOfHours(-4),
			daylight: true,
			kind:     permanentDST,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)
			r := require.New(t)

			rule, err := Parse(tc.tz)
			r.NoError(err)
			a.Equal(tc.tz, rule.String())
			a.Equal(tc.std, rule.StandardName())
			a.Equal(tc.stdOff, rule.StandardOffset())
			a.Equal(tc.dst, rule.DaylightName())
			a.Equal(tc.daylight, rule.HasDaylight())
			a.Equal(tc.kind, rule.kind)
			if tc.daylight {
				a.Equal(tc.dstOff, rule.DaylightOffset())
				a.Equal(min(tc.stdOff.Seconds(), tc.dstOff.Seconds()), rule.MinOffset().Seconds())
				a.Equal(max(tc.stdOff.Seconds(), tc.dstOff.Seconds()), rule.MaxOffset().Seconds())
			} else {
				a.Equal(tc.stdOff, rule.DaylightOffset())
				a.Equal(tc.stdOff, rule.MinOffset())
				a.Equal(tc.stdOff, rule.MaxOffset())
			}
			a.Equal(rule, MustParse(tc.tz))
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		tz   string
		err  string
	}{
		{
			name: "empty",
			tz:   "",
			err:  `syntax: name "" shorter than three letters in TZ string ""`,
		},
		{
			name: "short_name",
			tz:   "ES5",
			err:  `syntax: name "ES" shorter than three letters in TZ string "ES5"`,
		},
		{
			name: "no_offset",
			tz:   "EST",
			err:  `syntax: expected number at "" in TZ string "EST"`,
		},
		{
			name: "unterminated",
			tz:   "<+035",
			err:  `syntax: unterminated name "<+035" in TZ string "<+035"`,
		},
		{
			name: "bad_quoted",
			tz:   "<+0 3>-3",
			err:  `syntax: invalid name "+0 3" in TZ string "<+0 3>-3"`,
		},
		{
			name: "short_quoted",
			tz:   "<+3>-3",
			err:  `syntax: invalid name "+3" in TZ string "<+3>-3"`,
		},
		{
			name: "hours_too_big",
			tz:   "EST25",
			err:  `syntax: number 25 out of range [0, 24] in TZ string "EST25"`,
		},
		{
			name: "offset_overflow",
			tz:   "EST19",
			err:  `syntax: offset in TZ string "EST19": overflow: offset of -68400 seconds is outside ±64800`,
		},
		{
			name: "minutes_too_big",
			tz:   "EST5:60",
			err:  `syntax: number 60 out of range [0, 59] in TZ string "EST5:60"`,
		},
		{
			name: "rules_without_dst",
			tz:   "EST5,M3.2.0,M11.1.0",
			err:  `syntax: name "" shorter than three letters in TZ string "EST5,M3.2.0,M11.1.0"`,
		},
		{
			name: "one_rule",
			tz:   "EST5EDT,M3.2.0",
			err:  `syntax: expected ',' in TZ string "EST5EDT,M3.2.0"`,
		},
		{
			name: "bad_month",
			tz:   "EST5EDT,M13.2.0,M11.1.0",
			err:  `syntax: number 13 out of range [1, 12] in TZ string "EST5EDT,M13.2.0,M11.1.0"`,
		},
		{
			name: "bad_week",
			tz:   "EST5EDT,M3.6.0,M11.1.0",
			err:  `syntax: number 6 out of range [1, 5] in TZ string "EST5EDT,M3.6.0,M11.1.0"`,
		},
		{
			name: "bad_weekday",
			tz:   "EST5EDT,M3.2.7,M11.1.0",
			err:  `syntax: number 7 out of range [0, 6] in TZ string "EST5EDT,M3.2.7,M11.1.0"`,
		},
		{
			name: "missing_dot",
			tz:   "EST5EDT,M3,M11.1.0",
			err:  `syntax: expected '.' in TZ string "EST5EDT,M3,M11.1.0"`,
		},
		{
			name: "julian_zero",
			tz:   "EST5EDT,J0,J100",
			err:  `syntax: number 0 out of range [1, 365] in TZ string "EST5EDT,J0,J100"`,
		},
		{
			name: "rule_time_too_big",
			tz:   "EST5EDT,M3.2.0/168,M11.1.0",
			err:  `syntax: number 168 out of range [0, 167] in TZ string "EST5EDT,M3.2.0/168,M11.1.0"`,
		},
		{
			name: "trailing",
			tz:   "EST5EDT,M3.2.0,M11.1.0x",
			err:  `syntax: unexpected "x" after rules in TZ string "EST5EDT,M3.2.0,M11.1.0x"`,
		},
		{
			name: "junk_after_dst",
			tz:   "EST5EDT!",
			err:  `syntax: expected number at "!" in TZ string "EST5EDT!"`,
		},
		{
			name: "savings_overflow",
			tz:   "<-18>18<+18>-18",
			err:  `syntax: daylight savings in TZ string "<-18>18<+18>-18": overflow: offset of 129600 seconds is outside ±64800`,
		},
		{
			name: "default_dst_overflow",
			tz:   "<+18>-18EDT",
			err:  `syntax: daylight offset in TZ string "<+18>-18EDT": overflow: offset of 68400 seconds is outside ±64800`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := require.New(t)

			rule, err := Parse(tc.tz)
			r.Nil(rule)
			r.ErrorIs(err, ErrSyntax)
			r.EqualError(err, tc.err)
			r.Panics(func() { MustParse(tc.tz) })
		})
	}
}

func TestInterval(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name  string
		tz    string
		at    types.Instant
		iv    string
		start types.Instant
		end   types.Instant
	}{
		{
			name:  "us_summer",
			tz:    "EST5EDT,M3.2.0,M11.1.0",
			at:    instant(2024, 7, 4, 12, 0),
			iv:    "EDT",
			start: instant(2024, 3, 10, 7, 0),
			end:   instant(2024, 11, 3, 6, 0),
		},
		{
			name:  "us_winter",
			tz:    "EST5EDT,M3.2.0,M11.1.0",
			at:    instant(2025, 1, 15, 0, 0),
			iv:    "EST",
			start: instant(2024, 11, 3, 6, 0),
			end:   instant(2025, 3, 9, 7, 0),
		},
		{
			name:  "us_at_start",
			tz:    "EST5EDT",
			at:    instant(2024, 3, 10, 7, 0),
			iv:    "EDT",
			start: instant(2024, 3, 10, 7, 0),
			end:   instant(2024, 11, 3, 6, 0),
		},
		{
			name:  "us_just_before_end",
			tz:    "EST5EDT",
			at:    instant(2024, 11, 3, 5, 59),
			iv:    "EDT",
			start: instant(2024, 3, 10, 7, 0),
			end:   instant(2024, 11, 3, 6, 0),
		},
		{
			name:  "australia_summer_spans_new_year",
			tz:    "AEST-10AEDT,M10.1.0,M4.1.0/3",
			at:    instant(2025, 1, 1, 0, 0),
			iv:    "AEDT",
			start: instant(2024, 10, 5, 16, 0),
			end:   instant(2025, 4, 5, 16, 0),
		},
		{
			name:  "australia_winter",
			tz:    "AEST-10AEDT,M10.1.0,M4.1.0/3",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "AEST",
			start: instant(2024, 4, 6, 16, 0),
			end:   instant(2024, 10, 5, 16, 0),
		},
		{
			name:  "greenland",
			tz:    "<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "-01",
			start: instant(2024, 3, 31, 1, 0),
			end:   instant(2024, 10, 27, 1, 0),
		},
		{
			name:  "ireland_winter_is_dst",
			tz:    "IST-1GMT0,M10.5.0,M3.5.0/1",
			at:    instant(2024, 12, 25, 0, 0),
			iv:    "GMT",
			start: instant(2024, 10, 27, 1, 0),
			end:   instant(2025, 3, 30, 1, 0),
		},
		{
			name:  "jerusalem_day_26",
			tz:    "IST-2IDT,M3.4.4/26,M10.5.0",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "IDT",
			start: instant(2024, 3, 29, 0, 0),
			end:   instant(2024, 10, 26, 23, 0),
		},
		{
			name:  "julian_leap_year",
			tz:    "XST0XDT,J60/0,J305/0",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "XDT",
			start: instant(2024, 3, 1, 0, 0),
			end:   instant(2024, 10, 31, 23, 0),
		},
		{
			name:  "zero_julian_leap_year",
			tz:    "XST0XDT,59/0,304/0",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "XDT",
			start: instant(2024, 2, 29, 0, 0),
			end:   instant(2024, 10, 30, 23, 0),
		},
		{
			name:  "standard_only",
			tz:    "<+03>-3",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "+03",
			start: types.BeforeMinValue,
			end:   types.AfterMaxValue,
		},
		{
			name:  "permanent_dst",
			tz:    "EST5EDT,0/0,J365/25",
			at:    instant(2024, 6, 1, 0, 0),
			iv:    "EDT",
			start: types.BeforeMinValue,
			end:   types.AfterMaxValue,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := assert.New(t)

			rule := MustParse(tc.tz)
			iv := rule.Interval(tc.at)
			a.Equal(tc.iv, iv.Name())
			a.Equal(tc.start, iv.Start())
			a.Equal(tc.end, iv.End())
			a.True(iv.Contains(tc.at))

			if iv.Name() == rule.StandardName() {
				a.Equal(rule.StandardOffset(), iv.WallOffset())
				a.Equal(types.ZeroOffset, iv.Savings())
			} else {
				a.Equal(rule.DaylightOffset(), iv.WallOffset())
				a.Equal(rule.StandardOffset(), iv.StandardOffset())
			}
		})
	}
}

func TestIntervalExtremes(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	rule := MustParse("EST5EDT")

	first := rule.Interval(types.BeforeMinValue)
	a.False(first.HasStart())
	a.Equal("EST", first.Name())
	a.Equal(first, rule.Interval(types.MinValue))

	last := rule.Interval(types.AfterMaxValue)
	a.False(last.HasEnd())
	a.Equal("EST", last.Name())
	a.Equal(last, rule.Interval(types.MaxValue))
	a.Equal(instant(9999, 11, 7, 6, 0), last.Start())
}

func TestZone(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	r := require.New(t)

	z, err := MustParse("CET-1CEST,M3.5.0,M10.5.0/3").Zone("Test/CET")
	r.NoError(err)
	a.Equal("Test/CET", z.ID())
	a.Equal(types.OffsetOfHours(1), z.MinOffset())
	a.Equal(types.OffsetOfHours(2), z.MaxOffset())

	seq, err := zone.Intervals(z, instant(2023, 1, 1, 0, 0), instant(2025, 1, 1, 0, 0))
	r.NoError(err)
	got := slices.Collect(seq)
	r.Len(got, 5)
	want := []struct {
		name  string
		start types.Instant
	}{
		{"CET", instant(2022, 10, 30, 1, 0)},
		{"CEST", instant(2023, 3, 26, 1, 0)},
		{"CET", instant(2023, 10, 29, 1, 0)},
		{"CEST", instant(2024, 3, 31, 1, 0)},
		{"CET", instant(2024, 10, 27, 1, 0)},
	}
	for i, w := range want {
		a.Equal(w.name, got[i].Name(), "interval %d", i)
		a.Equal(w.start, got[i].Start(), "interval %d", i)
	}

	// Partition holds across many years.
	seq, err = zone.Intervals(z, instant(1900, 1, 1, 0, 0), instant(2100, 1, 1, 0, 0))
	r.NoError(err)
	prev := zone.Interval{}
	for iv := range seq {
		if prev != (zone.Interval{}) {
			a.Equal(prev.End(), iv.Start())
			a.NotEqual(prev.Name(), iv.Name())
		}
		prev = iv
	}

	// Local time resolution through the rule.
	m := zone.MapLocal(z, types.NewLocal(2024, 3, 31, 2, 30, 0, 0))
	a.Equal(0, m.Count())
	m = zone.MapLocal(z, types.NewLocal(2024, 10, 27, 2, 30, 0, 0))
	a.Equal(2, m.Count())
}

func TestCollapse(t *testing.T) {
	t.Parallel()
	a := assert.New(t)
	t1, t2, t3 := instant(2000, 1, 1, 0, 0), instant(2000, 6, 1, 0, 0), instant(2001, 1, 1, 0, 0)

	a.Equal(
		[]transition{{t1, true}, {t2, false}, {t3, true}},
		collapse([]transition{{t3, true}, {t1, true}, {t2, false}}),
	)

	// Coinciding start and end cancel out.
	a.Equal(
		[]transition{{t1, true}, {t3, false}},
		collapse([]transition{{t1, true}, {t2, false}, {t2, true}, {t3, false}}),
	)

	// Repeated states merge.
	a.Equal(
		[]transition{{t1, false}},
		collapse([]transition{{t1, false}, {t2, false}, {t3, false}}),
	)
}
