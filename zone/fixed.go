package zone

import "github.com/theory/zonetime/zone/types"

// Fixed is a zone with a single offset for all time.
type Fixed struct {
	id       string
	interval Interval
}

// UTC is the fixed zone with offset zero.
//
//nolint:gochecknoglobals
var UTC = NewFixed("UTC", "UTC", types.ZeroOffset)

// NewFixed creates a fixed zone identified by id whose single interval is
// called name.
func NewFixed(id, name string, offset types.Offset) *Fixed {
	return &Fixed{
		id: id,
		interval: Interval{
			name:  name,
			start: types.BeforeMinValue,
			end:   types.AfterMaxValue,
			wall:  offset,
		},
	}
}

// ForOffset returns a fixed zone for offset. Its ID and name are "UTC" for
// the zero offset and otherwise "UTC" followed by the offset, as in
// "UTC+03:00".
func ForOffset(offset types.Offset) *Fixed {
	if offset == types.ZeroOffset {
		return UTC
	}
	id := "UTC" + offset.String()
	return NewFixed(id, id, offset)
}

// ID returns the identifier of f.
func (f *Fixed) ID() string { return f.id }

// Offset returns the offset of f.
func (f *Fixed) Offset() types.Offset { return f.interval.wall }

// Interval returns the single interval of f, whatever the value of t.
func (f *Fixed) Interval(types.Instant) Interval { return f.interval }

// MinOffset returns the offset of f.
func (f *Fixed) MinOffset() types.Offset { return f.interval.wall }

// MaxOffset returns the offset of f.
func (f *Fixed) MaxOffset() types.Offset { return f.interval.wall }

// String returns the ID of f.
func (f *Fixed) String() string { return f.id }
