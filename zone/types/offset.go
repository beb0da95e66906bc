package types

import (
	"cmp"
	"fmt"
	"time"
)

// maxOffsetSeconds is the magnitude of the largest supported offset: 18
// hours.
const maxOffsetSeconds = 18 * secondsPerHour

// Offset is a UTC offset: the number of seconds to add to UTC to obtain the
// local wall-clock reading. Offsets are bounded to [MinOffset, MaxOffset].
// The zero value is UTC.
type Offset struct {
	seconds int32
}

//nolint:gochecknoglobals
var (
	// ZeroOffset is the offset of UTC.
	ZeroOffset = Offset{}

	// MinOffset is the smallest supported offset: -18:00.
	MinOffset = Offset{seconds: -maxOffsetSeconds}

	// MaxOffset is the largest supported offset: +18:00.
	MaxOffset = Offset{seconds: maxOffsetSeconds}
)

// NewOffset returns the offset of seconds seconds east of UTC. Returns an
// error wrapping ErrOverflow if seconds falls outside ±18 hours.
func NewOffset(seconds int) (Offset, error) {
	if seconds < -maxOffsetSeconds || seconds > maxOffsetSeconds {
		return Offset{}, fmt.Errorf(
			"%w: offset of %d seconds is outside ±%d",
			ErrOverflow, seconds, maxOffsetSeconds,
		)
	}
	return Offset{seconds: int32(seconds)}, nil
}

// MustOffset is like NewOffset but panics if seconds is out of range.
func MustOffset(seconds int) Offset {
	o, err := NewOffset(seconds)
	if err != nil {
		panic(err)
	}
	return o
}

// OffsetOfHours returns the offset of hours hours. Panics if hours falls
// outside ±18.
func OffsetOfHours(hours int) Offset {
	return MustOffset(hours * secondsPerHour)
}

// OffsetOf returns the offset with the given hours and minutes. Both should
// carry the same sign; -5, -30 is five and a half hours west of UTC.
// Returns an error wrapping ErrOverflow if the result is out of range.
func OffsetOf(hours, minutes int) (Offset, error) {
	return NewOffset(hours*secondsPerHour + minutes*secondsPerMinute)
}

// Seconds returns the number of seconds in o.
func (o Offset) Seconds() int { return int(o.seconds) }

// Nanoseconds returns the number of nanoseconds in o.
func (o Offset) Nanoseconds() int64 { return int64(o.seconds) * NanosPerSecond }

// Duration returns o as a time.Duration.
func (o Offset) Duration() time.Duration { return time.Duration(o.Nanoseconds()) }

// Compare compares o with p. If o is less than p, it returns -1; if o is
// greater than p, it returns +1; if they're the same, it returns 0.
func (o Offset) Compare(p Offset) int { return cmp.Compare(o.seconds, p.seconds) }

// Add returns o+p. Returns an error wrapping ErrOverflow if the sum is out
// of range.
func (o Offset) Add(p Offset) (Offset, error) {
	return NewOffset(int(o.seconds) + int(p.seconds))
}

// Sub returns o-p. Returns an error wrapping ErrOverflow if the difference
// is out of range.
func (o Offset) Sub(p Offset) (Offset, error) {
	return NewOffset(int(o.seconds) - int(p.seconds))
}

// Negate returns -o, which is always in range.
func (o Offset) Negate() Offset { return Offset{seconds: -o.seconds} }

// String returns o formatted as ±hh:mm, or ±hh:mm:ss when o has a seconds
// component.
func (o Offset) String() string {
	sign := '+'
	secs := o.seconds
	if secs < 0 {
		sign = '-'
		secs = -secs
	}
	h, m, s := secs/secondsPerHour, secs/secondsPerMinute%60, secs%60
	if s != 0 {
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%c%02d:%02d", sign, h, m)
}
