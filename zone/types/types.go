// Package types provides the temporal primitives used to resolve time zones:
// absolute instants, wall-clock local instants, and bounded UTC offsets.
//
// All three are immutable values with exact arithmetic across a range of
// roughly twenty thousand years at nanosecond resolution. Arithmetic that
// would leave the representable range returns an error wrapping ErrOverflow
// rather than wrapping around.
package types

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// ErrOverflow wraps errors returned when arithmetic on instants or offsets
// leaves the representable range.
var ErrOverflow = errors.New("overflow")

const (
	// NanosPerSecond contains the number of nanoseconds in a second.
	NanosPerSecond int64 = 1_000_000_000

	// NanosPerDay contains the number of nanoseconds in a day (excluding leap
	// seconds).
	NanosPerDay = secondsPerDay * NanosPerSecond

	// MinDays is the day number, relative to the Unix epoch, of the earliest
	// representable instant: -9998-01-01.
	MinDays int32 = -4371222

	// MaxDays is the day number, relative to the Unix epoch, of the latest
	// representable instant: 9999-12-31.
	MaxDays int32 = 2932896
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// tag distinguishes finite values from the sentinels before the start and
// after the end of time. The zero value is finite, so the zero Instant is the
// Unix epoch.
type tag int8

const (
	beforeTime tag = -1
	finite     tag = 0
	afterTime  tag = 1
)

// floorDiv returns x/y rounded towards negative infinity.
func floorDiv[T constraints.Signed](x, y T) T {
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q
}

// floorMod returns the remainder of floorDiv(x, y), which has the sign of y.
func floorMod[T constraints.Signed](x, y T) T {
	return x - floorDiv(x, y)*y
}
