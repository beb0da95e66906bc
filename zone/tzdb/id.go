package tzdb

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smasher164/xid"
)

// ValidateID returns an error wrapping ErrInvalidID unless id is a
// well-formed zone ID: one or more segments separated by slashes, each
// beginning with a Unicode identifier start character and continuing with
// identifier characters, hyphens, or plus signs. "America/Port-au-Prince"
// and "Etc/GMT+5" are valid; "", "/UTC", "Europe//Paris" and "../etc" are
// not.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("%w %q: not valid UTF-8", ErrInvalidID, id)
	}

	for i, seg := range strings.Split(id, "/") {
		if seg == "" {
			return fmt.Errorf("%w %q: segment %d is empty", ErrInvalidID, id, i+1)
		}
		for j, ch := range seg {
			if !isIDRune(ch, j) {
				return fmt.Errorf(
					"%w %q: unexpected %q in segment %d",
					ErrInvalidID, id, ch, i+1,
				)
			}
		}
	}
	return nil
}

// isIDRune returns true if ch may appear at byte offset i of an ID segment.
func isIDRune(ch rune, i int) bool {
	if i == 0 {
		return xid.Start(ch)
	}
	return xid.Continue(ch) || ch == '-' || ch == '+'
}
