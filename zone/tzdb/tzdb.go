// Package tzdb loads zones by ID and keeps them for the life of a Registry.
//
// Zones come from a Source. LocationSource converts IANA time zone data, as
// embedded by 4d63.com/tz, into zone.Precalculated values; MapSource serves a
// fixed set of zones built by other means.
package tzdb

import (
	"errors"
	"fmt"

	"github.com/theory/zonetime/zone"
)

var (
	// ErrUnknownZone wraps errors reporting that a Source has no zone with
	// the requested ID.
	ErrUnknownZone = errors.New("unknown zone")

	// ErrInvalidID wraps errors reporting a malformed zone ID.
	ErrInvalidID = errors.New("invalid zone id")
)

// Source defines the interface for loading zones.
type Source interface {
	// Load returns the zone identified by id. Returns an error wrapping
	// ErrUnknownZone if the Source has no such zone.
	Load(id string) (zone.Zone, error)
}

// MapSource is a Source that serves zones from a map keyed by ID.
type MapSource map[string]zone.Zone

// Load returns the zone for id.
func (m MapSource) Load(id string) (zone.Zone, error) {
	if z, ok := m[id]; ok {
		return z, nil
	}
	return nil, fmt.Errorf("%w %s", ErrUnknownZone, id)
}
