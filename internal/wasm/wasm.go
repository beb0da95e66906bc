// Package main performs a basic zone lookup in order to test WASM compilation.
package main

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/tzdb"
	"github.com/theory/zonetime/zone/types"
)

func main() {
	// Load a zone from the embedded time zone database.
	z, _ := tzdb.NewRegistry(nil).Zone("Europe/Berlin")

	// Find the interval in effect at an instant.
	iv := z.Interval(types.MustFromTime(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))

	// Resolve a local time in the autumn overlap.
	m := zone.MapLocal(z, types.NewLocal(2024, 10, 27, 2, 30, 0, 0))

	// Show the result.
	//nolint:errchkjson
	out, _ := json.Marshal(map[string]any{
		"interval": iv.String(),
		"mapping":  m.String(),
	})

	//nolint:forbidigo
	fmt.Printf("%s\n", out)
}
