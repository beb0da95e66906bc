//go:build js && wasm

// package main provides the Wasm app.
package main

import (
	"bytes"
	"fmt"
	"html"
	"syscall/js"
	"time"

	"github.com/goccy/go-json"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/tzdb"
	"github.com/theory/zonetime/zone/types"
)

const (
	optMatchWall int = 1 << iota
	optMatchComponents
	optLenient
	optIndent
)

const localLayout = "2006-01-02T15:04:05.999999999"

// Zones load once and stay loaded for the life of the page.
//
//nolint:gochecknoglobals
var registry = tzdb.NewRegistry(nil)

type interval struct {
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Wall     string `json:"wall"`
	Standard string `json:"standard"`
	Savings  string `json:"savings"`
}

type mapping struct {
	Local   string   `json:"local"`
	Count   int      `json:"count"`
	Early   interval `json:"early"`
	Late    interval `json:"late"`
	Instant string   `json:"instant,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type result struct {
	Zone      string     `json:"zone"`
	Intervals []interval `json:"intervals"`
	Mapping   *mapping   `json:"mapping,omitempty"`
}

func lookup(_ js.Value, args []js.Value) any {
	id := args[0].String()
	from := args[1].String()
	to := args[2].String()
	local := args[3].String()
	opts := args[4].Int()

	return execute(id, from, to, local, opts)
}

func main() {
	stream := make(chan struct{})

	js.Global().Set("lookup", js.FuncOf(lookup))
	js.Global().Set("optMatchWall", js.ValueOf(optMatchWall))
	js.Global().Set("optMatchComponents", js.ValueOf(optMatchComponents))
	js.Global().Set("optLenient", js.ValueOf(optLenient))
	js.Global().Set("optIndent", js.ValueOf(optIndent))

	<-stream
}

func execute(id, from, to, local string, opts int) string {
	// Load the zone.
	z, err := registry.Zone(id)
	if err != nil {
		return fmt.Sprintf("Error loading zone: %v", err)
	}

	// Parse the range.
	start, err := parseInstant(from)
	if err != nil {
		return fmt.Sprintf("Error parsing start: %v", err)
	}
	end, err := parseInstant(to)
	if err != nil {
		return fmt.Sprintf("Error parsing end: %v", err)
	}

	// Collect the intervals.
	coalesce := zone.MatchNames
	switch {
	case opts&optMatchWall == optMatchWall:
		coalesce = zone.OnlyMatchWallOffset
	case opts&optMatchComponents == optMatchComponents:
		coalesce = zone.MatchOffsetComponents
	}
	ivs, err := zone.Collect(z, start, end, coalesce)
	if err != nil {
		return fmt.Sprintf("Error %v", err)
	}

	res := result{Zone: z.ID(), Intervals: make([]interval, len(ivs))}
	for i, iv := range ivs {
		res.Intervals[i] = newInterval(iv)
	}

	// Map the local time.
	if local != "" {
		t, err := time.Parse(localLayout, local)
		if err != nil {
			return fmt.Sprintf("Error parsing local time: %v", err)
		}
		l, err := types.LocalOf(t)
		if err != nil {
			return fmt.Sprintf("Error parsing local time: %v", err)
		}
		res.Mapping = newMapping(zone.MapLocal(z, l), opts&optLenient == optLenient)
	}

	// Serialize the result
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts&optIndent == optIndent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return fmt.Sprintf("Error serializing results: %v", err)
	}

	return html.EscapeString(buf.String())
}

func parseInstant(s string) (types.Instant, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return types.Instant{}, err
	}
	return types.FromTime(t)
}

func newInterval(iv zone.Interval) interval {
	return interval{
		Name:     iv.Name(),
		Start:    iv.Start().String(),
		End:      iv.End().String(),
		Wall:     iv.WallOffset().String(),
		Standard: iv.StandardOffset().String(),
		Savings:  iv.Savings().String(),
	}
}

func newMapping(m zone.Mapping, lenient bool) *mapping {
	res := &mapping{
		Local: m.Local().String(),
		Count: m.Count(),
		Early: newInterval(m.EarlyInterval()),
		Late:  newInterval(m.LateInterval()),
	}

	resolve := zone.Strict
	if lenient {
		resolve = zone.Lenient
	}
	if t, err := m.Resolve(resolve); err != nil {
		res.Error = err.Error()
	} else {
		res.Instant = t.String()
	}
	return res
}
