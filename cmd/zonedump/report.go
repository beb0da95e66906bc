package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/types"
	"gopkg.in/yaml.v3"
)

// report describes the intervals of a zone and, optionally, the mapping of a
// local time in it.
type report struct {
	Zone      string          `json:"zone"              yaml:"zone"`
	Intervals []intervalEntry `json:"intervals"         yaml:"intervals"`
	Mapping   *mappingEntry   `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

type intervalEntry struct {
	Name     string `json:"name"     yaml:"name"`
	Start    string `json:"start"    yaml:"start"`
	End      string `json:"end"      yaml:"end"`
	Wall     string `json:"wall"     yaml:"wall"`
	Standard string `json:"standard" yaml:"standard"`
	Savings  string `json:"savings"  yaml:"savings"`
}

type mappingEntry struct {
	Local   string        `json:"local"            yaml:"local"`
	Count   int           `json:"count"            yaml:"count"`
	Early   intervalEntry `json:"early"            yaml:"early"`
	Late    intervalEntry `json:"late"             yaml:"late"`
	Strict  string        `json:"strict,omitempty" yaml:"strict,omitempty"`
	Error   string        `json:"error,omitempty"  yaml:"error,omitempty"`
	Lenient string        `json:"lenient"          yaml:"lenient"`
}

func newIntervalEntry(iv zone.Interval) intervalEntry {
	return intervalEntry{
		Name:     iv.Name(),
		Start:    iv.Start().String(),
		End:      iv.End().String(),
		Wall:     iv.WallOffset().String(),
		Standard: iv.StandardOffset().String(),
		Savings:  iv.Savings().String(),
	}
}

// buildReport collects the intervals of z between start and end and, if
// local is not nil, maps it in z.
func buildReport(
	z zone.Zone,
	start, end types.Instant,
	c zone.Coalescing,
	local *types.LocalInstant,
) (*report, error) {
	ivs, err := zone.Collect(z, start, end, c)
	if err != nil {
		return nil, err
	}

	rep := &report{Zone: z.ID(), Intervals: make([]intervalEntry, len(ivs))}
	for i, iv := range ivs {
		rep.Intervals[i] = newIntervalEntry(iv)
	}
	if local == nil {
		return rep, nil
	}

	m := zone.MapLocal(z, *local)
	entry := &mappingEntry{
		Local: m.Local().String(),
		Count: m.Count(),
		Early: newIntervalEntry(m.EarlyInterval()),
		Late:  newIntervalEntry(m.LateInterval()),
	}
	if t, err := m.Resolve(zone.Strict); err == nil {
		entry.Strict = t.String()
	} else {
		entry.Error = err.Error()
	}
	t, err := m.Resolve(zone.Lenient)
	if err != nil {
		return nil, err
	}
	entry.Lenient = t.String()
	rep.Mapping = entry
	return rep, nil
}

var errFormat = errors.New("unknown format")

// writeReports writes reps to w in format.
func writeReports(w io.Writer, format string, reps []*report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reps)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reps); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeText(w, reps)
	default:
		return fmt.Errorf("%w %q", errFormat, format)
	}
}

func writeText(w io.Writer, reps []*report) error {
	for i, rep := range reps {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, rep.Zone); err != nil {
			return err
		}
		for _, iv := range rep.Intervals {
			if _, err := fmt.Fprintf(w, "  %s\n", iv); err != nil {
				return err
			}
		}
		if m := rep.Mapping; m != nil {
			if _, err := fmt.Fprintf(w, "  %s\n", m); err != nil {
				return err
			}
		}
	}
	return nil
}

// String formats e the way zone.Interval does.
func (e intervalEntry) String() string {
	return fmt.Sprintf("%s: [%s, %s) %s (%s)", e.Name, e.Start, e.End, e.Wall, e.Savings)
}

func (m *mappingEntry) String() string {
	var kind string
	switch m.Count {
	case 0:
		kind = "skipped between " + m.Early.Name + " and " + m.Late.Name
	case 1:
		kind = m.Early.Name
	default:
		kind = "ambiguous between " + m.Early.Name + " and " + m.Late.Name
	}
	if m.Strict != "" {
		return fmt.Sprintf("local %s: %s at %s", m.Local, kind, m.Strict)
	}
	return fmt.Sprintf("local %s: %s, lenient %s", m.Local, kind, m.Lenient)
}
