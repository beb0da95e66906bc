package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Levels beyond those slog defines.
const (
	levelTrace = slog.Level(-8)
	levelFatal = slog.Level(12)
)

// levels maps level names to levels, in the order they are matched against
// a prefix.
//
//nolint:gochecknoglobals
var levels = []struct {
	name  string
	level slog.Level
}{
	{"trace", levelTrace},
	{"debug", slog.LevelDebug},
	{"info", slog.LevelInfo},
	{"warning", slog.LevelWarn},
	{"error", slog.LevelError},
	{"fatal", levelFatal},
}

// parseLevel returns the level whose name starts with value, ignoring case.
func parseLevel(value string) (slog.Level, error) {
	lv := strings.ToLower(value)
	if lv != "" {
		for _, l := range levels {
			if strings.HasPrefix(l.name, lv) {
				return l.level, nil
			}
		}
	}
	return 0, fmt.Errorf(
		"log level %q must be a prefix of trace, debug, info, warning, error, or fatal",
		value,
	)
}

// newLogger creates a text logger writing to w that names the trace and
// fatal levels.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				if lv, ok := a.Value.Any().(slog.Level); ok {
					switch lv {
					case levelTrace:
						a.Value = slog.StringValue("TRACE")
					case levelFatal:
						a.Value = slog.StringValue("FATAL")
					}
				}
			}
			return a
		},
	}))
}

func trace(log *slog.Logger, msg string, args ...any) {
	log.Log(context.Background(), levelTrace, msg, args...)
}

func fatal(log *slog.Logger, msg string, args ...any) {
	log.Log(context.Background(), levelFatal, msg, args...)
}
