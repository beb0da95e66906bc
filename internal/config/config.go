// Package config loads zonedump settings from the environment.
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/tzdb"
)

// ErrConfig wraps errors reporting invalid settings.
var ErrConfig = errors.New("config")

// Formats lists the supported output formats.
//
//nolint:gochecknoglobals
var Formats = []string{"text", "json", "yaml"}

// Config holds zonedump settings. Command-line flags override each of them.
type Config struct {
	// Format selects the output format: text, json, or yaml.
	Format string `env:"ZONEDUMP_FORMAT,default=text"`

	// Coalesce selects how to merge adjacent intervals: names, wall, or
	// components.
	Coalesce string `env:"ZONEDUMP_COALESCE,default=names"`

	// LogLevel is a prefix of trace, debug, info, warning, error, or fatal.
	LogLevel string `env:"ZONEDUMP_LOG_LEVEL,default=warning"`

	// Year selects the year to dump when no range is given. Zero means the
	// current year.
	Year int `env:"ZONEDUMP_YEAR"`

	// Horizon is the last year for which to precompute transitions.
	Horizon int `env:"ZONEDUMP_HORIZON,default=2037"`

	// CacheSize is the number of cache buckets per zone. Zero disables
	// caching.
	CacheSize int `env:"ZONEDUMP_CACHE_SIZE,default=256"`

	// Parallel limits the number of zones processed at once.
	Parallel int `env:"ZONEDUMP_PARALLEL,default=4"`

	// Timeout limits the time spent processing all zones.
	Timeout time.Duration `env:"ZONEDUMP_TIMEOUT,default=30s"`

	// Metrics enables the report of cache metrics at exit.
	Metrics bool `env:"ZONEDUMP_METRICS,default=false"`

	// Zones lists zones to dump when none are named on the command line,
	// separated by semicolons.
	Zones []string `env:"ZONEDUMP_ZONES,separator=;"`
}

// Load parses settings from environ, a list of "key=value" strings in the
// form returned by os.Environ, and validates them.
func Load(environ []string) (*Config, error) {
	es, err := env.EnvironToEnvSet(environ)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	cfg := &Config{}
	if err := env.Unmarshal(es, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the settings used when the environment sets none.
func Default() *Config {
	return &Config{
		Format:    "text",
		Coalesce:  zone.MatchNames.String(),
		LogLevel:  "warning",
		Horizon:   tzdb.DefaultHorizon,
		CacheSize: zone.DefaultCacheSize,
		Parallel:  4,
		Timeout:   30 * time.Second,
	}
}

// Validate returns an error wrapping ErrConfig if any setting is invalid.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrConfig, c.Format)
	}
	if _, err := zone.ParseCoalescing(c.Coalesce); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if c.Year != 0 && (c.Year < 1 || c.Year > 9998) {
		return fmt.Errorf("%w: year %d out of range", ErrConfig, c.Year)
	}
	if c.Horizon < 1970 || c.Horizon > 9998 {
		return fmt.Errorf("%w: horizon %d out of range", ErrConfig, c.Horizon)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: negative cache size %d", ErrConfig, c.CacheSize)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("%w: parallel must be at least 1", ErrConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrConfig)
	}
	return nil
}
