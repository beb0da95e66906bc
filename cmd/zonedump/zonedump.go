package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/latlong"
	"github.com/spf13/pflag"
	"github.com/theory/zonetime/internal/config"
	"github.com/theory/zonetime/internal/metrics"
	"github.com/theory/zonetime/zone"
	"github.com/theory/zonetime/zone/rule"
	"github.com/theory/zonetime/zone/tzdb"
	"github.com/theory/zonetime/zone/types"
	"golang.org/x/sync/errgroup"
)

// localLayout is the layout of the --local flag.
const localLayout = "2006-01-02T15:04:05.999999999"

var (
	errUsage  = errors.New("usage")
	errNoZone = errors.New("no zone")
)

// options holds the parsed command line.
type options struct {
	cfg      *config.Config
	level    slog.Level
	zones    []string
	from, to types.Instant
	coalesce zone.Coalescing
	local    *types.LocalInstant
}

// run runs zonedump and returns its exit status.
func run(
	ctx context.Context,
	args, environ []string,
	now func() time.Time,
	stdout, stderr io.Writer,
) int {
	log := newLogger(stderr, slog.LevelWarn)

	cfg, err := config.Load(environ)
	if err != nil {
		fatal(log, "cannot load configuration", "error", err)
		return 1
	}

	opts, err := parseArgs(args, cfg, now, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fatal(log, "invalid arguments", "error", err)
		return 1
	}
	log = newLogger(stderr, opts.level)
	trace(log, "options parsed", "zones", opts.zones, "from", opts.from, "to", opts.to)

	var mets *metrics.Metrics
	regOpts := []tzdb.Option{tzdb.WithCacheSize(opts.cfg.CacheSize)}
	if opts.cfg.Metrics {
		mets = metrics.New()
		regOpts = append(regOpts, tzdb.WithObserver(mets))
	}
	reg := tzdb.NewRegistry(tzdb.LocationSource{Horizon: opts.cfg.Horizon}, regOpts...)

	reps, err := dump(ctx, log, reg, opts)
	if err != nil {
		fatal(log, "dump failed", "error", err)
		return 1
	}

	if err := writeReports(stdout, opts.cfg.Format, reps); err != nil {
		fatal(log, "cannot write output", "error", err)
		return 1
	}

	if mets != nil {
		stats, err := mets.Stats()
		if err != nil {
			fatal(log, "cannot gather metrics", "error", err)
			return 1
		}
		for _, st := range stats {
			log.Info("cache", "zone", st.Zone, "hits", st.Hits, "misses", st.Misses)
		}
	}
	return 0
}

// parseArgs parses args into options, starting from the settings in cfg.
func parseArgs(args []string, cfg *config.Config, now func() time.Time, stderr io.Writer) (*options, error) {
	fs := pflag.NewFlagSet("zonedump", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: zonedump [flags] ZONE...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	fs.FuncP("loglevel", "l", "Set loglevel to trace, debug, info, warning, error or fatal", func(value string) error {
		lv, err := parseLevel(value)
		if err != nil {
			return err
		}
		level = lv
		return nil
	})

	format := fs.StringP("format", "f", cfg.Format, "output format: "+strings.Join(config.Formats, ", "))
	coalesce := fs.StringP("coalesce", "c", cfg.Coalesce, "merge adjacent intervals matching only: names, wall, or components")
	year := fs.IntP("year", "y", cfg.Year, "year to dump when --from and --to are unset (default current year)")
	from := fs.String("from", "", "start of the range in RFC 3339 format")
	to := fs.String("to", "", "end of the range in RFC 3339 format")
	local := fs.StringP("local", "t", "", "local time to resolve, as 2006-01-02T15:04:05[.999999999]")
	where := fs.String("latlong", "", "also dump the zone at LAT,LONG")
	fs.IntVar(&cfg.Horizon, "horizon", cfg.Horizon, "last year of precomputed transitions")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "cache buckets per zone, 0 to disable")
	fs.IntVarP(&cfg.Parallel, "parallel", "p", cfg.Parallel, "zones to process at once")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "time limit for processing all zones")
	fs.BoolVarP(&cfg.Metrics, "metrics", "m", cfg.Metrics, "log cache metrics at exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Format, cfg.Coalesce, cfg.Year = *format, *coalesce, *year
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := &options{cfg: cfg, level: level, zones: fs.Args()}
	if opts.coalesce, err = zone.ParseCoalescing(cfg.Coalesce); err != nil {
		return nil, err
	}

	if *where != "" {
		id, err := lookupLatLong(*where)
		if err != nil {
			return nil, err
		}
		opts.zones = append(opts.zones, id)
	}
	if len(opts.zones) == 0 {
		opts.zones = cfg.Zones
	}
	if len(opts.zones) == 0 {
		return nil, fmt.Errorf("%w: no zones specified", errUsage)
	}

	if opts.from, opts.to, err = parseRange(*from, *to, cfg.Year, now); err != nil {
		return nil, err
	}

	if *local != "" {
		t, err := time.Parse(localLayout, *local)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid --local: %w", errUsage, err)
		}
		l, err := types.LocalOf(t)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid --local: %w", errUsage, err)
		}
		opts.local = &l
	}

	return opts, nil
}

// parseRange parses the --from and --to flags. Either defaults to the start
// or end of year, or of the current year if year is zero.
func parseRange(from, to string, year int, now func() time.Time) (types.Instant, types.Instant, error) {
	if year == 0 {
		year = now().Year()
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	var err error
	if from != "" {
		if start, err = time.Parse(time.RFC3339Nano, from); err != nil {
			return types.Instant{}, types.Instant{}, fmt.Errorf("%w: invalid --from: %w", errUsage, err)
		}
	}
	if to != "" {
		if end, err = time.Parse(time.RFC3339Nano, to); err != nil {
			return types.Instant{}, types.Instant{}, fmt.Errorf("%w: invalid --to: %w", errUsage, err)
		}
	}

	s, err := types.FromTime(start)
	if err != nil {
		return types.Instant{}, types.Instant{}, fmt.Errorf("%w: invalid --from: %w", errUsage, err)
	}
	e, err := types.FromTime(end)
	if err != nil {
		return types.Instant{}, types.Instant{}, fmt.Errorf("%w: invalid --to: %w", errUsage, err)
	}
	return s, e, nil
}

// lookupLatLong returns the ID of the zone at a "latitude,longitude" pair.
func lookupLatLong(s string) (string, error) {
	latStr, longStr, ok := strings.Cut(s, ",")
	if !ok {
		return "", fmt.Errorf("%w: --latlong %q is not LAT,LONG", errUsage, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil || lat < -90 || lat > 90 {
		return "", fmt.Errorf("%w: invalid latitude in --latlong %q", errUsage, s)
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(longStr), 64)
	if err != nil || long < -180 || long > 180 {
		return "", fmt.Errorf("%w: invalid longitude in --latlong %q", errUsage, s)
	}
	id := latlong.LookupZoneName(lat, long)
	if id == "" {
		return "", fmt.Errorf("%w at %v,%v", errNoZone, lat, long)
	}
	return id, nil
}

// dump builds a report for each zone in opts, processing up to
// opts.cfg.Parallel zones at once.
func dump(ctx context.Context, log *slog.Logger, reg *tzdb.Registry, opts *options) ([]*report, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.cfg.Timeout)
	defer cancel()

	reps := make([]*report, len(opts.zones))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.cfg.Parallel)
	for i, id := range opts.zones {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			z, err := loadZone(log, reg, id)
			if err != nil {
				return err
			}
			log.Debug("loaded zone", "zone", id, "min", z.MinOffset(), "max", z.MaxOffset())
			rep, err := buildReport(z, opts.from, opts.to, opts.coalesce, opts.local)
			if err != nil {
				return fmt.Errorf("zone %s: %w", id, err)
			}
			reps[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reps, nil
}

// loadZone loads id from reg. If reg knows no such zone, loadZone tries to
// parse id as a POSIX TZ string.
func loadZone(log *slog.Logger, reg *tzdb.Registry, id string) (zone.Zone, error) {
	z, err := reg.Zone(id)
	if err == nil {
		return z, nil
	}
	if !errors.Is(err, tzdb.ErrUnknownZone) && !errors.Is(err, tzdb.ErrInvalidID) {
		return nil, err
	}

	r, rerr := rule.Parse(id)
	if rerr != nil {
		log.Debug("not a TZ string", "zone", id, "error", rerr)
		return nil, err
	}
	trace(log, "parsed TZ string", "zone", id, "std", r.StandardName(), "dst", r.DaylightName())
	pz, err := r.Zone(id)
	if err != nil {
		return nil, err
	}
	return pz, nil
}
