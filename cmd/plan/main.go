// Command plan answers a single journey query against a schedule file and
// prints the itinerary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/clock"
	"github.com/ia560/busplanner/internal/gtfs"
	"github.com/ia560/busplanner/internal/itinerary"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/schedule"
)

// Exit codes.
const (
	exitOK       = 0
	exitNoPath   = 1
	exitBadUsage = 2
	exitFailure  = 3
)

type options struct {
	schedule      string
	rules         string
	from          string
	to            string
	day           string
	depart        string
	returnTime    string
	roundTrip     bool
	allDepartures bool
	limit         int
	strategy      string
	verbose       bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, clock.RealClock{}))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("plan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.schedule, "schedule", "testdata/ames.csv", "Path or URL of a GTFS zip or schedule CSV")
	fs.StringVar(&opts.rules, "rules", "", "Planner rules YAML file")
	fs.StringVar(&opts.from, "from", "", "Origin stop")
	fs.StringVar(&opts.to, "to", "", "Destination stop")
	fs.StringVar(&opts.day, "day", "", "Day of week (default today)")
	fs.StringVar(&opts.depart, "time", "", "Earliest departure, \"now\" for the current time (default any time)")
	fs.StringVar(&opts.returnTime, "return-time", "", "Earliest departure of the return leg")
	fs.BoolVar(&opts.roundTrip, "round-trip", false, "Also plan the trip back")
	fs.BoolVar(&opts.allDepartures, "all", false, "List one itinerary per departure from the origin")
	fs.IntVar(&opts.limit, "limit", appconf.DefaultDeparturesLimit, "Maximum itineraries printed with -all, 0 for no limit")
	fs.StringVar(&opts.strategy, "strategy", "exhaustive", "Search strategy (exhaustive|multi_source)")
	fs.BoolVar(&opts.verbose, "verbose", false, "Log at debug level")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.from == "" || opts.to == "" {
		return opts, errors.New("both -from and -to are required")
	}
	if opts.returnTime != "" {
		opts.roundTrip = true
	}
	if opts.roundTrip && opts.allDepartures {
		return opts, errors.New("-round-trip and -all cannot be combined")
	}
	if opts.limit < 0 {
		return opts, errors.New("-limit must not be negative")
	}
	return opts, nil
}

// run executes one query and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, c clock.Clock) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitBadUsage
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewStructuredLogger(stderr, level)

	rules, err := appconf.LoadRules(opts.rules)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadUsage
	}
	location, err := rules.Location()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadUsage
	}

	today, now := clock.ServiceMoment(c, location)
	day := today
	if opts.day != "" {
		if day, err = schedule.ParseWeekday(opts.day); err != nil {
			fmt.Fprintln(stderr, err)
			return exitBadUsage
		}
	}
	strategy, err := planner.ParseStrategy(opts.strategy)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadUsage
	}
	outbound, err := buildQuery(schedule.StopID(opts.from), schedule.StopID(opts.to), opts.depart, now)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadUsage
	}
	ret, err := buildQuery(schedule.StopID(opts.to), schedule.StopID(opts.from), opts.returnTime, now)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitBadUsage
	}

	manager, err := gtfs.InitManager(ctx, gtfs.Config{
		ScheduleURL:    opts.schedule,
		DataPath:       ":memory:",
		Env:            appconf.Development,
		Verbose:        opts.verbose,
		ExclusionRules: rules.ExclusionRules(),
	}, gtfs.WithLogger(logging.Component(logger, "schedule_manager")))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer manager.Shutdown()

	g, err := manager.BuildGraph(ctx, day)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	plannerOpts := []planner.Option{
		planner.WithStrategy(strategy),
		planner.WithLogger(logging.Component(logger, "planner")),
	}

	switch {
	case opts.roundTrip:
		return printRoundTrip(stdout, stderr, planner.RoundTrip(g, outbound, ret, plannerOpts...))
	case opts.allDepartures:
		results, err := planner.FindAllDepartures(g, outbound, opts.limit, plannerOpts...)
		if err != nil {
			return reportQueryError(stderr, err)
		}
		for i, result := range results {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			if err := printItinerary(stdout, result, itinerary.Outbound); err != nil {
				return exitFailure
			}
		}
		return exitOK
	default:
		result, err := planner.FindPath(g, outbound, plannerOpts...)
		if err != nil {
			return reportQueryError(stderr, err)
		}
		if err := printItinerary(stdout, result, itinerary.Outbound); err != nil {
			return exitFailure
		}
		return exitOK
	}
}

// buildQuery reads an optional departure time. An empty value means any
// time and "now" means the current service time.
func buildQuery(from, to schedule.StopID, depart string, now schedule.TimeOfDay) (planner.Query, error) {
	switch depart {
	case "":
		return planner.AnyTime(from, to), nil
	case "now":
		return planner.After(from, to, now), nil
	}
	t, err := schedule.ParseTimeOfDay(depart)
	if err != nil {
		return planner.Query{}, err
	}
	return planner.After(from, to, t), nil
}

func printItinerary(w io.Writer, result *planner.PathResult, dir itinerary.Direction) error {
	if _, err := fmt.Fprintln(w, itinerary.Headline(result)); err != nil {
		return err
	}
	return itinerary.Render(w, itinerary.Format(result), dir)
}

func printRoundTrip(stdout, stderr io.Writer, rt *planner.RoundTripResult) int {
	if rt.Outbound == nil && rt.Return == nil {
		return reportQueryError(stderr, rt.Err())
	}

	fmt.Fprintln(stdout, itinerary.RoundTripHeadline(rt))
	code := exitOK
	for _, leg := range []struct {
		result *planner.PathResult
		err    error
		dir    itinerary.Direction
	}{
		{rt.Outbound, rt.OutboundErr, itinerary.Outbound},
		{rt.Return, rt.ReturnErr, itinerary.Return},
	} {
		if leg.err != nil {
			code = reportQueryError(stderr, leg.err)
			continue
		}
		if err := itinerary.Render(stdout, itinerary.Format(leg.result), leg.dir); err != nil {
			return exitFailure
		}
	}
	return code
}

func reportQueryError(stderr io.Writer, err error) int {
	var unknown *planner.UnknownStopError
	var notFound *planner.NotFoundError
	switch {
	case errors.As(err, &unknown):
		fmt.Fprintf(stderr, "%s has no service on %s\n", unknown.Stop, unknown.Day)
		return exitNoPath
	case errors.As(err, &notFound):
		fmt.Fprintf(stderr, "No itinerary found from %s to %s\n", notFound.Origin, notFound.Destination)
		return exitNoPath
	default:
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
}
