package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/gtfs"
)

func main() {
	var (
		cfg        appconf.Config
		gtfsCfg    gtfs.Config
		env        string
		apiKeys    string
		exemptKeys string
	)

	flag.IntVar(&cfg.Port, "port", 4000, "API server port")
	flag.StringVar(&env, "env", "development", "Environment (development|test|production)")
	flag.StringVar(&apiKeys, "api-keys", "test", "Comma separated API keys")
	flag.StringVar(&exemptKeys, "exempt-api-keys", "", "Comma separated API keys that skip rate limiting")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log at debug level")
	flag.StringVar(&cfg.RulesPath, "rules", "", "Planner rules YAML file")
	flag.StringVar(&cfg.Timezone, "timezone", "", "Time zone for \"leave now\" queries, overrides the rules file")
	flag.IntVar(&cfg.DeparturesLimit, "departures-limit", 0, "Maximum itineraries returned by departures.json")
	flag.StringVar(&cfg.ClockFile, "clock-file", "", "File holding a pinned current time")

	flag.StringVar(&gtfsCfg.ScheduleURL, "schedule-url", "testdata/ames.csv", "Path or URL of a GTFS zip or schedule CSV")
	flag.StringVar(&gtfsCfg.AuthHeaderKey, "schedule-auth-header-name", "", "Header sent when fetching the schedule")
	flag.StringVar(&gtfsCfg.AuthHeaderValue, "schedule-auth-header-value", "", "Value of the schedule auth header")
	flag.StringVar(&gtfsCfg.DataPath, "data-path", "./busplanner.db", "SQLite database path")
	flag.DurationVar(&gtfsCfg.RefreshInterval, "refresh-interval", gtfs.DefaultRefreshInterval, "How often a remote schedule is fetched again")
	flag.Parse()

	cfg.Env = appconf.EnvFlagToEnvironment(env)
	cfg.ApiKeys = ParseAPIKeys(apiKeys)
	cfg.ExemptApiKeys = ParseAPIKeys(exemptKeys)
	gtfsCfg.Env = cfg.Env
	gtfsCfg.Verbose = cfg.Verbose

	coreApp, err := BuildApplication(cfg, gtfsCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	srv, api := CreateServer(coreApp, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, srv, coreApp, api); err != nil {
		coreApp.Logger.Error("server_failed", "error", err)
		stop()
		os.Exit(1)
	}
}
