package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ia560/busplanner/internal/app"
	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/clock"
	"github.com/ia560/busplanner/internal/gtfs"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/metrics"
	"github.com/ia560/busplanner/internal/restapi"
	"github.com/ia560/busplanner/internal/webui"
)

const (
	dbStatsInterval = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

// BuildApplication loads the planner rules, imports the schedule and wires
// the dependencies shared by the handlers.
func BuildApplication(cfg appconf.Config, gtfsCfg gtfs.Config) (*app.Application, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)

	rules, err := appconf.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load planner rules: %w", err)
	}
	rules.Merge(cfg)
	location, err := rules.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", rules.Timezone, err)
	}
	gtfsCfg.ExclusionRules = append(gtfsCfg.ExclusionRules, rules.ExclusionRules()...)

	m := metrics.NewWithLogger(logger)
	manager, err := gtfs.InitManager(context.Background(), gtfsCfg,
		gtfs.WithMetrics(m),
		gtfs.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GTFS manager: %w", err)
	}
	m.StartDBStatsCollector(manager.GtfsDB.DB, dbStatsInterval)

	return &app.Application{
		Config:      cfg,
		GtfsConfig:  gtfsCfg,
		Rules:       rules,
		Logger:      logger,
		GtfsManager: manager,
		Clock:       newClock(cfg, location),
		Metrics:     m,
		Location:    location,
	}, nil
}

// newClock pins the clock when a pinned time is configured.
func newClock(cfg appconf.Config, location *time.Location) clock.Clock {
	if cfg.ClockFile == "" && os.Getenv(appconf.PinnedTimeEnvVar) == "" {
		return clock.RealClock{}
	}
	return clock.NewPinnedClock(appconf.PinnedTimeEnvVar, cfg.ClockFile, location)
}

// CreateServer builds the HTTP server and the API behind it. The caller
// must Shutdown the returned API.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)
	webUI := &webui.WebUI{Application: coreApp}

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	webUI.SetWebUIRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Handler(mux),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}
	return srv, api
}

// Run serves until ctx is cancelled, then shuts the server and the
// application down.
func Run(ctx context.Context, srv *http.Server, coreApp *app.Application, api *restapi.RestAPI) error {
	logger := logging.Component(coreApp.Logger, "server")

	serveErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "starting_server",
			slog.String("addr", srv.Addr),
			slog.String("env", coreApp.Config.Env.String()))
		serveErr <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-ctx.Done():
		logging.LogOperation(logger, "shutting_down_server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.LogError(logger, "server shutdown failed", err)
			runErr = err
		}
	}

	api.Shutdown()
	coreApp.GtfsManager.Shutdown()
	coreApp.Metrics.Shutdown()
	logging.LogOperation(logger, "server_stopped")
	return runErr
}

// ParseAPIKeys splits a comma separated key list, trimming each key.
func ParseAPIKeys(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	keys := strings.Split(s, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}
