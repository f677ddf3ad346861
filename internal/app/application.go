package app

import (
	"log/slog"
	"time"

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/clock"
	"github.com/ia560/busplanner/internal/gtfs"
	"github.com/ia560/busplanner/internal/metrics"
	"github.com/ia560/busplanner/internal/schedule"
)

// Application holds the dependencies shared by the HTTP handlers, helpers
// and middleware.
type Application struct {
	Config      appconf.Config
	GtfsConfig  gtfs.Config
	Rules       *appconf.Rules
	Logger      *slog.Logger
	GtfsManager *gtfs.Manager
	Clock       clock.Clock
	Metrics     *metrics.Metrics
	Location    *time.Location
}

// ServiceMoment is the service day and time of day at the clock's current
// instant in the planner's time zone.
func (app *Application) ServiceMoment() (schedule.Weekday, schedule.TimeOfDay) {
	return clock.ServiceMoment(app.Clock, app.Location)
}

// DeparturesLimit caps departures.json.
func (app *Application) DeparturesLimit() int {
	if app.Rules == nil || app.Rules.DeparturesLimit <= 0 {
		return appconf.DefaultDeparturesLimit
	}
	return app.Rules.DeparturesLimit
}
