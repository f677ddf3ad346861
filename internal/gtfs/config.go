package gtfs

import (
	"time"

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/timegraph"
)

// DefaultRefreshInterval is how often a remote schedule is fetched again.
const DefaultRefreshInterval = 24 * time.Hour

// Config holds schedule configuration for the manager.
type Config struct {
	ScheduleURL     string // local path or http(s) URL of a .zip (GTFS) or .csv file
	AuthHeaderKey   string
	AuthHeaderValue string
	DataPath        string // SQLite path, ":memory:" in tests
	Env             appconf.Environment
	Verbose         bool
	RefreshInterval time.Duration
	ExclusionRules  []timegraph.ExclusionRule
}

func (config Config) refreshInterval() time.Duration {
	if config.RefreshInterval <= 0 {
		return DefaultRefreshInterval
	}
	return config.RefreshInterval
}
