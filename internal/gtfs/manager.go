package gtfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/metrics"
	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
)

// ErrNotReady is returned by reads made before any schedule was loaded.
var ErrNotReady = errors.New("schedule not loaded")

// Manager owns the schedule snapshot: the SQLite store, the stop list and
// the stop spatial index. Reads take staticMutex; refreshes swap the
// snapshot under the write lock.
type Manager struct {
	config      Config
	isLocalFile bool
	logger      *slog.Logger
	metrics     *metrics.Metrics

	GtfsDB      *gtfsdb.Client
	stops       []gtfsdb.StopRecord
	stopIndex   *stopIndex
	lastUpdated time.Time
	isHealthy   bool

	staticMutex       sync.RWMutex
	staticUpdateMutex sync.Mutex

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// ManagerOption configures InitManager.
type ManagerOption func(*Manager)

// WithMetrics records graph builds and the stored visit count.
func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(manager *Manager) { manager.metrics = m }
}

// WithLogger replaces the default component logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(manager *Manager) { manager.logger = logger }
}

// InitManager loads the configured schedule into the store and, for remote
// sources, starts refreshing it every RefreshInterval.
func InitManager(ctx context.Context, config Config, opts ...ManagerOption) (*Manager, error) {
	manager := &Manager{
		config:       config,
		isLocalFile:  isLocalSource(config.ScheduleURL),
		logger:       slog.Default().With(slog.String("component", "schedule_manager")),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(manager)
	}

	client, err := gtfsdb.NewClient(gtfsdb.NewConfig(config.DataPath, config.Env, config.Verbose))
	if err != nil {
		return nil, fmt.Errorf("failed to create schedule database client: %w", err)
	}
	manager.GtfsDB = client

	if err := manager.ForceUpdate(ctx); err != nil {
		logging.SafeCloseWithLogging(client, manager.logger, "schedule_db")
		return nil, err
	}

	if !manager.isLocalFile {
		manager.wg.Add(1)
		go manager.updateSchedulePeriodically()
	}
	return manager, nil
}

func (manager *Manager) updateSchedulePeriodically() {
	defer manager.wg.Done()

	logger := slog.Default().With(slog.String("component", "schedule_updater"))

	ticker := time.NewTicker(manager.config.refreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			err := manager.ForceUpdate(ctx)
			cancel()
			if err != nil {
				logging.LogError(logger, "Error updating schedule", err,
					slog.String("source", manager.config.ScheduleURL))
			}
		case <-manager.shutdownChan:
			logging.LogOperation(logger, "shutting_down_schedule_updates")
			return
		}
	}
}

// ForceUpdate fetches the source again and, when its contents changed,
// replaces the stored visits and rebuilds the stop index. On failure the
// previous snapshot keeps serving.
func (manager *Manager) ForceUpdate(ctx context.Context) error {
	manager.staticUpdateMutex.Lock()
	defer manager.staticUpdateMutex.Unlock()

	data, err := loadSchedule(ctx, manager.config)
	if err != nil {
		logging.LogError(manager.logger, "Error loading schedule", err,
			slog.String("source", manager.config.ScheduleURL))
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	manager.staticMutex.Lock()
	defer manager.staticMutex.Unlock()

	imported, err := manager.GtfsDB.Import(ctx, data)
	if err != nil {
		logging.LogError(manager.logger, "Error importing schedule", err)
		return err
	}

	stops, err := manager.GtfsDB.Stops(ctx)
	if err != nil {
		logging.LogError(manager.logger, "Error reading stops", err)
		return err
	}

	manager.stops = stops
	manager.stopIndex = buildStopSpatialIndex(stops)
	manager.lastUpdated = time.Now()
	manager.isHealthy = true

	if manager.metrics != nil {
		manager.metrics.ScheduleVisits.Set(float64(len(data.Visits)))
	}

	attrs := []slog.Attr{
		slog.String("source", manager.config.ScheduleURL),
		slog.Bool("imported", imported),
		slog.Int("indexed_stops", manager.stopIndex.Len()),
	}
	for k, v := range gtfsdb.ImportCounts(data) {
		attrs = append(attrs, slog.Int(k, v))
	}
	logging.LogOperation(manager.logger, "schedule_data_updated", attrs...)
	return nil
}

// Shutdown stops the refresh goroutine and closes the store.
func (manager *Manager) Shutdown() {
	manager.shutdownOnce.Do(func() {
		close(manager.shutdownChan)
		manager.wg.Wait()
		if manager.GtfsDB != nil {
			logging.SafeCloseWithLogging(manager.GtfsDB, manager.logger, "schedule_db")
		}
	})
}

func (manager *Manager) IsHealthy() bool {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.isHealthy
}

func (manager *Manager) MarkHealthy() {
	manager.staticMutex.Lock()
	defer manager.staticMutex.Unlock()
	manager.isHealthy = true
}

func (manager *Manager) MarkUnhealthy() {
	manager.staticMutex.Lock()
	defer manager.staticMutex.Unlock()
	manager.isHealthy = false
}

// IsReady reports whether a schedule has been loaded and the store is open.
func (manager *Manager) IsReady() bool {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.isHealthy && manager.GtfsDB != nil && !manager.lastUpdated.IsZero()
}

// LastUpdated is when the snapshot was last refreshed.
func (manager *Manager) LastUpdated() time.Time {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.lastUpdated
}

// VisitsForDay returns the stored visits operating on day.
func (manager *Manager) VisitsForDay(ctx context.Context, day schedule.Weekday) ([]schedule.StopVisit, error) {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	if manager.GtfsDB == nil {
		return nil, ErrNotReady
	}
	return manager.GtfsDB.VisitsForDay(ctx, day)
}

// Stops returns every known stop sorted by name.
func (manager *Manager) Stops() []gtfsdb.StopRecord {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.stops
}

// StopsForDay returns the stops with timed service on day.
func (manager *Manager) StopsForDay(ctx context.Context, day schedule.Weekday) ([]gtfsdb.StopRecord, error) {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	if manager.GtfsDB == nil {
		return nil, ErrNotReady
	}
	return manager.GtfsDB.StopsForDay(ctx, day)
}

// FindStop looks a stop up by name.
func (manager *Manager) FindStop(name schedule.StopID) (gtfsdb.StopRecord, bool) {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	for _, s := range manager.stops {
		if s.Name == name {
			return s, true
		}
	}
	return gtfsdb.StopRecord{}, false
}

// StopsNear returns located stops within radius meters, closest first.
func (manager *Manager) StopsNear(lat, lon, radius float64, maxCount int) []StopDistance {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.stopIndex.near(lat, lon, radius, maxCount)
}

// BuildGraph builds a new time-expanded graph for day from the stored
// visits and the configured exclusion rules.
func (manager *Manager) BuildGraph(ctx context.Context, day schedule.Weekday) (*timegraph.Graph, error) {
	visits, err := manager.VisitsForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	g := timegraph.Build(visits, day,
		timegraph.WithExclusionRules(manager.config.ExclusionRules...),
		timegraph.WithLogger(manager.logger))
	manager.metrics.ObserveGraphBuild(g, time.Since(start))
	return g, nil
}
