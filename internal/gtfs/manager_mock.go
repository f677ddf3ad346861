package gtfs

import (
	"context"
	"time"

	"github.com/ia560/busplanner/gtfsdb"
)

// MockReplaceSchedule swaps the snapshot for data without reading the
// configured source.
func (manager *Manager) MockReplaceSchedule(ctx context.Context, data gtfsdb.ImportData) error {
	if data.Hash == "" {
		data.Hash = time.Now().Format(time.RFC3339Nano)
	}
	if data.Source == "" {
		data.Source = "mock"
	}

	manager.staticMutex.Lock()
	defer manager.staticMutex.Unlock()

	if _, err := manager.GtfsDB.Import(ctx, data); err != nil {
		return err
	}
	stops, err := manager.GtfsDB.Stops(ctx)
	if err != nil {
		return err
	}
	manager.stops = stops
	manager.stopIndex = buildStopSpatialIndex(stops)
	manager.lastUpdated = time.Now()
	manager.isHealthy = true
	return nil
}
