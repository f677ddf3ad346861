package gtfsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/schedule"
)

// StopRecord is a stop with its optional coordinates.
type StopRecord struct {
	Name schedule.StopID
	Town string
	Lat  *float64
	Lon  *float64
}

// HasLocation reports whether both coordinates are known.
func (s StopRecord) HasLocation() bool {
	return s.Lat != nil && s.Lon != nil
}

// ImportData is one parsed schedule ready to be stored.
type ImportData struct {
	Source string
	Hash   string // HashSource of the raw file
	Stops  []StopRecord
	Visits []schedule.StopVisit
}

// Client stores the schedule snapshot in SQLite.
type Client struct {
	config        Config
	DB            *sql.DB
	Queries       *Queries
	importRuntime atomic.Int64 // nanoseconds
	logger        *slog.Logger
}

// NewClient opens the database described by config and creates its tables.
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	}

	logger := slog.Default().With(slog.String("component", "schedule_store"))
	if config.verbose {
		logging.LogOperation(logger, "schedule_store_opened", slog.String("path", config.DBPath))
	}

	return &Client{
		config:  config,
		DB:      db,
		Queries: New(db),
		logger:  logger,
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) GetDBPath() string {
	return c.config.DBPath
}

// ImportRuntime is the duration of the last import that wrote data. It is
// zero until the first import completes.
func (c *Client) ImportRuntime() time.Duration {
	return time.Duration(c.importRuntime.Load())
}

// Import replaces the stored schedule with data. It does nothing and returns
// false when the same source with the same hash is already stored.
func (c *Client) Import(ctx context.Context, data ImportData) (bool, error) {
	existing, err := c.Queries.GetImportMetadata(ctx)
	switch {
	case err == nil:
		if existing.FileHash == data.Hash && existing.FileSource == data.Source {
			logging.LogOperation(c.logger, "schedule_unchanged_skipping_import",
				slog.String("hash", shortHash(data.Hash)))
			return false, nil
		}
		logging.LogOperation(c.logger, "schedule_changed_reimporting",
			slog.String("old_hash", shortHash(existing.FileHash)),
			slog.String("new_hash", shortHash(data.Hash)))
	case errors.Is(err, sql.ErrNoRows):
	default:
		return false, fmt.Errorf("error checking import metadata: %w", err)
	}

	start := time.Now()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "schedule_import")

	qtx := c.Queries.WithTx(tx)
	if err := qtx.ClearStopVisits(ctx); err != nil {
		return false, fmt.Errorf("error clearing stop visits: %w", err)
	}
	if err := qtx.ClearStops(ctx); err != nil {
		return false, fmt.Errorf("error clearing stops: %w", err)
	}
	if err := bulkInsertStops(ctx, tx, data.Stops); err != nil {
		return false, fmt.Errorf("unable to create stops: %w", err)
	}
	if err := bulkInsertVisits(ctx, tx, data.Visits); err != nil {
		return false, fmt.Errorf("unable to create stop visits: %w", err)
	}
	if err := qtx.UpsertImportMetadata(ctx, UpsertImportMetadataParams{
		FileHash:   data.Hash,
		FileSource: data.Source,
		ImportTime: time.Now().Unix(),
		VisitCount: int64(len(data.Visits)),
	}); err != nil {
		return false, fmt.Errorf("error updating import metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}

	elapsed := time.Since(start)
	c.importRuntime.Store(int64(elapsed))
	logging.LogOperation(c.logger, "schedule_import_completed",
		slog.String("source", data.Source),
		slog.Int("stops", len(data.Stops)),
		slog.Int("visits", len(data.Visits)),
		slog.Duration("duration", elapsed))
	return true, nil
}

// VisitsForDay returns the stored visits that operate on day, including
// those without a usable depart time.
func (c *Client) VisitsForDay(ctx context.Context, day schedule.Weekday) ([]schedule.StopVisit, error) {
	rows, err := c.Queries.ListVisitsForDay(ctx, DayMask(day))
	if err != nil {
		return nil, err
	}
	out := make([]schedule.StopVisit, len(rows))
	for i, r := range rows {
		out[i] = r.toSchedule()
	}
	return out, nil
}

// Stops returns every stored stop sorted by name.
func (c *Client) Stops(ctx context.Context) ([]StopRecord, error) {
	rows, err := c.Queries.ListStops(ctx)
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

// StopsForDay returns the stops with timed service on day.
func (c *Client) StopsForDay(ctx context.Context, day schedule.Weekday) ([]StopRecord, error) {
	rows, err := c.Queries.ListStopsForDay(ctx, DayMask(day))
	if err != nil {
		return nil, err
	}
	return toRecords(rows), nil
}

func toRecords(rows []Stop) []StopRecord {
	out := make([]StopRecord, len(rows))
	for i, r := range rows {
		out[i] = r.toRecord()
	}
	return out
}
