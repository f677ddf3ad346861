package gtfsdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"github.com/ia560/busplanner/internal/appconf"
	"github.com/ia560/busplanner/internal/logging"
	"github.com/ia560/busplanner/internal/schedule"
)

//go:embed schema.sql
var ddl string

// insertBatchSize bounds the rows per multi-row INSERT; five columns per row
// keep a batch well under SQLite's host parameter limit.
const insertBatchSize = 500

func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test database must use in-memory storage, got path: %s", config.DBPath)
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, err
	}

	configureConnectionPool(db, config)

	ctx := context.Background()
	if err := configureSQLitePerformance(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error configuring SQLite: %w", err)
	}
	if err := performDatabaseMigration(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}
	return db, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", stmt, err)
		}
	}
	return nil
}

func configureSQLitePerformance(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA cache_size=-32000",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA synchronous=NORMAL",
	}

	logger := slog.Default().With(slog.String("component", "sqlite_performance"))
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			logging.LogError(logger, "failed_to_apply_pragma", err, slog.String("pragma", p))
			return fmt.Errorf("failed to execute %s: %w", p, err)
		}
	}
	return nil
}

// configureConnectionPool limits :memory: databases to one connection, since
// every connection to ":memory:" opens a separate empty database.
func configureConnectionPool(db *sql.DB, config Config) {
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)
}

// HashSource returns the hex SHA-256 of a raw schedule file.
func HashSource(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

func bulkInsertStops(ctx context.Context, tx *sql.Tx, stops []StopRecord) error {
	const prefix = "INSERT OR IGNORE INTO stops (name, town, lat, lon) VALUES "
	return insertBatches(ctx, tx, prefix, 4, len(stops), func(i int) []any {
		s := stops[i]
		return []any{string(s.Name), s.Town, toNullFloat64(s.Lat), toNullFloat64(s.Lon)}
	})
}

func bulkInsertVisits(ctx context.Context, tx *sql.Tx, visits []schedule.StopVisit) error {
	const prefix = "INSERT INTO stop_visits (stop_name, town, route, depart_time, operating_days) VALUES "
	return insertBatches(ctx, tx, prefix, 5, len(visits), func(i int) []any {
		v := visits[i]
		return []any{string(v.Stop), v.Town, string(v.Route), timeToNullInt64(v.DepartTime), int64(v.OperatingDays)}
	})
}

// insertBatches writes n rows as multi-row INSERT statements.
func insertBatches(ctx context.Context, tx *sql.Tx, prefix string, cols, n int, row func(int) []any) error {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", cols), ", ") + ")"

	for start := 0; start < n; start += insertBatchSize {
		end := min(start+insertBatchSize, n)

		var b strings.Builder
		b.WriteString(prefix)
		args := make([]any, 0, (end-start)*cols)
		for i := start; i < end; i++ {
			if i > start {
				b.WriteString(", ")
			}
			b.WriteString(placeholder)
			args = append(args, row(i)...)
		}

		if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d: %w", start, end, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func toNullFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func timeToNullInt64(t schedule.TimeOfDay) sql.NullInt64 {
	if !t.Valid() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(t), Valid: true}
}

// DayMask returns the operating_days bit of day.
func DayMask(day schedule.Weekday) int64 {
	return int64(schedule.NewWeekdaySet(day))
}

func (v StopVisit) toSchedule() schedule.StopVisit {
	t := schedule.NoTime
	if v.DepartTime.Valid {
		t = schedule.TimeOfDay(v.DepartTime.Int64)
	}
	return schedule.StopVisit{
		Stop:          schedule.StopID(v.StopName),
		Town:          v.Town,
		Route:         schedule.RouteID(v.Route),
		DepartTime:    t,
		OperatingDays: schedule.WeekdaySet(v.OperatingDays),
	}
}

func (s Stop) toRecord() StopRecord {
	r := StopRecord{Name: schedule.StopID(s.Name), Town: s.Town}
	if s.Lat.Valid && s.Lon.Valid {
		lat, lon := s.Lat.Float64, s.Lon.Float64
		r.Lat, r.Lon = &lat, &lon
	}
	return r
}
