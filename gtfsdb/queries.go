package gtfsdb

import (
	"context"
	"database/sql"
)

const listStops = `SELECT name, town, lat, lon FROM stops ORDER BY name`

func (q *Queries) ListStops(ctx context.Context) ([]Stop, error) {
	rows, err := q.db.QueryContext(ctx, listStops)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStops(rows)
}

const listStopsForDay = `
SELECT s.name, s.town, s.lat, s.lon
FROM stops s
WHERE EXISTS (
    SELECT 1 FROM stop_visits v
    WHERE v.stop_name = s.name
      AND v.depart_time IS NOT NULL
      AND (v.operating_days & ?) != 0
)
ORDER BY s.name`

// ListStopsForDay returns the stops with at least one timed visit on the
// days in dayMask.
func (q *Queries) ListStopsForDay(ctx context.Context, dayMask int64) ([]Stop, error) {
	rows, err := q.db.QueryContext(ctx, listStopsForDay, dayMask)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStops(rows)
}

func scanStops(rows *sql.Rows) ([]Stop, error) {
	var items []Stop
	for rows.Next() {
		var s Stop
		if err := rows.Scan(&s.Name, &s.Town, &s.Lat, &s.Lon); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const listVisitsForDay = `
SELECT id, stop_name, town, route, depart_time, operating_days
FROM stop_visits
WHERE (operating_days & ?) != 0
ORDER BY id`

// ListVisitsForDay returns every visit operating on the days in dayMask, in
// import order. Visits without a depart time are included.
func (q *Queries) ListVisitsForDay(ctx context.Context, dayMask int64) ([]StopVisit, error) {
	rows, err := q.db.QueryContext(ctx, listVisitsForDay, dayMask)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StopVisit
	for rows.Next() {
		var v StopVisit
		if err := rows.Scan(&v.ID, &v.StopName, &v.Town, &v.Route, &v.DepartTime, &v.OperatingDays); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

const countVisits = `SELECT COUNT(*) FROM stop_visits`

func (q *Queries) CountVisits(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countVisits).Scan(&n)
	return n, err
}

const clearStopVisits = `DELETE FROM stop_visits`

func (q *Queries) ClearStopVisits(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearStopVisits)
	return err
}

const clearStops = `DELETE FROM stops`

func (q *Queries) ClearStops(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearStops)
	return err
}

const getImportMetadata = `
SELECT file_hash, file_source, import_time, visit_count
FROM import_metadata WHERE id = 1`

func (q *Queries) GetImportMetadata(ctx context.Context) (ImportMetadatum, error) {
	var m ImportMetadatum
	err := q.db.QueryRowContext(ctx, getImportMetadata).Scan(&m.FileHash, &m.FileSource, &m.ImportTime, &m.VisitCount)
	return m, err
}

const upsertImportMetadata = `
INSERT INTO import_metadata (id, file_hash, file_source, import_time, visit_count)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    file_hash = excluded.file_hash,
    file_source = excluded.file_source,
    import_time = excluded.import_time,
    visit_count = excluded.visit_count`

type UpsertImportMetadataParams struct {
	FileHash   string
	FileSource string
	ImportTime int64
	VisitCount int64
}

func (q *Queries) UpsertImportMetadata(ctx context.Context, arg UpsertImportMetadataParams) error {
	_, err := q.db.ExecContext(ctx, upsertImportMetadata, arg.FileHash, arg.FileSource, arg.ImportTime, arg.VisitCount)
	return err
}
