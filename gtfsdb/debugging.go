package gtfsdb

import (
	"fmt"
	"log/slog"

	"github.com/ia560/busplanner/internal/logging"
)

// SchemaObject is one table, index, view or trigger of the database.
type SchemaObject struct {
	Type string
	Name string
	SQL  string
}

// Schema lists the objects defined in the database, tables first.
func (c *Client) Schema() ([]SchemaObject, error) {
	rows, err := c.DB.Query(`
		SELECT type, name, COALESCE(sql, '')
		FROM sqlite_master
		WHERE type IN ('table', 'index', 'view', 'trigger')
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows,
		slog.Default().With(slog.String("component", "debugging")),
		"database_rows")

	var objects []SchemaObject
	for rows.Next() {
		var o SchemaObject
		if err := rows.Scan(&o.Type, &o.Name, &o.SQL); err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// ImportCounts summarises an ImportData for logs and the debug page.
func ImportCounts(data ImportData) map[string]int {
	located := 0
	for _, s := range data.Stops {
		if s.HasLocation() {
			located++
		}
	}
	return map[string]int{
		"stops":         len(data.Stops),
		"located_stops": located,
		"stop_visits":   len(data.Visits),
	}
}

// TableCounts returns the row count of every known table present in the
// database. Unknown tables are ignored.
func (c *Client) TableCounts() (map[string]int, error) {
	rows, err := c.DB.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("failed to query table names: %w", err)
	}
	defer logging.SafeCloseWithLogging(rows,
		slog.Default().With(slog.String("component", "debugging")),
		"database_rows")

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tableCountQueries := map[string]string{
		"stops":           "SELECT COUNT(*) FROM stops",
		"stop_visits":     "SELECT COUNT(*) FROM stop_visits",
		"import_metadata": "SELECT COUNT(*) FROM import_metadata",
	}

	counts := make(map[string]int)
	for _, table := range tables {
		query, ok := tableCountQueries[table]
		if !ok {
			continue
		}
		var count int
		if err := c.DB.QueryRow(query).Scan(&count); err != nil {
			return nil, err
		}
		counts[table] = count
	}
	return counts, nil
}
