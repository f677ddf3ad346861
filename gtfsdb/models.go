package gtfsdb

import "database/sql"

// Stop is a row of the stops table.
type Stop struct {
	Name string
	Town string
	Lat  sql.NullFloat64
	Lon  sql.NullFloat64
}

// StopVisit is a row of the stop_visits table. DepartTime is seconds since
// the start of the service day; OperatingDays is a Monday-first bitmask.
type StopVisit struct {
	ID            int64
	StopName      string
	Town          string
	Route         string
	DepartTime    sql.NullInt64
	OperatingDays int64
}

// ImportMetadatum records the last imported schedule.
type ImportMetadatum struct {
	FileHash   string
	FileSource string
	ImportTime int64
	VisitCount int64
}
