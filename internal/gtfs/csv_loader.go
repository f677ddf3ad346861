package gtfs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/schedule"
)

const (
	colStop      = "stop location"
	colTown      = "town"
	colRoute     = "route"
	colDepart    = "depart time"
	colLatitude  = "latitude"
	colLongitude = "longitude"
)

// csvColumns maps lower-cased header names to column positions.
type csvColumns map[string]int

func (c csvColumns) get(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// parseCSV reads the tabular schedule layout: one row per stop visit with
// columns Stop Location, Town, Route, Depart Time and one flag column per
// weekday. A file without weekday columns runs every day. Rows whose time
// cannot be parsed are kept with NoTime so graph building can count them.
func parseCSV(r io.Reader) (gtfsdb.ImportData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return gtfsdb.ImportData{}, errors.New("empty schedule file")
		}
		return gtfsdb.ImportData{}, err
	}

	cols := make(csvColumns, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{colStop, colRoute, colDepart} {
		if _, ok := cols[required]; !ok {
			return gtfsdb.ImportData{}, fmt.Errorf("missing column %q", required)
		}
	}

	dayCols := make(map[schedule.Weekday]int)
	for name, i := range cols {
		if day, err := schedule.ParseWeekday(name); err == nil {
			dayCols[day] = i
		}
	}

	var data gtfsdb.ImportData
	seen := make(map[schedule.StopID]int)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return gtfsdb.ImportData{}, fmt.Errorf("line %d: %w", line, err)
		}

		stop := schedule.StopID(cols.get(record, colStop))
		route := schedule.RouteID(cols.get(record, colRoute))
		if stop == "" || route == "" {
			continue
		}
		town := cols.get(record, colTown)

		depart, err := schedule.ParseTimeOfDay(cols.get(record, colDepart))
		if err != nil {
			depart = schedule.NoTime
		}

		days := schedule.EveryDay
		if len(dayCols) > 0 {
			days = 0
			for day, i := range dayCols {
				if i < len(record) && parseFlag(record[i]) {
					days = days.Add(day)
				}
			}
		}

		data.Visits = append(data.Visits, schedule.StopVisit{
			Stop:          stop,
			Town:          town,
			Route:         route,
			DepartTime:    depart,
			OperatingDays: days,
		})

		lat, latErr := parseCoordinate(cols.get(record, colLatitude))
		lon, lonErr := parseCoordinate(cols.get(record, colLongitude))
		idx, known := seen[stop]
		if !known {
			seen[stop] = len(data.Stops)
			rec := gtfsdb.StopRecord{Name: stop, Town: town}
			if latErr == nil && lonErr == nil {
				rec.Lat, rec.Lon = lat, lon
			}
			data.Stops = append(data.Stops, rec)
			continue
		}
		if !data.Stops[idx].HasLocation() && latErr == nil && lonErr == nil {
			data.Stops[idx].Lat, data.Stops[idx].Lon = lat, lon
		}
	}
	return data, nil
}

// parseFlag accepts the usual spreadsheet spellings of "runs on this day".
func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "y", "yes", "true", "x":
		return true
	default:
		return false
	}
}

func parseCoordinate(s string) (*float64, error) {
	if s == "" {
		return nil, errors.New("empty coordinate")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
