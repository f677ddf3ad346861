package gtfs

import (
	"time"

	"github.com/OneBusAway/go-gtfs"

	"github.com/ia560/busplanner/gtfsdb"
	"github.com/ia560/busplanner/internal/schedule"
)

// parseGTFS converts a GTFS zip into stop visits, one per scheduled stop
// time. Stops are keyed by name so platforms sharing a name act as one stop.
func parseGTFS(b []byte) (gtfsdb.ImportData, error) {
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return gtfsdb.ImportData{}, err
	}
	return fromStatic(static), nil
}

func fromStatic(static *gtfs.Static) gtfsdb.ImportData {
	var data gtfsdb.ImportData

	stations := make(map[string]bool)
	for _, s := range static.Stops {
		if s.Parent != nil {
			stations[s.Parent.Id] = true
		}
	}

	seen := make(map[schedule.StopID]bool, len(static.Stops))
	for i := range static.Stops {
		s := &static.Stops[i]
		if stations[s.Id] {
			continue
		}
		name := stopName(s)
		if seen[name] {
			continue
		}
		seen[name] = true
		data.Stops = append(data.Stops, gtfsdb.StopRecord{
			Name: name,
			Town: stopTown(s),
			Lat:  s.Latitude,
			Lon:  s.Longitude,
		})
	}

	for _, trip := range static.Trips {
		days := serviceDays(trip.Service)
		route := routeName(trip.Route)
		for _, st := range trip.StopTimes {
			if st.Stop == nil {
				continue
			}
			data.Visits = append(data.Visits, schedule.StopVisit{
				Stop:          stopName(st.Stop),
				Town:          stopTown(st.Stop),
				Route:         route,
				DepartTime:    schedule.TimeOfDay(st.DepartureTime / time.Second),
				OperatingDays: days,
			})
		}
	}
	return data
}

func stopName(s *gtfs.Stop) schedule.StopID {
	if s.Name != "" {
		return schedule.StopID(s.Name)
	}
	return schedule.StopID(s.Id)
}

// stopTown is the parent station name, else the fare zone.
func stopTown(s *gtfs.Stop) string {
	if s.Parent != nil && s.Parent.Name != "" {
		return s.Parent.Name
	}
	return s.ZoneId
}

func routeName(r *gtfs.Route) schedule.RouteID {
	if r == nil {
		return ""
	}
	if r.ShortName != "" {
		return schedule.RouteID(r.ShortName)
	}
	return schedule.RouteID(r.Id)
}

func serviceDays(s *gtfs.Service) schedule.WeekdaySet {
	if s == nil {
		return 0
	}
	var days schedule.WeekdaySet
	for day, runs := range []bool{s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday, s.Sunday} {
		if runs {
			days = days.Add(schedule.Weekday(day))
		}
	}
	return days
}
