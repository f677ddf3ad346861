// Package schedule holds the normalised schedule records consumed by the
// route planner: stop visits, service-day times and operating-day sets.
package schedule

// StopID identifies a stop by its display name.
type StopID string

// RouteID identifies a bus route.
type RouteID string

// StopVisit is one scheduled vehicle visit to a stop.
type StopVisit struct {
	Stop          StopID
	Town          string
	Route         RouteID
	DepartTime    TimeOfDay
	OperatingDays WeekdaySet
}

// OperatesOn reports whether the visit runs on day and has a usable time.
func (v StopVisit) OperatesOn(day Weekday) bool {
	return v.DepartTime.Valid() && v.OperatingDays.Has(day)
}

// FilterForDay keeps the visits that run on day. Visits with a missing or
// malformed depart time are skipped and counted in dropped; they never
// abort the filtering.
func FilterForDay(visits []StopVisit, day Weekday) (kept []StopVisit, dropped int) {
	kept = make([]StopVisit, 0, len(visits))
	for _, v := range visits {
		if !v.OperatingDays.Has(day) {
			continue
		}
		if !v.DepartTime.Valid() {
			dropped++
			continue
		}
		kept = append(kept, v)
	}
	return kept, dropped
}
