package timegraph

import "github.com/ia560/busplanner/internal/schedule"

// ExclusionRule removes Stop from Route's sequence on days where Route has no
// timed visit at Trigger. Trigger defaults to Stop. Days limits the rule to
// some weekdays; an empty set means every day.
type ExclusionRule struct {
	Route   schedule.RouteID
	Stop    schedule.StopID
	Trigger schedule.StopID
	Days    schedule.WeekdaySet
}

func (r ExclusionRule) trigger() schedule.StopID {
	if r.Trigger == "" {
		return r.Stop
	}
	return r.Trigger
}

// AppliesOn reports whether the rule is evaluated on day.
func (r ExclusionRule) AppliesOn(day schedule.Weekday) bool {
	return r.Days.Empty() || r.Days.Has(day)
}

// ApplyExclusions evaluates rules against visits, which must already be
// filtered to day, and returns the visits that survive together with the
// number removed.
func ApplyExclusions(visits []schedule.StopVisit, day schedule.Weekday, rules []ExclusionRule) ([]schedule.StopVisit, int) {
	if len(rules) == 0 {
		return visits, 0
	}

	type routeStop struct {
		route schedule.RouteID
		stop  schedule.StopID
	}

	served := make(map[routeStop]bool)
	for _, v := range visits {
		if v.DepartTime.Valid() {
			served[routeStop{v.Route, v.Stop}] = true
		}
	}

	dropped := make(map[routeStop]bool)
	for _, r := range rules {
		if !r.AppliesOn(day) {
			continue
		}
		if !served[routeStop{r.Route, r.trigger()}] {
			dropped[routeStop{r.Route, r.Stop}] = true
		}
	}
	if len(dropped) == 0 {
		return visits, 0
	}

	kept := make([]schedule.StopVisit, 0, len(visits))
	for _, v := range visits {
		if dropped[routeStop{v.Route, v.Stop}] {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(visits) - len(kept)
}
