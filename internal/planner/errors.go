package planner

import (
	"errors"
	"fmt"

	"github.com/ia560/busplanner/internal/schedule"
)

var (
	// ErrNilGraph is returned when a query is run without a graph.
	ErrNilGraph = errors.New("planner: graph is nil")
	// ErrUnknownStop means the stop has no departures in the graph's day.
	ErrUnknownStop = errors.New("planner: stop not served on this day")
	// ErrNoPath means both stops are served but nothing connects them.
	ErrNoPath = errors.New("planner: no path found")
)

// UnknownStopError reports a stop missing from the graph.
type UnknownStopError struct {
	Stop schedule.StopID
	Day  schedule.Weekday
}

func (e *UnknownStopError) Error() string {
	return fmt.Sprintf("planner: stop %q has no service on %s", e.Stop, e.Day)
}

func (e *UnknownStopError) Unwrap() error { return ErrUnknownStop }

// NotFoundError carries the attempted query of an unsuccessful search.
type NotFoundError struct {
	Origin          schedule.StopID
	Destination     schedule.StopID
	EarliestDepart  schedule.TimeOfDay
	TimeConstrained bool
}

func (e *NotFoundError) Error() string {
	if e.TimeConstrained {
		return fmt.Sprintf("planner: no path found between %s and %s after %s",
			e.Origin, e.Destination, e.EarliestDepart.Format24())
	}
	return fmt.Sprintf("planner: no path found between %s and %s", e.Origin, e.Destination)
}

func (e *NotFoundError) Unwrap() error { return ErrNoPath }

func notFound(q Query) error {
	return &NotFoundError{
		Origin:          q.Origin,
		Destination:     q.Destination,
		EarliestDepart:  q.EarliestDepart,
		TimeConstrained: q.TimeConstrained,
	}
}
