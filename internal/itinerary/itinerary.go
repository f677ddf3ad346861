// Package itinerary shapes planner results into the step lists shown to
// riders.
package itinerary

import (
	"fmt"
	"io"

	"github.com/ia560/busplanner/internal/planner"
	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
)

// NoRoute is the route shown on the final step of an itinerary.
const NoRoute = "-"

// DisplayStep is one line of an itinerary.
type DisplayStep struct {
	Stop       schedule.StopID    `json:"stop"`
	Town       string             `json:"town"`
	Route      string             `json:"route"`
	ClockTime  string             `json:"clockTime"`
	Time       schedule.TimeOfDay `json:"-"`
	IsTransfer bool               `json:"isTransfer"`
}

// Format converts a path into display steps, one per node.
//
// A step is flagged as a transfer when the rider waits at the stop, or when
// its route differs from the route of the previous step. The final step
// carries route "-" and is never a transfer. A nil result yields no steps.
func Format(result *planner.PathResult) []DisplayStep {
	if result == nil {
		return nil
	}

	steps := make([]DisplayStep, 0, len(result.Nodes))
	prevRoute := ""
	for i, n := range result.Nodes {
		step := DisplayStep{
			Stop:      n.Node.Stop,
			Town:      n.Town,
			ClockTime: n.Node.Time.Format12(),
			Time:      n.Node.Time,
		}

		if n.Final {
			step.Route = NoRoute
		} else {
			step.Route = string(n.Route)
			step.IsTransfer = n.Kind == timegraph.Transfer || (i > 0 && step.Route != prevRoute)
			prevRoute = step.Route
		}

		steps = append(steps, step)
	}
	return steps
}

// TripSummary condenses a result for headlines.
type TripSummary struct {
	TotalMinutes int    `json:"totalMinutes"`
	Transfers    int    `json:"transfers"`
	Departure    string `json:"departure"`
	Arrival      string `json:"arrival"`
}

// Summary reports the duration, end times and number of changes of vehicle
// of result.
func Summary(result *planner.PathResult) TripSummary {
	if result == nil {
		return TripSummary{}
	}

	boardings := 0
	for i, e := range result.Edges {
		if e.Kind != timegraph.Travel {
			continue
		}
		if i == 0 || result.Edges[i-1].Kind != timegraph.Travel || result.Edges[i-1].Route != e.Route {
			boardings++
		}
	}
	return TripSummary{
		TotalMinutes: result.TotalMinutes,
		Transfers:    max(boardings-1, 0),
		Departure:    result.Departure.Format12(),
		Arrival:      result.Arrival.Format12(),
	}
}

// Direction picks the arrow printed in front of each step.
type Direction int

const (
	Outbound Direction = iota
	Return
)

func (d Direction) arrow() string {
	if d == Return {
		return "⬅️"
	}
	return "➡️"
}

// Render writes one line per step.
func Render(w io.Writer, steps []DisplayStep, dir Direction) error {
	for _, s := range steps {
		if _, err := fmt.Fprintf(w, "%s %s via Route %s at %s\n", dir.arrow(), s.Stop, s.Route, s.ClockTime); err != nil {
			return err
		}
	}
	return nil
}

// Headline renders the one-line trip summary.
func Headline(result *planner.PathResult) string {
	s := Summary(result)
	switch s.Transfers {
	case 0:
		return fmt.Sprintf("Shortest one-way trip takes %d minutes", s.TotalMinutes)
	case 1:
		return fmt.Sprintf("Shortest one-way trip takes %d minutes with 1 transfer", s.TotalMinutes)
	default:
		return fmt.Sprintf("Shortest one-way trip takes %d minutes with %d transfers", s.TotalMinutes, s.Transfers)
	}
}

// RoundTripHeadline renders the summary line of a round trip.
func RoundTripHeadline(rt *planner.RoundTripResult) string {
	out, back := 0, 0
	if rt.Outbound != nil {
		out = rt.Outbound.TotalMinutes
	}
	if rt.Return != nil {
		back = rt.Return.TotalMinutes
	}
	return fmt.Sprintf("Round-trip: %d mins out, %d mins back", out, back)
}
