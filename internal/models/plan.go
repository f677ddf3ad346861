package models

import (
	"errors"

	"github.com/ia560/busplanner/internal/itinerary"
	"github.com/ia560/busplanner/internal/planner"
)

// PlanEntry is one itinerary.
type PlanEntry struct {
	Origin       string                  `json:"origin"`
	Destination  string                  `json:"destination"`
	Day          string                  `json:"day"`
	Departure    string                  `json:"departure"`
	Arrival      string                  `json:"arrival"`
	TotalMinutes int                     `json:"totalMinutes"`
	Transfers    int                     `json:"transfers"`
	Routes       []string                `json:"routes"`
	Headline     string                  `json:"headline"`
	Steps        []itinerary.DisplayStep `json:"steps"`
	Polyline     string                  `json:"polyline,omitempty"`
	SearchRuns   int                     `json:"searchRuns"`
}

// NewPlanEntry converts a planner result. day names the service day.
func NewPlanEntry(result *planner.PathResult, day string) PlanEntry {
	summary := itinerary.Summary(result)
	routes := make([]string, 0)
	for _, r := range result.Routes() {
		routes = append(routes, string(r))
	}
	return PlanEntry{
		Origin:       string(result.Origin),
		Destination:  string(result.Destination),
		Day:          day,
		Departure:    summary.Departure,
		Arrival:      summary.Arrival,
		TotalMinutes: summary.TotalMinutes,
		Transfers:    summary.Transfers,
		Routes:       routes,
		Headline:     itinerary.Headline(result),
		Steps:        itinerary.Format(result),
		SearchRuns:   result.SearchRuns,
	}
}

// LegError explains why one leg of a round trip has no itinerary.
type LegError struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

// RoundTripEntry holds both legs of a round trip. A leg that failed has a
// nil plan and an error.
type RoundTripEntry struct {
	Outbound      *PlanEntry `json:"outbound"`
	OutboundError *LegError  `json:"outboundError,omitempty"`
	Return        *PlanEntry `json:"return"`
	ReturnError   *LegError  `json:"returnError,omitempty"`
	TotalMinutes  int        `json:"totalMinutes"`
	Headline      string     `json:"headline"`
}

// NewRoundTripEntry converts a round trip result. legError maps a leg's
// error to its API form.
func NewRoundTripEntry(rt *planner.RoundTripResult, day string, legError func(error) *LegError) RoundTripEntry {
	entry := RoundTripEntry{
		TotalMinutes: rt.TotalMinutes(),
		Headline:     itinerary.RoundTripHeadline(rt),
	}
	if rt.Outbound != nil {
		out := NewPlanEntry(rt.Outbound, day)
		entry.Outbound = &out
	} else if rt.OutboundErr != nil {
		entry.OutboundError = legError(rt.OutboundErr)
	}
	if rt.Return != nil {
		back := NewPlanEntry(rt.Return, day)
		entry.Return = &back
	} else if rt.ReturnErr != nil {
		entry.ReturnError = legError(rt.ReturnErr)
	}
	return entry
}

// IsNoPath reports whether err means the stops are not connected.
func IsNoPath(err error) bool {
	return errors.Is(err, planner.ErrNoPath)
}
