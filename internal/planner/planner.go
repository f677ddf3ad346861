// Package planner answers earliest-arrival queries over a time-expanded
// graph.
//
// The default strategy runs one Dijkstra search per candidate departure at
// the origin, in time order, and scans the destination's nodes in time order;
// the first strictly smaller total wins, so ties go to the earliest departure
// and then the earliest arrival node. This costs one search per origin
// departure and is meant for regional networks of a few thousand nodes. The
// MultiSource strategy answers the same query with a single search from a
// virtual source tied to every candidate departure. Both run lvlath's
// Dijkstra over integer-second weights.
package planner

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
)

// Query is one earliest-arrival request. EarliestDepart is ignored unless
// TimeConstrained is set.
type Query struct {
	Origin          schedule.StopID
	Destination     schedule.StopID
	EarliestDepart  schedule.TimeOfDay
	TimeConstrained bool
}

// AnyTime builds an unconstrained query.
func AnyTime(origin, destination schedule.StopID) Query {
	return Query{Origin: origin, Destination: destination, EarliestDepart: schedule.NoTime}
}

// After builds a query that departs no earlier than t.
func After(origin, destination schedule.StopID, t schedule.TimeOfDay) Query {
	return Query{Origin: origin, Destination: destination, EarliestDepart: t, TimeConstrained: t.Valid()}
}

// Reverse swaps origin and destination and keeps the time constraint.
func (q Query) Reverse() Query {
	q.Origin, q.Destination = q.Destination, q.Origin
	return q
}

// Strategy selects how FindPath searches.
type Strategy int

const (
	// Exhaustive scans every origin departure against every destination node.
	Exhaustive Strategy = iota
	// MultiSource runs a single search seeded with every origin departure.
	MultiSource
)

func (s Strategy) String() string {
	switch s {
	case Exhaustive:
		return "exhaustive"
	case MultiSource:
		return "multi_source"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy maps a strategy name to its Strategy. The empty string is
// Exhaustive.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exhaustive":
		return Exhaustive, nil
	case "multi_source", "multisource", "multi-source":
		return MultiSource, nil
	default:
		return Exhaustive, fmt.Errorf("planner: unknown strategy %q", s)
	}
}

type options struct {
	strategy Strategy
	logger   *slog.Logger
}

// Option configures a query.
type Option func(*options)

// WithStrategy selects the search strategy. The default is Exhaustive.
func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithLogger makes the planner log each completed search at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func applyOptions(opts []Option) options {
	o := options{strategy: Exhaustive}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FindPath returns the fastest itinerary from q.Origin to q.Destination.
//
// The error is an *UnknownStopError when either stop has no node in g, and a
// *NotFoundError when both exist but no departure reaches the destination.
func FindPath(g *timegraph.Graph, q Query, opts ...Option) (*PathResult, error) {
	o := applyOptions(opts)

	origins, destinations, err := candidates(g, q)
	if err != nil {
		return nil, err
	}
	if len(origins) == 0 {
		return nil, notFound(q)
	}

	var result *PathResult
	switch o.strategy {
	case MultiSource:
		result, err = findMultiSource(g, q, origins, destinations)
	default:
		result, err = findExhaustive(g, q, origins, destinations)
	}

	if o.logger != nil {
		attrs := []any{
			slog.String("origin", string(q.Origin)),
			slog.String("destination", string(q.Destination)),
			slog.String("strategy", o.strategy.String()),
			slog.Int("origin_candidates", len(origins)),
			slog.Int("destination_candidates", len(destinations)),
		}
		if err != nil {
			o.logger.Debug("path_not_found", append(attrs, slog.String("error", err.Error()))...)
		} else {
			o.logger.Debug("path_found", append(attrs,
				slog.Int("total_minutes", result.TotalMinutes),
				slog.Int("search_runs", result.SearchRuns))...)
		}
	}

	return result, err
}

// candidates returns the origin nodes that satisfy the departure constraint
// and all destination nodes, both in time order.
func candidates(g *timegraph.Graph, q Query) ([]timegraph.TimeNode, []timegraph.TimeNode, error) {
	if g == nil {
		return nil, nil, ErrNilGraph
	}
	if !g.HasStop(q.Origin) {
		return nil, nil, &UnknownStopError{Stop: q.Origin, Day: g.Day()}
	}
	if !g.HasStop(q.Destination) {
		return nil, nil, &UnknownStopError{Stop: q.Destination, Day: g.Day()}
	}

	var origins []timegraph.TimeNode
	for _, n := range g.NodesAt(q.Origin) {
		if q.TimeConstrained && n.Time < q.EarliestDepart {
			continue
		}
		origins = append(origins, n)
	}
	return origins, g.NodesAt(q.Destination), nil
}

func findExhaustive(g *timegraph.Graph, q Query, origins, destinations []timegraph.TimeNode) (*PathResult, error) {
	var (
		best       int64 = math.MaxInt64
		bestSearch *search
		bestOrigin timegraph.TimeNode
		bestDest   timegraph.TimeNode
	)

	for _, origin := range origins {
		s, err := searchFrom(g, origin)
		if err != nil {
			return nil, err
		}
		if dest, d, ok := s.closest(destinations); ok && d < best {
			best = d
			bestSearch = s
			bestOrigin = origin
			bestDest = dest
		}
	}

	if bestSearch == nil {
		return nil, notFound(q)
	}

	edges, start, err := bestSearch.pathTo(bestDest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notFound(q), err)
	}
	if start != bestOrigin {
		return nil, fmt.Errorf("%w: path from %s starts at %s", notFound(q), bestOrigin, start)
	}
	return newPathResult(g, q, start, edges, len(origins)), nil
}

func findMultiSource(g *timegraph.Graph, q Query, origins, destinations []timegraph.TimeNode) (*PathResult, error) {
	s, err := searchFromAll(g, origins)
	if err != nil {
		return nil, err
	}

	dest, _, ok := s.closest(destinations)
	if !ok {
		return nil, notFound(q)
	}

	edges, start, err := s.pathTo(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", notFound(q), err)
	}
	return newPathResult(g, q, start, edges, 1), nil
}
