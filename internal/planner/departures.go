package planner

import (
	"errors"
	"log/slog"

	"github.com/ia560/busplanner/internal/timegraph"
)

// FindAllDepartures answers q once for every distinct departure time at the
// origin, in ascending order, and returns every distinct itinerary found.
//
// Each run is pinned to its departure: the search starts at that node only,
// and any initial wait at the origin is trimmed so that the itinerary starts
// where the rider boards. Itineraries whose (stop, route, time) sequence
// matches an earlier one are dropped. A positive limit caps the number of
// departure times tried. Departures with no path are skipped; when none
// succeeds the error is a *NotFoundError. Every run is pinned to a single
// departure, so both strategies reduce to a single-source search.
func FindAllDepartures(g *timegraph.Graph, q Query, limit int, opts ...Option) ([]*PathResult, error) {
	o := applyOptions(opts)

	origins, destinations, err := candidates(g, q)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(origins) > limit {
		origins = origins[:limit]
	}

	var (
		results []*PathResult
		seen    = make(map[string]bool)
		runs    int
	)
	for _, origin := range origins {
		s, err := searchFrom(g, origin)
		if err != nil {
			return nil, err
		}
		runs++

		dest, _, ok := s.closest(destinations)
		if !ok {
			continue
		}

		edges, start, err := s.pathTo(dest)
		if err != nil {
			continue
		}
		edges, start = trimLeadingWait(edges, start)

		r := newPathResult(g, q, start, edges, 1)
		sig := r.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		results = append(results, r)
	}

	if o.logger != nil {
		o.logger.Debug("departures_searched",
			slog.String("origin", string(q.Origin)),
			slog.String("destination", string(q.Destination)),
			slog.String("strategy", o.strategy.String()),
			slog.Int("departures_tried", len(origins)),
			slog.Int("itineraries", len(results)),
			slog.Int("search_runs", runs))
	}

	if len(results) == 0 {
		return nil, notFound(q)
	}
	return results, nil
}

// CountDepartures returns how many departure times at the origin satisfy q,
// which is the number of runs FindAllDepartures makes without a limit.
func CountDepartures(g *timegraph.Graph, q Query) (int, error) {
	origins, _, err := candidates(g, q)
	if err != nil {
		return 0, err
	}
	return len(origins), nil
}

// trimLeadingWait drops transfer edges at the start of a path.
func trimLeadingWait(edges []timegraph.Edge, start timegraph.TimeNode) ([]timegraph.Edge, timegraph.TimeNode) {
	for len(edges) > 0 && edges[0].Kind == timegraph.Transfer {
		start = edges[0].To
		edges = edges[1:]
	}
	return edges, start
}

// RoundTripResult holds the two independent legs of a round trip. Either
// leg may fail on its own.
type RoundTripResult struct {
	Outbound    *PathResult
	OutboundErr error
	Return      *PathResult
	ReturnErr   error
}

// Err joins the errors of both legs.
func (r *RoundTripResult) Err() error {
	return errors.Join(r.OutboundErr, r.ReturnErr)
}

// TotalMinutes sums both legs; a failed leg counts as zero.
func (r *RoundTripResult) TotalMinutes() int {
	total := 0
	if r.Outbound != nil {
		total += r.Outbound.TotalMinutes
	}
	if r.Return != nil {
		total += r.Return.TotalMinutes
	}
	return total
}

// RoundTrip runs outbound and ret as two unrelated one-way queries. No
// layover between the legs is enforced.
func RoundTrip(g *timegraph.Graph, outbound, ret Query, opts ...Option) *RoundTripResult {
	r := &RoundTripResult{}
	r.Outbound, r.OutboundErr = FindPath(g, outbound, opts...)
	r.Return, r.ReturnErr = FindPath(g, ret, opts...)
	return r
}
