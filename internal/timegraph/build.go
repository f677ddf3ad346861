package timegraph

import (
	"log/slog"
	"sort"

	"github.com/ia560/busplanner/internal/schedule"
)

type buildConfig struct {
	rules  []ExclusionRule
	logger *slog.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithExclusionRules applies per-route stop exclusions before edges are built.
func WithExclusionRules(rules ...ExclusionRule) BuildOption {
	return func(c *buildConfig) { c.rules = append(c.rules, rules...) }
}

// WithLogger makes Build report what it dropped and what it produced.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) { c.logger = logger }
}

// Build turns the visits that operate on day into a time-expanded graph.
//
// Visits for other days and visits without a usable time are skipped, so the
// caller may pass either the whole schedule or an already filtered slice.
// An empty input yields an empty graph. When two edges connect the same pair
// of nodes the later one wins; transfer edges are created after travel edges.
func Build(visits []schedule.StopVisit, day schedule.Weekday, opts ...BuildOption) *Graph {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	dayVisits, malformed := schedule.FilterForDay(visits, day)
	dayVisits, excluded := ApplyExclusions(dayVisits, day, cfg.rules)

	g := newGraph(day)
	var rejected []error
	for _, v := range dayVisits {
		if _, err := g.addVisit(v); err != nil {
			rejected = append(rejected, err)
		}
	}
	g.sortStopNodes()

	rejected = append(rejected, addTravelEdges(g, dayVisits)...)
	rejected = append(rejected, addTransferEdges(g)...)

	if cfg.logger != nil && len(rejected) > 0 {
		cfg.logger.Warn("time_expanded_graph_rejected_elements",
			slog.String("day", day.String()),
			slog.Int("count", len(rejected)),
			slog.String("first_error", rejected[0].Error()))
	}

	if cfg.logger != nil {
		stats := g.Stats()
		cfg.logger.Debug("time_expanded_graph_built",
			slog.String("day", day.String()),
			slog.Int("visits", len(dayVisits)),
			slog.Int("malformed_visits", malformed),
			slog.Int("excluded_visits", excluded),
			slog.Int("nodes", stats.Nodes),
			slog.Int("travel_edges", stats.TravelEdges),
			slog.Int("transfer_edges", stats.TransferEdges))
	}

	return g
}

// addTravelEdges links each visit of a route to the next visit of the same
// route in time order.
func addTravelEdges(g *Graph, visits []schedule.StopVisit) []error {
	var errs []error
	byRoute := make(map[schedule.RouteID][]schedule.StopVisit)
	for _, v := range visits {
		byRoute[v.Route] = append(byRoute[v.Route], v)
	}

	routes := make([]schedule.RouteID, 0, len(byRoute))
	for r := range byRoute {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i] < routes[j] })

	for _, route := range routes {
		seq := byRoute[route]
		sort.SliceStable(seq, func(i, j int) bool { return seq[i].DepartTime < seq[j].DepartTime })

		for i := 0; i+1 < len(seq); i++ {
			a, b := seq[i], seq[i+1]
			from := TimeNode{Stop: a.Stop, Time: a.DepartTime}
			to := TimeNode{Stop: b.Stop, Time: b.DepartTime}
			if from == to {
				continue
			}
			err := g.setEdge(Edge{
				From:          from,
				To:            to,
				WeightSeconds: schedule.ElapsedSeconds(a.DepartTime, b.DepartTime),
				Kind:          Travel,
				Route:         route,
				Town:          a.Town,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// addTransferEdges links consecutive departures at every stop. A wait that
// comes out as zero seconds produces no edge.
func addTransferEdges(g *Graph) []error {
	var errs []error
	for _, stop := range g.Stops() {
		nodes := g.stopNodes[stop]
		town := g.towns[stop]
		for i := 0; i+1 < len(nodes); i++ {
			wait := schedule.ElapsedSeconds(nodes[i].Time, nodes[i+1].Time)
			if wait <= 0 {
				continue
			}
			err := g.setEdge(Edge{
				From:          nodes[i],
				To:            nodes[i+1],
				WeightSeconds: wait,
				Kind:          Transfer,
				Route:         TransferRoute,
				Town:          town,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}
