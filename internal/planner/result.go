package planner

import (
	"strings"

	"github.com/ia560/busplanner/internal/schedule"
	"github.com/ia560/busplanner/internal/timegraph"
)

// PathNode is one vertex of an itinerary together with the edge that leaves
// it. The last node of a path has no outgoing edge and Final set.
type PathNode struct {
	Node       timegraph.TimeNode
	Town       string
	Route      schedule.RouteID
	Kind       timegraph.EdgeKind
	IsTransfer bool
	Final      bool
}

// PathResult is the winning itinerary of a query.
type PathResult struct {
	Origin      schedule.StopID
	Destination schedule.StopID
	Departure   schedule.TimeOfDay
	Arrival     schedule.TimeOfDay

	// TotalSeconds is the exact sum of edge weights; TotalMinutes truncates
	// it to whole minutes.
	TotalSeconds int64
	TotalMinutes int

	Edges []timegraph.Edge
	Nodes []PathNode

	// SearchRuns counts the Dijkstra runs spent producing the result.
	SearchRuns int
}

func newPathResult(g *timegraph.Graph, q Query, start timegraph.TimeNode, edges []timegraph.Edge, runs int) *PathResult {
	r := &PathResult{
		Origin:      q.Origin,
		Destination: q.Destination,
		Departure:   start.Time,
		Arrival:     start.Time,
		Edges:       edges,
		Nodes:       make([]PathNode, 0, len(edges)+1),
		SearchRuns:  runs,
	}

	for _, e := range edges {
		r.TotalSeconds += e.WeightSeconds
		r.Nodes = append(r.Nodes, PathNode{
			Node:       e.From,
			Town:       g.TownOf(e.From.Stop),
			Route:      e.Route,
			Kind:       e.Kind,
			IsTransfer: e.Kind == timegraph.Transfer,
		})
	}

	last := start
	if len(edges) > 0 {
		last = edges[len(edges)-1].To
	}
	r.Arrival = last.Time
	r.Nodes = append(r.Nodes, PathNode{
		Node:  last,
		Town:  g.TownOf(last.Stop),
		Final: true,
	})
	r.TotalMinutes = int(r.TotalSeconds / 60)

	return r
}

// Transfers counts the transfer edges on the path.
func (r *PathResult) Transfers() int {
	n := 0
	for _, e := range r.Edges {
		if e.Kind == timegraph.Transfer {
			n++
		}
	}
	return n
}

// Routes returns the distinct routes ridden, in boarding order.
func (r *PathResult) Routes() []schedule.RouteID {
	var routes []schedule.RouteID
	for _, e := range r.Edges {
		if e.Kind != timegraph.Travel {
			continue
		}
		if len(routes) == 0 || routes[len(routes)-1] != e.Route {
			routes = append(routes, e.Route)
		}
	}
	return routes
}

// Signature identifies an itinerary by its (stop, route, time) sequence.
func (r *PathResult) Signature() string {
	var b strings.Builder
	for i, n := range r.Nodes {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(string(n.Node.Stop))
		b.WriteByte('/')
		b.WriteString(string(n.Route))
		b.WriteByte('/')
		b.WriteString(n.Node.Time.Format24())
	}
	return b.String()
}
