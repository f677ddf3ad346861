// Package timegraph builds the time-expanded graph used by the route planner.
//
// A vertex is a TimeNode, "being at a stop at a time". Travel edges link
// consecutive visits of one route; transfer edges link consecutive departures
// at one stop and model waiting for the next vehicle of any route. Edge
// weights are whole seconds and are never negative: a time that reads earlier
// than its predecessor is taken to be past midnight.
//
// The vertices and weighted arcs live in an lvlath core.Graph keyed by
// TimeNode.ID; kind, route and town ride alongside in side tables. A Graph
// is built for one operating day and never mutated after Build returns, so
// it is safe to share between goroutines.
package timegraph

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/katalvlaran/lvlath/core"

	"github.com/ia560/busplanner/internal/schedule"
)

// TimeNode is the vertex "at Stop at Time".
type TimeNode struct {
	Stop schedule.StopID
	Time schedule.TimeOfDay
}

func (n TimeNode) String() string {
	return fmt.Sprintf("%s@%s", n.Stop, n.Time.Format24())
}

// ID is the vertex ID of n in the backing graph: the stop name, "@", then
// the time in seconds. Everything after the last "@" is the time, so two
// distinct nodes never share an ID.
func (n TimeNode) ID() string {
	return string(n.Stop) + "@" + strconv.Itoa(int(n.Time))
}

// EdgeKind distinguishes riding a vehicle from waiting at a stop.
type EdgeKind int

const (
	Travel EdgeKind = iota
	Transfer
)

func (k EdgeKind) String() string {
	switch k {
	case Travel:
		return "travel"
	case Transfer:
		return "transfer"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// TransferRoute is the route label carried by transfer edges.
const TransferRoute schedule.RouteID = "Transfer"

// Edge is a directed, weighted connection between two TimeNodes.
type Edge struct {
	From          TimeNode
	To            TimeNode
	WeightSeconds int64
	Kind          EdgeKind
	Route         schedule.RouteID
	Town          string
}

// Minutes is the weight in fractional minutes.
func (e Edge) Minutes() float64 {
	return float64(e.WeightSeconds) / 60
}

type edgeKey struct {
	from, to TimeNode
}

// Stats summarises the size of a Graph.
type Stats struct {
	Stops         int
	Nodes         int
	Edges         int
	TravelEdges   int
	TransferEdges int
}

// Graph is an immutable time-expanded graph for a single operating day.
type Graph struct {
	day  schedule.Weekday
	core *core.Graph

	nodes     map[string]TimeNode            // vertex ID -> node
	stopNodes map[schedule.StopID][]TimeNode // sorted by time once built
	towns     map[schedule.StopID]string

	edges   map[string]Edge    // lvlath edge ID -> metadata
	edgeIDs map[edgeKey]string // endpoints -> lvlath edge ID
	order   []edgeKey          // creation order
}

func newGraph(day schedule.Weekday) *Graph {
	return &Graph{
		day:       day,
		core:      core.NewGraph(core.WithDirected(true), core.WithWeighted()),
		nodes:     make(map[string]TimeNode),
		stopNodes: make(map[schedule.StopID][]TimeNode),
		towns:     make(map[schedule.StopID]string),
		edges:     make(map[string]Edge),
		edgeIDs:   make(map[edgeKey]string),
	}
}

// addVisit registers the TimeNode of v. Visits sharing stop and time collapse.
func (g *Graph) addVisit(v schedule.StopVisit) (TimeNode, error) {
	n := TimeNode{Stop: v.Stop, Time: v.DepartTime}
	if _, ok := g.towns[v.Stop]; !ok {
		g.towns[v.Stop] = v.Town
	}
	id := n.ID()
	if _, ok := g.nodes[id]; ok {
		return n, nil
	}
	if err := g.core.AddVertex(id); err != nil {
		return n, fmt.Errorf("timegraph: add vertex %s: %w", id, err)
	}
	g.nodes[id] = n
	g.stopNodes[v.Stop] = append(g.stopNodes[v.Stop], n)
	return n, nil
}

// setEdge stores e; a second edge for the same (from, to) pair replaces the
// first and keeps its place in creation order.
func (g *Graph) setEdge(e Edge) error {
	key := edgeKey{from: e.From, to: e.To}
	old, replacing := g.edgeIDs[key]
	if replacing {
		if err := g.core.RemoveEdge(old); err != nil {
			return fmt.Errorf("timegraph: replace edge %s -> %s: %w", e.From, e.To, err)
		}
		delete(g.edges, old)
		delete(g.edgeIDs, key)
	}

	id, err := g.core.AddEdge(e.From.ID(), e.To.ID(), e.WeightSeconds)
	if err != nil {
		return fmt.Errorf("timegraph: add edge %s -> %s: %w", e.From, e.To, err)
	}
	g.edges[id] = e
	g.edgeIDs[key] = id
	if !replacing {
		g.order = append(g.order, key)
	}
	return nil
}

func (g *Graph) sortStopNodes() {
	for stop := range g.stopNodes {
		nodes := g.stopNodes[stop]
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Time < nodes[j].Time })
	}
}

// Day returns the operating day the graph was built for.
func (g *Graph) Day() schedule.Weekday {
	return g.day
}

// HasStop reports whether at least one TimeNode sits at stop.
func (g *Graph) HasStop(stop schedule.StopID) bool {
	return len(g.stopNodes[stop]) > 0
}

// HasNode reports whether n is a vertex of the graph.
func (g *Graph) HasNode(n TimeNode) bool {
	_, ok := g.nodes[n.ID()]
	return ok
}

// NodeByID resolves a vertex ID of the backing graph.
func (g *Graph) NodeByID(id string) (TimeNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Core exposes the backing lvlath graph. Callers must not mutate it; Clone
// it first when a search needs extra vertices.
func (g *Graph) Core() *core.Graph {
	return g.core
}

// NodesAt returns the TimeNodes at stop in ascending time order.
func (g *Graph) NodesAt(stop schedule.StopID) []TimeNode {
	nodes := g.stopNodes[stop]
	out := make([]TimeNode, len(nodes))
	copy(out, nodes)
	return out
}

// TownOf returns the town recorded for stop.
func (g *Graph) TownOf(stop schedule.StopID) string {
	return g.towns[stop]
}

// Stops returns every stop served on the graph's day, sorted by name.
func (g *Graph) Stops() []schedule.StopID {
	stops := make([]schedule.StopID, 0, len(g.stopNodes))
	for s := range g.stopNodes {
		stops = append(stops, s)
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i] < stops[j] })
	return stops
}

// Nodes returns all vertices ordered by stop, then time.
func (g *Graph) Nodes() []TimeNode {
	nodes := make([]TimeNode, 0, len(g.nodes))
	for _, s := range g.Stops() {
		nodes = append(nodes, g.stopNodes[s]...)
	}
	return nodes
}

// Edges returns all edges in creation order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.order))
	for _, key := range g.order {
		if id, ok := g.edgeIDs[key]; ok {
			out = append(out, g.edges[id])
		}
	}
	return out
}

// Outgoing returns the edges leaving n in the backing graph's neighbour
// order, which is stable for a given build.
func (g *Graph) Outgoing(n TimeNode) []Edge {
	arcs, err := g.core.Neighbors(n.ID())
	if err != nil {
		return nil
	}
	out := make([]Edge, 0, len(arcs))
	for _, arc := range arcs {
		if e, ok := g.edges[arc.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// EdgeBetween returns the edge from -> to if it exists.
func (g *Graph) EdgeBetween(from, to TimeNode) (Edge, bool) {
	id, ok := g.edgeIDs[edgeKey{from: from, to: to}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[id], true
}

// EdgeByIDs returns the edge between two vertex IDs of the backing graph.
func (g *Graph) EdgeByIDs(from, to string) (Edge, bool) {
	f, ok := g.nodes[from]
	if !ok {
		return Edge{}, false
	}
	t, ok := g.nodes[to]
	if !ok {
		return Edge{}, false
	}
	return g.EdgeBetween(f, t)
}

// Stats counts stops, nodes and edges by kind.
func (g *Graph) Stats() Stats {
	s := Stats{
		Stops: len(g.stopNodes),
		Nodes: g.core.VertexCount(),
		Edges: g.core.EdgeCount(),
	}
	for _, e := range g.edges {
		if e.Kind == Transfer {
			s.TransferEdges++
		} else {
			s.TravelEdges++
		}
	}
	return s
}
