package planner

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"

	"github.com/ia560/busplanner/internal/timegraph"
)

// sourceID is the virtual vertex of a multi-source search. TimeNode IDs
// always carry an "@", so it cannot collide with a real stop.
const sourceID = "origins"

// search is the outcome of one lvlath Dijkstra run over a time-expanded
// graph: distances in seconds and the predecessor of every reached vertex.
type search struct {
	g    *timegraph.Graph
	dist map[string]int64
	prev map[string]string
}

// searchFrom runs Dijkstra from a single origin node.
func searchFrom(g *timegraph.Graph, origin timegraph.TimeNode) (*search, error) {
	return runDijkstra(g, g.Core(), origin.ID())
}

// searchFromAll runs one Dijkstra from a virtual source joined to every
// origin by a zero-second arc. The arcs are added to a clone so g stays
// untouched.
func searchFromAll(g *timegraph.Graph, origins []timegraph.TimeNode) (*search, error) {
	seeded := g.Core().Clone()
	if err := seeded.AddVertex(sourceID); err != nil {
		return nil, fmt.Errorf("planner: add virtual source: %w", err)
	}
	for _, origin := range origins {
		if _, err := seeded.AddEdge(sourceID, origin.ID(), 0); err != nil {
			return nil, fmt.Errorf("planner: seed origin %s: %w", origin, err)
		}
	}
	return runDijkstra(g, seeded, sourceID)
}

func runDijkstra(g *timegraph.Graph, backing *core.Graph, source string) (*search, error) {
	dist, prev, err := dijkstra.Dijkstra(backing, dijkstra.Source(source), dijkstra.WithReturnPath())
	if err != nil {
		return nil, fmt.Errorf("planner: search from %s: %w", source, err)
	}
	return &search{g: g, dist: dist, prev: prev}, nil
}

// distance returns the shortest distance to n in seconds, if n was reached.
func (s *search) distance(n timegraph.TimeNode) (int64, bool) {
	d, ok := s.dist[n.ID()]
	if !ok || d == math.MaxInt64 {
		return 0, false
	}
	return d, true
}

// closest returns the first destination, in the given order, with the
// smallest distance. Later nodes must be strictly closer to displace it.
func (s *search) closest(destinations []timegraph.TimeNode) (timegraph.TimeNode, int64, bool) {
	var (
		best  timegraph.TimeNode
		bestD int64 = math.MaxInt64
		found bool
	)
	for _, dest := range destinations {
		if d, ok := s.distance(dest); ok && d < bestD {
			best, bestD, found = dest, d, true
		}
	}
	return best, bestD, found
}

// pathTo walks predecessors back from target and returns the edges in travel
// order together with the node the path starts at. The walk stops at the
// search source, real or virtual. A predecessor chain that revisits a vertex
// is reported as an error.
func (s *search) pathTo(target timegraph.TimeNode) ([]timegraph.Edge, timegraph.TimeNode, error) {
	if _, ok := s.distance(target); !ok {
		return nil, timegraph.TimeNode{}, fmt.Errorf("%w: %s not reached", ErrNoPath, target)
	}

	var rev []timegraph.Edge
	cur := target.ID()
	seen := map[string]bool{cur: true}
	for {
		from := s.prev[cur]
		if from == "" || from == sourceID {
			break
		}
		if seen[from] {
			return nil, timegraph.TimeNode{}, fmt.Errorf("%w: predecessor loop at %s", ErrNoPath, from)
		}
		seen[from] = true

		e, ok := s.g.EdgeByIDs(from, cur)
		if !ok {
			return nil, timegraph.TimeNode{}, fmt.Errorf("%w: no edge %s -> %s", ErrNoPath, from, cur)
		}
		rev = append(rev, e)
		cur = from
	}

	start, _ := s.g.NodeByID(cur)
	edges := make([]timegraph.Edge, len(rev))
	for i, e := range rev {
		edges[len(rev)-1-i] = e
	}
	return edges, start, nil
}
