package navgraph

import (
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// FindPath runs a blocking A* over the streamed part of g using gonum. It is
// the reference the sliced Search is checked against and what the simulator
// uses for offline path queries.
func FindPath(g *Graph, start, goal VertexRef, cost CostFunc) ([]VertexRef, float64, bool) {
	if cost == nil {
		cost = EuclideanCost
	}
	if !g.IsVertexStreamed(start) || !g.IsVertexStreamed(goal) {
		return nil, 0, false
	}
	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for ref := VertexRef(1); int(ref) <= g.VertexCount(); ref++ {
		if g.IsVertexStreamed(ref) {
			wg.AddNode(simple.Node(ref))
		}
	}
	for ref := VertexRef(1); int(ref) <= g.VertexCount(); ref++ {
		if !g.IsVertexStreamed(ref) {
			continue
		}
		for _, e := range g.Edges(ref) {
			if !g.IsVertexStreamed(e.To) {
				continue
			}
			c, ok := cost(e, g.Vertex(e.From), g.Vertex(e.To))
			if !ok {
				continue
			}
			// Parallel edges keep the cheapest.
			if old, exists := wg.Weight(int64(e.From), int64(e.To)); exists && old <= float64(c) {
				continue
			}
			wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), float64(c)))
		}
	}

	goalPos := g.Vertex(goal).Pos
	h := func(x, _ graph.Node) float64 {
		return float64(g.Vertex(VertexRef(x.ID())).Pos.Sub(goalPos).Len() * H_SCALE)
	}
	shortest, _ := path.AStar(simple.Node(start), simple.Node(goal), wg, h)
	nodes, weight := shortest.To(int64(goal))
	if len(nodes) == 0 {
		return nil, 0, false
	}
	res := make([]VertexRef, len(nodes))
	for i, n := range nodes {
		res[i] = VertexRef(n.ID())
	}
	return res, weight, true
}
