package pathfinder

import (
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/pathobject"
)

// PathNode is one point of a path. Nodes off the graph, like the agent start
// position and the destination, carry NULL_VERTEX.
type PathNode struct {
	Pos          common.Vec3
	Vertex       navgraph.VertexRef
	GUID         uint64
	Cell         navgraph.CellID
	CellRevision uint32        ///< Revision of Cell when the path was built.
	PathObject   pathobject.ID ///< Path object gating the edge to the next node.
}

func (n *PathNode) OnGraph() bool { return n.Vertex != navgraph.NULL_VERTEX }

// Path is the coarse route followed by a PathFinder.
type Path struct {
	Nodes       []PathNode
	Destination common.Vec3
	Injected    bool
}

func (p *Path) Len() int { return len(p.Nodes) }

func (p *Path) Empty() bool { return len(p.Nodes) == 0 }

func (p *Path) Clear() {
	p.Nodes = p.Nodes[:0]
	p.Injected = false
}

// Length is the polyline length of the path from node i on.
func (p *Path) Length(i int) float32 {
	var l float32
	for j := max(i, 0) + 1; j < len(p.Nodes); j++ {
		l += common.Vdist2D(p.Nodes[j-1].Pos, p.Nodes[j].Pos)
	}
	return l
}

func nodeOf(g *navgraph.Graph, ref navgraph.VertexRef) PathNode {
	v := g.Vertex(ref)
	return PathNode{
		Pos:          v.Pos,
		Vertex:       ref,
		GUID:         v.GUID,
		Cell:         v.Cell,
		CellRevision: g.CellRevision(v.Cell),
	}
}

// buildPath turns a vertex route into a path running from start to dest.
func buildPath(g *navgraph.Graph, start common.Vec3, refs []navgraph.VertexRef, dest common.Vec3, out *Path) {
	out.Clear()
	out.Destination = dest
	out.Nodes = append(out.Nodes, PathNode{Pos: start})
	for i, ref := range refs {
		n := nodeOf(g, ref)
		if i+1 < len(refs) {
			if e, ok := g.FindEdge(ref, refs[i+1]); ok {
				n.PathObject = e.PathObject
			}
		}
		out.Nodes = append(out.Nodes, n)
	}
	if common.Vdist2DSqr(out.Nodes[len(out.Nodes)-1].Pos, dest) > 1e-6 {
		out.Nodes = append(out.Nodes, PathNode{Pos: dest})
	}
}

// unstreamedCell returns the first graph cell used by the path that was
// unstreamed or restreamed since the path was built.
func (p *Path) unstreamedCell(g *navgraph.Graph) (navgraph.CellID, bool) {
	for i := range p.Nodes {
		n := &p.Nodes[i]
		if !n.OnGraph() {
			continue
		}
		if !g.IsCellStreamed(n.Cell) || g.CellRevision(n.Cell) != n.CellRevision {
			return n.Cell, true
		}
	}
	return 0, false
}
