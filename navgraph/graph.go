// Package navgraph is the coarse navigation graph path finders plan on, with
// its streamed cells and a time-sliced A* search.
package navgraph

import (
	"sort"
	"sync"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathobject"
)

type VertexRef uint32

const NULL_VERTEX VertexRef = 0

type CellID uint32

type Vertex struct {
	Ref     VertexRef
	GUID    uint64 ///< Stable id: cell in the high word, index inside the cell in the low word.
	Pos     common.Vec3
	Cell    CellID
	Terrain navmesh.TerrainType
}

type Edge struct {
	From, To   VertexRef
	PathObject pathobject.ID ///< Path object gating the edge, NONE for plain edges.
}

type Cell struct {
	ID       CellID
	Streamed bool
	Revision uint32 ///< Bumped on every stream change.
	count    uint32
}

// Graph vertices and edges are immutable once built. Cells are streamed in and
// out by the data manager while agents read the graph, hence the lock.
type Graph struct {
	vertices []Vertex // index 0 is the null vertex
	adj      [][]Edge

	mu    sync.RWMutex
	cells map[CellID]*Cell
}

func NewGraph() *Graph {
	return &Graph{
		vertices: make([]Vertex, 1),
		adj:      make([][]Edge, 1),
		cells:    make(map[CellID]*Cell),
	}
}

// AddVertex adds a vertex in cell. New cells start streamed.
func (g *Graph) AddVertex(pos common.Vec3, cell CellID, terrain navmesh.TerrainType) VertexRef {
	g.mu.Lock()
	c, ok := g.cells[cell]
	if !ok {
		c = &Cell{ID: cell, Streamed: true}
		g.cells[cell] = c
	}
	c.count++
	guid := uint64(cell)<<32 | uint64(c.count)
	g.mu.Unlock()

	ref := VertexRef(len(g.vertices))
	g.vertices = append(g.vertices, Vertex{Ref: ref, GUID: guid, Pos: pos, Cell: cell, Terrain: terrain})
	g.adj = append(g.adj, nil)
	return ref
}

func (g *Graph) AddEdge(from, to VertexRef, po pathobject.ID) {
	common.AssertTrue(g.IsValidRef(from) && g.IsValidRef(to), "edge %d->%d", from, to)
	common.AssertTrue(from != to, "self edge on %d", from)
	g.adj[from] = append(g.adj[from], Edge{From: from, To: to, PathObject: po})
}

// Connect adds the edge in both directions.
func (g *Graph) Connect(a, b VertexRef, po pathobject.ID) {
	g.AddEdge(a, b, po)
	g.AddEdge(b, a, po)
}

func (g *Graph) IsValidRef(ref VertexRef) bool {
	return ref != NULL_VERTEX && int(ref) < len(g.vertices)
}

func (g *Graph) VertexCount() int { return len(g.vertices) - 1 }

func (g *Graph) Vertex(ref VertexRef) *Vertex {
	if !g.IsValidRef(ref) {
		return nil
	}
	return &g.vertices[ref]
}

func (g *Graph) Edges(ref VertexRef) []Edge {
	if !g.IsValidRef(ref) {
		return nil
	}
	return g.adj[ref]
}

func (g *Graph) FindEdge(from, to VertexRef) (Edge, bool) {
	for _, e := range g.Edges(from) {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

func (g *Graph) VertexByGUID(guid uint64) VertexRef {
	for i := 1; i < len(g.vertices); i++ {
		if g.vertices[i].GUID == guid {
			return VertexRef(i)
		}
	}
	return NULL_VERTEX
}

func (g *Graph) setStreamed(cell CellID, streamed bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.cells[cell]
	if !ok || c.Streamed == streamed {
		return false
	}
	c.Streamed = streamed
	c.Revision++
	return true
}

func (g *Graph) StreamCell(cell CellID) bool   { return g.setStreamed(cell, true) }
func (g *Graph) UnstreamCell(cell CellID) bool { return g.setStreamed(cell, false) }

func (g *Graph) IsCellStreamed(cell CellID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.cells[cell]
	return ok && c.Streamed
}

func (g *Graph) CellRevision(cell CellID) uint32 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if c, ok := g.cells[cell]; ok {
		return c.Revision
	}
	return 0
}

func (g *Graph) IsVertexStreamed(ref VertexRef) bool {
	v := g.Vertex(ref)
	return v != nil && g.IsCellStreamed(v.Cell)
}

func (g *Graph) Cells() []CellID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	res := make([]CellID, 0, len(g.cells))
	for id := range g.cells {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// NearestVertices returns the streamed vertices within radius of pos, nearest first.
func (g *Graph) NearestVertices(pos common.Vec3, radius float32) []VertexRef {
	type cand struct {
		ref VertexRef
		d   float32
	}
	var cands []cand
	r2 := radius * radius
	for i := 1; i < len(g.vertices); i++ {
		v := &g.vertices[i]
		d := common.Vdist2DSqr(pos, v.Pos)
		if d > r2 || !g.IsCellStreamed(v.Cell) {
			continue
		}
		cands = append(cands, cand{ref: v.Ref, d: d})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].d != cands[j].d {
			return cands[i].d < cands[j].d
		}
		return cands[i].ref < cands[j].ref
	})
	res := make([]VertexRef, len(cands))
	for i, c := range cands {
		res[i] = c.ref
	}
	return res
}
