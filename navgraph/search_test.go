package navgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathobject"
)

// wallGraph is a 11x11 lattice with a wall across x=5 open only near y=9.
func wallGraph(t *testing.T) *Graph {
	mesh := navmesh.NewMesh(navmesh.Rect(common.Vec2{-0.5, -0.5}, common.Vec2{10.5, 10.5}, navmesh.TERRAIN_DEFAULT))
	mesh.AddObstacle([]common.Vec3{{4.6, -1, 0}, {5.4, -1, 0}, {5.4, 8.5, 0}, {4.6, 8.5, 0}})
	g := BuildGrid(mesh, GridConfig{
		BMin:      common.Vec2{0, 0},
		BMax:      common.Vec2{10, 10},
		Spacing:   1,
		CellSize:  5,
		Diagonals: true,
	})
	require.NotZero(t, g.VertexCount())
	return g
}

func vertexAt(t *testing.T, g *Graph, x, y float32) VertexRef {
	refs := g.NearestVertices(common.Vec3{x, y, 0}, 0.1)
	require.Len(t, refs, 1)
	return refs[0]
}

func TestSearchFindsPathAroundWall(t *testing.T) {
	g := wallGraph(t)
	start, goal := vertexAt(t, g, 0, 0), vertexAt(t, g, 10, 0)

	s := NewSearch(g, 4096)
	path, st := s.Run(start, goal, nil)
	require.True(t, st.Succeed())
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		_, ok := g.FindEdge(path[i-1], path[i])
		assert.True(t, ok, "missing edge %d->%d", path[i-1], path[i])
	}
	// The detour through the opening at the top is much longer than 10.
	assert.Greater(t, s.PathCost(), float32(18))
}

func TestSlicedSearchMatchesUnsliced(t *testing.T) {
	g := wallGraph(t)
	start, goal := vertexAt(t, g, 0, 0), vertexAt(t, g, 10, 2)

	ref := NewSearch(g, 4096)
	want, st := ref.Run(start, goal, nil)
	require.True(t, st.Succeed())

	for _, slice := range []int{1, 3, 7, 64} {
		s := NewSearch(g, 4096)
		st := s.Init(start, goal, nil)
		calls := 0
		for st.InProgress() {
			var done int
			done, st = s.Update(slice)
			assert.LessOrEqual(t, done, slice)
			calls++
		}
		got, st := s.Finalize()
		require.True(t, st.Succeed(), "slice %d", slice)
		assert.Equal(t, want, got, "slice %d", slice)
		assert.Equal(t, ref.PathCost(), s.PathCost())
		assert.Equal(t, ref.EdgesProcessed(), s.EdgesProcessed())
		if slice == 1 {
			assert.Greater(t, calls, 10)
		}
	}
}

func TestSearchMatchesGonumReference(t *testing.T) {
	g := wallGraph(t)
	start, goal := vertexAt(t, g, 1, 1), vertexAt(t, g, 9, 3)

	s := NewSearch(g, 4096)
	_, st := s.Run(start, goal, nil)
	require.True(t, st.Succeed())

	path, weight, ok := FindPath(g, start, goal, nil)
	require.True(t, ok)
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path[len(path)-1])
	assert.InDelta(t, weight, float64(s.PathCost()), 1e-3)
}

func TestSearchStateResume(t *testing.T) {
	g := wallGraph(t)
	start, goal := vertexAt(t, g, 0, 0), vertexAt(t, g, 10, 0)

	want, _ := NewSearch(g, 4096).Run(start, goal, nil)

	s := NewSearch(g, 4096)
	s.Init(start, goal, nil)
	for i := 0; i < 5; i++ {
		s.Update(5)
	}
	require.True(t, s.InProgress())

	state := s.State()
	data, err := state.MarshalBinary()
	require.NoError(t, err)

	var decoded SearchState
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, state, decoded)

	resumed := NewSearch(g, 4096)
	resumed.Restore(decoded, nil)
	st := resumed.Status()
	for st.InProgress() {
		_, st = resumed.Update(5)
	}
	got, st := resumed.Finalize()
	require.True(t, st.Succeed())
	assert.Equal(t, want, got)
}

func TestSearchStateRejectsGarbage(t *testing.T) {
	var st SearchState
	assert.ErrorIs(t, st.UnmarshalBinary([]byte{1, 2, 3}), ErrBadSearchState)

	good := SearchState{Current: NULL_IDX, Nodes: []Node{{Ref: 1, Parent: NULL_IDX}}}
	data, err := good.MarshalBinary()
	require.NoError(t, err)
	assert.ErrorIs(t, st.UnmarshalBinary(data[:len(data)-3]), ErrBadSearchState)

	for _, nodes := range [][]Node{
		{{Ref: 1, Parent: NULL_IDX}, {Ref: 2, Parent: 9999}},
		{{Ref: 1, Parent: -2}},
		{{Ref: 1, Parent: 0}},
		{{Ref: 1, Parent: NULL_IDX}, {Ref: 2, Parent: 2}, {Ref: 3, Parent: 1}},
		{{Ref: 1, Parent: NULL_IDX}, {Ref: 1, Parent: 0}},
	} {
		bad := SearchState{Current: NULL_IDX, Nodes: nodes}
		data, err := bad.MarshalBinary()
		require.NoError(t, err)
		assert.ErrorIs(t, st.UnmarshalBinary(data), ErrBadSearchState, "%+v", nodes)
	}

	chain := SearchState{Current: 2, Nodes: []Node{{Ref: 1, Parent: NULL_IDX}, {Ref: 2, Parent: 2}, {Ref: 3, Parent: 0}}}
	data, err = chain.MarshalBinary()
	require.NoError(t, err)
	assert.NoError(t, st.UnmarshalBinary(data))
}

func TestSearchFailures(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(common.Vec3{0, 0, 0}, 1, navmesh.TERRAIN_DEFAULT)
	b := g.AddVertex(common.Vec3{1, 0, 0}, 1, navmesh.TERRAIN_DEFAULT)
	c := g.AddVertex(common.Vec3{5, 0, 0}, 2, navmesh.TERRAIN_DEFAULT)
	g.Connect(a, b, pathobject.NONE)

	s := NewSearch(g, 16)
	st := s.Init(a, 99, nil)
	assert.True(t, st.Failed())
	assert.True(t, st.Detail(STATUS_INVALID_PARAM))

	_, st = s.Run(a, c, nil)
	assert.True(t, st.Failed())
	assert.True(t, st.Detail(STATUS_NO_PATH))

	g.UnstreamCell(2)
	st = s.Init(a, c, nil)
	assert.True(t, st.Failed())
	assert.True(t, st.Detail(STATUS_UNSTREAMED))

	path, st := s.Run(a, a, nil)
	assert.True(t, st.Succeed())
	assert.Equal(t, []VertexRef{a}, path)
}

func TestSearchCostFuncAndStreaming(t *testing.T) {
	// a - b - d and a - c - d, the c branch is longer.
	g := NewGraph()
	a := g.AddVertex(common.Vec3{0, 0, 0}, 1, navmesh.TERRAIN_DEFAULT)
	b := g.AddVertex(common.Vec3{1, 0, 0}, 2, navmesh.TERRAIN_DEFAULT)
	c := g.AddVertex(common.Vec3{1, 3, 0}, 3, navmesh.TERRAIN_DEFAULT)
	d := g.AddVertex(common.Vec3{2, 0, 0}, 1, navmesh.TERRAIN_DEFAULT)
	g.Connect(a, b, 7)
	g.Connect(b, d, pathobject.NONE)
	g.Connect(a, c, pathobject.NONE)
	g.Connect(c, d, pathobject.NONE)

	s := NewSearch(g, 16)
	path, _ := s.Run(a, d, nil)
	assert.Equal(t, []VertexRef{a, b, d}, path)

	closed := func(e Edge, from, to *Vertex) (float32, bool) {
		if e.PathObject == 7 {
			return 0, false
		}
		return EuclideanCost(e, from, to)
	}
	path, _ = s.Run(a, d, closed)
	assert.Equal(t, []VertexRef{a, c, d}, path)

	g.UnstreamCell(3)
	_, st := s.Run(a, d, closed)
	assert.True(t, st.Detail(STATUS_NO_PATH))
	_, _, ok := FindPath(g, a, d, closed)
	assert.False(t, ok)
}

func TestSearchOutOfNodes(t *testing.T) {
	g := wallGraph(t)
	s := NewSearch(g, 8)
	_, st := s.Run(vertexAt(t, g, 0, 0), vertexAt(t, g, 10, 0), nil)
	assert.True(t, st.Failed())
	assert.True(t, st.Detail(STATUS_OUT_OF_NODES))
}
