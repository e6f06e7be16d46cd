package navgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathobject"
)

func TestGraphStreaming(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(common.Vec3{0, 0, 0}, 1, navmesh.TERRAIN_DEFAULT)
	b := g.AddVertex(common.Vec3{1, 0, 0}, 2, navmesh.TERRAIN_ROAD)

	assert.True(t, g.IsVertexStreamed(a))
	assert.Equal(t, uint32(0), g.CellRevision(2))

	assert.True(t, g.UnstreamCell(2))
	assert.False(t, g.UnstreamCell(2), "already unstreamed")
	assert.False(t, g.IsVertexStreamed(b))
	assert.Equal(t, uint32(1), g.CellRevision(2))

	assert.True(t, g.StreamCell(2))
	assert.True(t, g.IsVertexStreamed(b))
	assert.Equal(t, uint32(2), g.CellRevision(2))
	assert.Equal(t, []CellID{1, 2}, g.Cells())
	assert.False(t, g.IsVertexStreamed(NULL_VERTEX))
}

func TestGraphGUIDAndEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddVertex(common.Vec3{0, 0, 0}, 3, navmesh.TERRAIN_DEFAULT)
	b := g.AddVertex(common.Vec3{2, 0, 0}, 3, navmesh.TERRAIN_DEFAULT)
	g.Connect(a, b, pathobject.ID(4))

	assert.Equal(t, uint64(3)<<32|1, g.Vertex(a).GUID)
	assert.Equal(t, b, g.VertexByGUID(g.Vertex(b).GUID))
	assert.Equal(t, NULL_VERTEX, g.VertexByGUID(42))

	e, ok := g.FindEdge(b, a)
	assert.True(t, ok)
	assert.Equal(t, pathobject.ID(4), e.PathObject)
	assert.Nil(t, g.Edges(NULL_VERTEX))
	assert.Panics(t, func() { g.AddEdge(a, a, pathobject.NONE) })
}

func TestNearestVertices(t *testing.T) {
	g := BuildGrid(navmesh.OpenTerrain{}, GridConfig{
		BMin:     common.Vec2{0, 0},
		BMax:     common.Vec2{4, 4},
		Spacing:  1,
		CellSize: 2,
	})
	assert.Equal(t, 25, g.VertexCount())

	refs := g.NearestVertices(common.Vec3{1.1, 1.2, 0}, 1)
	if assert.NotEmpty(t, refs) {
		assert.Equal(t, common.Vec3{1, 1, 0}, g.Vertex(refs[0]).Pos)
	}
	// Vertices of an unstreamed cell are never candidates.
	g.UnstreamCell(CellAt(common.Vec3{1, 1, 0}, 2))
	for _, ref := range g.NearestVertices(common.Vec3{1.1, 1.2, 0}, 1) {
		assert.NotEqual(t, common.Vec3{1, 1, 0}, g.Vertex(ref).Pos)
	}
	// Four neighbours without diagonals.
	assert.Len(t, g.Edges(refs[0]), 4)
}

func TestBuildGridGates(t *testing.T) {
	g := BuildGrid(navmesh.OpenTerrain{}, GridConfig{
		BMin:     common.Vec2{0, 0},
		BMax:     common.Vec2{4, 0},
		Spacing:  1,
		CellSize: 5,
		Gates:    []Gate{{BMin: common.Vec2{1.5, -1}, BMax: common.Vec2{2.5, 1}, PathObject: 9}},
	})
	require.Equal(t, 5, g.VertexCount())
	v := func(x float32) VertexRef { return g.NearestVertices(common.Vec3{x, 0, 0}, 0.1)[0] }
	for _, c := range []struct {
		from, to float32
		po       pathobject.ID
	}{
		{0, 1, pathobject.NONE},
		{1, 2, 9},
		{2, 3, 9},
		{3, 4, pathobject.NONE},
	} {
		e, ok := g.FindEdge(v(c.from), v(c.to))
		require.True(t, ok)
		assert.Equal(t, c.po, e.PathObject, "edge %v->%v", c.from, c.to)
	}
}
