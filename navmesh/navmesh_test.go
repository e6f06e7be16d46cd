package navmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gorustyt/gonavbot/common"
)

func twoRooms() *Mesh {
	m := NewMesh(
		Rect(common.Vec2{0, 0}, common.Vec2{10, 10}, TERRAIN_DEFAULT),
		Rect(common.Vec2{10, 0}, common.Vec2{20, 10}, TERRAIN_GRASS),
	)
	return m
}

func TestMeshBorders(t *testing.T) {
	m := twoRooms()
	// The shared edge x=10 is not a border.
	assert.Len(t, m.Borders(), 6)
	m.AddObstacle([]common.Vec3{{4, 4, 0}, {6, 4, 0}, {6, 6, 0}, {4, 6, 0}})
	assert.Len(t, m.Borders(), 10)
}

func TestMeshWalkable(t *testing.T) {
	m := twoRooms()
	m.AddObstacle([]common.Vec3{{4, 4, 0}, {6, 4, 0}, {6, 6, 0}, {4, 6, 0}})

	assert.True(t, m.IsPointOnWalkableTerrain(common.Vec3{1, 1, 0}, TERRAIN_ALL))
	assert.False(t, m.IsPointOnWalkableTerrain(common.Vec3{5, 5, 0}, TERRAIN_ALL))
	assert.False(t, m.IsPointOnWalkableTerrain(common.Vec3{25, 5, 0}, TERRAIN_ALL))

	grass := common.Vec3{15, 5, 0}
	assert.True(t, m.IsPointOnWalkableTerrain(grass, MaskOf(TERRAIN_GRASS)))
	assert.False(t, m.IsPointOnWalkableTerrain(grass, MaskOf(TERRAIN_DEFAULT, TERRAIN_ROAD)))
}

func TestMeshSegmentClear(t *testing.T) {
	m := twoRooms()
	m.AddObstacle([]common.Vec3{{4, 4, 0}, {6, 4, 0}, {6, 6, 0}, {4, 6, 0}})

	// Crossing the shared edge between the rooms is fine.
	assert.True(t, m.IsSegmentClear(common.Vec3{8, 1, 0}, common.Vec3{12, 1, 0}))
	assert.False(t, m.IsSegmentClear(common.Vec3{1, 5, 0}, common.Vec3{9, 5, 0}))
	assert.False(t, m.IsSegmentClear(common.Vec3{1, 1, 0}, common.Vec3{25, 1, 0}))
	assert.True(t, m.IsSegmentClear(common.Vec3{1, 1, 0}, common.Vec3{9, 2, 0}))
}

func TestOpenTerrain(t *testing.T) {
	var g StaticGeometry = OpenTerrain{}
	assert.True(t, g.IsSegmentClear(common.Vec3{-1e6, 0, 0}, common.Vec3{1e6, 0, 0}))
	assert.True(t, g.IsPointOnWalkableTerrain(common.Vec3{}, TERRAIN_ALL))
	assert.False(t, g.IsPointOnWalkableTerrain(common.Vec3{}, MaskOf(TERRAIN_WATER)))
}
