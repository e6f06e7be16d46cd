package navmesh

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
)

type TerrainType uint8

const (
	TERRAIN_DEFAULT TerrainType = iota
	TERRAIN_ROAD
	TERRAIN_GRASS
	TERRAIN_WATER
)

type TerrainMask uint32

const TERRAIN_ALL TerrainMask = 0xffffffff

func (m TerrainMask) Allows(t TerrainType) bool {
	return m&(1<<t) != 0
}

func MaskOf(types ...TerrainType) TerrainMask {
	var m TerrainMask
	for _, t := range types {
		m |= 1 << t
	}
	return m
}

// StaticGeometry answers the runtime queries made against the navmesh and the
// static obstacle layer. It is read-only at runtime.
type StaticGeometry interface {
	IsSegmentClear(from, to common.Vec3) bool
	IsPointOnWalkableTerrain(p common.Vec3, allowed TerrainMask) bool
}

// / A convex or concave walkable polygon on the xy-plane.
type Polygon struct {
	Verts   []common.Vec3
	Terrain TerrainType
}

type Segment struct {
	P, Q common.Vec3
}

type polyBounds struct {
	bmin, bmax common.Vec3
}

// Mesh is a polygon soup navmesh. Edges not shared by two polygons are borders;
// static obstacles carve holes whose outline is added to the borders.
type Mesh struct {
	polys     []Polygon
	bounds    []polyBounds
	borders   []Segment
	obstacles [][]common.Vec3
}

func NewMesh(polys ...Polygon) *Mesh {
	m := &Mesh{polys: polys}
	m.bounds = make([]polyBounds, len(polys))
	for i, p := range polys {
		common.AssertTrue(len(p.Verts) >= 3, "polygon %d has %d verts", i, len(p.Verts))
		m.bounds[i].bmin, m.bounds[i].bmax = common.Bounds2D(p.Verts)
	}
	m.buildBorders()
	return m
}

type edgeKey struct {
	ax, ay, bx, by int32
}

func quantize(v float32) int32 {
	return int32(math.Round(float64(v) * 1024))
}

func makeEdgeKey(a, b common.Vec3) edgeKey {
	k := edgeKey{quantize(a[0]), quantize(a[1]), quantize(b[0]), quantize(b[1])}
	if k.ax > k.bx || (k.ax == k.bx && k.ay > k.by) {
		k.ax, k.ay, k.bx, k.by = k.bx, k.by, k.ax, k.ay
	}
	return k
}

func (m *Mesh) buildBorders() {
	count := make(map[edgeKey]int)
	for _, p := range m.polys {
		n := len(p.Verts)
		for i := 0; i < n; i++ {
			count[makeEdgeKey(p.Verts[i], p.Verts[common.Next(i, n)])]++
		}
	}
	for _, p := range m.polys {
		n := len(p.Verts)
		for i := 0; i < n; i++ {
			a, b := p.Verts[i], p.Verts[common.Next(i, n)]
			if count[makeEdgeKey(a, b)] == 1 {
				m.borders = append(m.borders, Segment{P: a, Q: b})
			}
		}
	}
}

// AddObstacle carves a static blocking polygon out of the walkable area.
func (m *Mesh) AddObstacle(verts []common.Vec3) {
	common.AssertTrue(len(verts) >= 3, "obstacle has %d verts", len(verts))
	m.obstacles = append(m.obstacles, verts)
	n := len(verts)
	for i := 0; i < n; i++ {
		m.borders = append(m.borders, Segment{P: verts[i], Q: verts[common.Next(i, n)]})
	}
}

func (m *Mesh) Borders() []Segment { return m.borders }

func (m *Mesh) IsPointOnWalkableTerrain(p common.Vec3, allowed TerrainMask) bool {
	for _, o := range m.obstacles {
		if common.PointInPoly(o, p) {
			return false
		}
	}
	for i := range m.polys {
		b := &m.bounds[i]
		if p[0] < b.bmin[0] || p[0] > b.bmax[0] || p[1] < b.bmin[1] || p[1] > b.bmax[1] {
			continue
		}
		if common.PointInPoly(m.polys[i].Verts, p) {
			return allowed.Allows(m.polys[i].Terrain)
		}
	}
	return false
}

func (m *Mesh) IsSegmentClear(from, to common.Vec3) bool {
	if !m.IsPointOnWalkableTerrain(from, TERRAIN_ALL) || !m.IsPointOnWalkableTerrain(to, TERRAIN_ALL) {
		return false
	}
	for _, s := range m.borders {
		if _, _, hit := common.IntersectSegSeg2D(from, to, s.P, s.Q); hit {
			return false
		}
	}
	return true
}

// OpenTerrain is an unbounded walkable plane without obstacles.
type OpenTerrain struct{}

func (OpenTerrain) IsSegmentClear(from, to common.Vec3) bool { return true }
func (OpenTerrain) IsPointOnWalkableTerrain(p common.Vec3, allowed TerrainMask) bool {
	return allowed.Allows(TERRAIN_DEFAULT)
}

// Rect returns the axis aligned polygon spanning bmin..bmax, wound counter-clockwise.
func Rect(bmin, bmax common.Vec2, terrain TerrainType) Polygon {
	return Polygon{
		Verts: []common.Vec3{
			{bmin[0], bmin[1], 0},
			{bmax[0], bmin[1], 0},
			{bmax[0], bmax[1], 0},
			{bmin[0], bmax[1], 0},
		},
		Terrain: terrain,
	}
}
