package navgraph

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathobject"
)

type GridConfig struct {
	BMin, BMax common.Vec2
	Spacing    float32             ///< Distance between neighbour vertices.
	CellSize   float32             ///< Size of a streaming cell.
	Height     float32             ///< Z of the vertices.
	Terrain    navmesh.TerrainMask ///< Terrains a vertex may stand on.
	Diagonals  bool
	Gates      []Gate
}

// Gate assigns a path object to the edges touching its box.
type Gate struct {
	BMin, BMax common.Vec2
	PathObject pathobject.ID
}

func (g *Gate) contains(p common.Vec3) bool {
	return p[0] >= g.BMin[0] && p[0] <= g.BMax[0] && p[1] >= g.BMin[1] && p[1] <= g.BMax[1]
}

func gateOf(gates []Gate, a, b common.Vec3) pathobject.ID {
	mid := common.Vlerp(a, b, 0.5)
	for i := range gates {
		if gates[i].contains(a) || gates[i].contains(b) || gates[i].contains(mid) {
			return gates[i].PathObject
		}
	}
	return pathobject.NONE
}

// CellAt packs the streaming cell holding p.
func CellAt(p common.Vec3, cellSize float32) CellID {
	cx := int32(math.Floor(float64(p.X() / cellSize)))
	cy := int32(math.Floor(float64(p.Y() / cellSize)))
	return CellID(uint32(uint16(cx))<<16 | uint32(uint16(cy)))
}

// BuildGrid samples the walkable part of geom on a regular lattice and links
// neighbours whose segment is clear.
func BuildGrid(geom navmesh.StaticGeometry, cfg GridConfig) *Graph {
	common.AssertTrue(cfg.Spacing > 0 && cfg.CellSize > 0, "grid spacing %v cell %v", cfg.Spacing, cfg.CellSize)
	if cfg.Terrain == 0 {
		cfg.Terrain = navmesh.TERRAIN_ALL
	}
	nx := int(math.Floor(float64((cfg.BMax.X()-cfg.BMin.X())/cfg.Spacing))) + 1
	ny := int(math.Floor(float64((cfg.BMax.Y()-cfg.BMin.Y())/cfg.Spacing))) + 1
	g := NewGraph()
	refs := make([]VertexRef, nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			p := common.Vec3{cfg.BMin.X() + float32(i)*cfg.Spacing, cfg.BMin.Y() + float32(j)*cfg.Spacing, cfg.Height}
			if !geom.IsPointOnWalkableTerrain(p, cfg.Terrain) {
				continue
			}
			refs[j*nx+i] = g.AddVertex(p, CellAt(p, cfg.CellSize), navmesh.TERRAIN_DEFAULT)
		}
	}
	offsets := [][2]int{{1, 0}, {0, 1}}
	if cfg.Diagonals {
		offsets = append(offsets, [2]int{1, 1}, [2]int{-1, 1})
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := refs[j*nx+i]
			if a == NULL_VERTEX {
				continue
			}
			for _, o := range offsets {
				ni, nj := i+o[0], j+o[1]
				if ni < 0 || ni >= nx || nj >= ny {
					continue
				}
				b := refs[nj*nx+ni]
				if b == NULL_VERTEX {
					continue
				}
				pa, pb := g.Vertex(a).Pos, g.Vertex(b).Pos
				if geom.IsSegmentClear(pa, pb) {
					g.Connect(a, b, gateOf(cfg.Gates, pa, pb))
				}
			}
		}
	}
	return g
}
