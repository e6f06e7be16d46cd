package spatial

import (
	"github.com/gorustyt/gonavbot/common"
)

// Query is the read-only view perception uses to find its neighbourhood.
// Implementations must tolerate concurrent readers.
type Query interface {
	GetNearbyBodies(pos common.Vec3, radius float32, out []*Body) []*Body
	GetNearbyObstacles(pos common.Vec3, radius float32, out []*Obstacle) []*Obstacle
}

// Registry owns the bodies and obstacles of a world and indexes them in a
// proximity grid. Rebuild must be called after bodies moved and before queries.
type Registry struct {
	bodies    []*Body
	obstacles []*Obstacle
	grid      *ProximityGrid
	obsGrid   *ProximityGrid
}

func NewRegistry(cellSize float32) *Registry {
	return &Registry{
		grid:    NewProximityGrid(256, cellSize),
		obsGrid: NewProximityGrid(64, cellSize),
	}
}

func (r *Registry) AddBody(b *Body) {
	r.bodies = append(r.bodies, b)
}

func (r *Registry) RemoveBody(id BodyID) bool {
	for i, b := range r.bodies {
		if b.ID == id {
			r.bodies = append(r.bodies[:i], r.bodies[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Body(id BodyID) *Body {
	for _, b := range r.bodies {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (r *Registry) Bodies() []*Body { return r.bodies }

func (r *Registry) AddObstacle(o *Obstacle) {
	r.obstacles = append(r.obstacles, o)
}

func (r *Registry) RemoveObstacle(id ObstacleID) bool {
	for i, o := range r.obstacles {
		if o.ID == id {
			r.obstacles = append(r.obstacles[:i], r.obstacles[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Obstacles() []*Obstacle { return r.obstacles }

// Rebuild re-hashes every body and obstacle.
func (r *Registry) Rebuild() {
	r.grid.Clear()
	for i, b := range r.bodies {
		rad := b.BoundingRadius()
		p := b.Position
		r.grid.AddItem(i, p[0]-rad, p[1]-rad, p[0]+rad, p[1]+rad)
	}
	r.obsGrid.Clear()
	for i, o := range r.obstacles {
		rad := o.BoundingRadius()
		p := o.Position
		r.obsGrid.AddItem(i, p[0]-rad, p[1]-rad, p[0]+rad, p[1]+rad)
	}
}

func (r *Registry) GetNearbyBodies(pos common.Vec3, radius float32, out []*Body) []*Body {
	ids := r.grid.QueryItems(pos[0]-radius, pos[1]-radius, pos[0]+radius, pos[1]+radius, make([]int, 0, 16))
	for _, id := range ids {
		b := r.bodies[id]
		reach := radius + b.BoundingRadius()
		if common.Vdist2DSqr(pos, b.Position) <= reach*reach {
			out = append(out, b)
		}
	}
	return out
}

func (r *Registry) GetNearbyObstacles(pos common.Vec3, radius float32, out []*Obstacle) []*Obstacle {
	ids := r.obsGrid.QueryItems(pos[0]-radius, pos[1]-radius, pos[0]+radius, pos[1]+radius, make([]int, 0, 8))
	for _, id := range ids {
		o := r.obstacles[id]
		reach := radius + o.BoundingRadius()
		if common.Vdist2DSqr(pos, o.Position) <= reach*reach {
			out = append(out, o)
		}
	}
	return out
}
