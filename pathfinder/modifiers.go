package pathfinder

import (
	"github.com/gorustyt/gonavbot/action"
	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/spatial"
)

// IGoto turns the target point computed by the path follower into an action.
// It returns false when it only refined the target point and speed, leaving
// the steering to the caller.
type IGoto interface {
	Goto(f *avoidance.Frame, body *spatial.Body, target common.Vec3, act *action.Action) bool
}

// Constraint restricts the edges a bot may use.
type Constraint struct {
	AllowedTerrain navmesh.TerrainMask
}

// ICanGo prices graph edges for a bot. ok is false when the bot cannot go.
type ICanGo interface {
	GetCost(bot *spatial.Body, from, to *navgraph.Vertex, constraint *Constraint) (cost float32, ok bool)
}

// Modifiers is the strategy table of a PathFinder, chosen once at construction.
type Modifiers struct {
	Goto  IGoto
	CanGo ICanGo
}

// DirectGoto heads straight to the target at full speed.
type DirectGoto struct{}

func (DirectGoto) Goto(f *avoidance.Frame, body *spatial.Body, target common.Vec3, act *action.Action) bool {
	act.Set(action.NewTargetPoint(target))
	speed := body.MaxSpeed
	if common.Vdist2DSqr(target, body.Position) < 1e-6 {
		speed = 0
	}
	act.Set(action.NewSpeed(speed))
	act.Set(action.NewRotation(headingTo(body, target)))
	return true
}

// EuclideanCanGo prices an edge by its length and rejects forbidden terrains.
type EuclideanCanGo struct{}

func (EuclideanCanGo) GetCost(bot *spatial.Body, from, to *navgraph.Vertex, constraint *Constraint) (float32, bool) {
	if constraint != nil && !constraint.AllowedTerrain.Allows(to.Terrain) {
		return 0, false
	}
	return from.Pos.Sub(to.Pos).Len(), true
}

func headingTo(body *spatial.Body, target common.Vec3) float32 {
	if common.Vdist2DSqr(target, body.Position) < 1e-6 {
		return body.Orientation
	}
	return common.Heading2D(target.Sub(body.Position))
}
