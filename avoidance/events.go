package avoidance

import (
	"github.com/gorustyt/gonavbot/budget"
	"github.com/gorustyt/gonavbot/lpf"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/spatial"
)

type ModeChange struct {
	BodyID spatial.BodyID
	From   RefinedMode
	To     RefinedMode
	Time   float64
}

// ModeObserver receives the avoidance mode changes of the agents it is passed to.
type ModeObserver interface {
	OnModeChange(ev ModeChange)
}

type ModeObserverFunc func(ev ModeChange)

func (f ModeObserverFunc) OnModeChange(ev ModeChange) { f(ev) }

// Frame is the per-frame context an agent update runs in. It is shared by the
// agents of a world, which only read it apart from the budget.
type Frame struct {
	Now      float64 ///< Frame time in seconds.
	Dt       float64 ///< Time elapsed since the previous frame.
	Query    spatial.Query
	Geometry navmesh.StaticGeometry
	Areas    *lpf.AreaSet
	Budget   *budget.TimeManager
	Observer ModeObserver
}
