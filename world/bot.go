package world

import (
	"github.com/gorustyt/gonavbot/action"
	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/pathfinder"
	"github.com/gorustyt/gonavbot/spatial"
)

// Bot is an agent of the world: a body moved by the world, a path finder
// planning for it and the gap avoidance refining its steps.
type Bot struct {
	Body       *spatial.Body
	PathFinder *pathfinder.PathFinder
	Avoidance  *avoidance.GapDynamicAvoidance

	action  *action.Action ///< Written by the bot during the decision phase.
	applied *action.Action ///< Last value of every attribute, read by the movement integration.

	destination    common.Vec3
	hasDestination bool
	moving         bool
}

func (b *Bot) ID() spatial.BodyID { return b.Body.ID }

func (b *Bot) SetDestination(p common.Vec3) {
	b.destination = p
	b.hasDestination = true
}

func (b *Bot) ClearDestination() { b.hasDestination = false }

func (b *Bot) Destination() (common.Vec3, bool) { return b.destination, b.hasDestination }

// Moving reports whether the last decision asked the body to move.
func (b *Bot) Moving() bool { return b.moving }

// Arrived reports whether the bot stands on its destination.
func (b *Bot) Arrived() bool { return b.hasDestination && b.PathFinder.Arrived() }

// Action is the decision of the last frame.
func (b *Bot) Action() *action.Action { return b.applied }

// Teleport moves the body at the next integration, bypassing the speed limit.
func (b *Bot) Teleport(p common.Vec3) {
	b.applied.Set(action.NewForcedPosition(p))
}

func (b *Bot) ForceRotation(heading float32) {
	b.applied.Set(action.NewForcedRotation(heading))
}

func (b *Bot) think(f *avoidance.Frame) {
	b.action.ResetUpdated()
	if !b.hasDestination {
		b.action.Set(action.NewTargetPoint(b.Body.Position))
		b.action.Set(action.NewSpeed(0))
		b.moving = false
		return
	}
	b.moving = b.PathFinder.FindNextMove(f, b.Body, b.destination, b.action)
}

// integrate applies the decision to the body over dt seconds.
func (b *Bot) integrate(dt float64) {
	b.applied.Synchronize(b.action)
	body := b.Body
	if fp, ok := action.GetAttribute[*action.ForcedPosition](b.applied); ok {
		body.Position = fp.Position
		body.Velocity = common.Vec3{}
		b.applied.Remove(action.CLASS_FORCED_POSITION)
		return
	}
	if fr, ok := action.GetAttribute[*action.ForcedRotation](b.applied); ok {
		body.Orientation = fr.Heading
		b.applied.Remove(action.CLASS_FORCED_ROTATION)
	} else if rot, ok := action.GetAttribute[*action.Rotation](b.applied); ok {
		body.Orientation = rot.Heading
	}

	var speed float32
	if s, ok := action.GetAttribute[*action.Speed](b.applied); ok {
		speed = common.Clamp(s.Value, 0, body.MaxSpeed)
	}
	tp, ok := action.GetAttribute[*action.TargetPoint](b.applied)
	if !ok || speed == 0 || dt <= 0 {
		body.Velocity = common.Vec3{}
		return
	}
	delta := tp.Point.Sub(body.Position)
	delta[2] = 0
	dist := common.Vlen2D(delta)
	if dist < 1e-4 {
		body.Velocity = common.Vec3{}
		return
	}
	step := min(speed*float32(dt), dist)
	dir := delta.Mul(1 / dist)
	body.Position = body.Position.Add(dir.Mul(step))
	body.Velocity = dir.Mul(step / float32(dt))
}
