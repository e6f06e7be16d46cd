package action

import (
	"github.com/gorustyt/gonavbot/common"
)

// Speed is the desired forward speed in m/s.
type Speed struct {
	Base
	Value float32
}

func (*Speed) ClassID() ClassID    { return CLASS_SPEED }
func (s *Speed) clone() Attribute { c := *s; return &c }

// Rotation is the heading to turn to, in radians around z.
type Rotation struct {
	Base
	Heading float32
}

func (*Rotation) ClassID() ClassID    { return CLASS_ROTATION }
func (r *Rotation) clone() Attribute { c := *r; return &c }

// ForcedPosition teleports the body, used by path objects.
type ForcedPosition struct {
	Base
	Position common.Vec3
}

func (*ForcedPosition) ClassID() ClassID    { return CLASS_FORCED_POSITION }
func (f *ForcedPosition) clone() Attribute { c := *f; return &c }

type ForcedRotation struct {
	Base
	Heading float32
}

func (*ForcedRotation) ClassID() ClassID    { return CLASS_FORCED_ROTATION }
func (f *ForcedRotation) clone() Attribute { c := *f; return &c }

// TargetPoint is the point the agent is steering to this frame.
type TargetPoint struct {
	Base
	Point common.Vec3
}

func (*TargetPoint) ClassID() ClassID    { return CLASS_TARGET_POINT }
func (t *TargetPoint) clone() Attribute { c := *t; return &c }

func NewSpeed(v float32) *Speed                         { return &Speed{Value: v} }
func NewRotation(heading float32) *Rotation             { return &Rotation{Heading: heading} }
func NewForcedPosition(p common.Vec3) *ForcedPosition   { return &ForcedPosition{Position: p} }
func NewForcedRotation(heading float32) *ForcedRotation { return &ForcedRotation{Heading: heading} }
func NewTargetPoint(p common.Vec3) *TargetPoint         { return &TargetPoint{Point: p} }
