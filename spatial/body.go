package spatial

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
)

type BodyID uint32

type ShapeKind uint8

const (
	ShapeCircular ShapeKind = iota
	ShapeRectangular
)

func (s ShapeKind) String() string {
	switch s {
	case ShapeCircular:
		return "circular"
	case ShapeRectangular:
		return "rectangular"
	}
	return "unknown"
}

// / A moving agent. Avoidance only reads bodies, the owner moves them.
type Body struct {
	ID          BodyID
	Position    common.Vec3 ///< Position of the body center.
	Orientation float32     ///< Heading around z in radians.
	Shape       ShapeKind
	Radius      float32 ///< Circular bodies only.
	Width       float32 ///< Rectangular bodies only, extent across the heading.
	Length      float32 ///< Rectangular bodies only, extent along the heading.
	Velocity    common.Vec3
	MaxSpeed    float32
}

// EffectiveWidth is the extent of the body across its heading.
func (b *Body) EffectiveWidth() float32 {
	if b.Shape == ShapeRectangular {
		return b.Width
	}
	return 2 * b.Radius
}

// BoundingRadius is the radius of the circle enclosing the body.
func (b *Body) BoundingRadius() float32 {
	if b.Shape == ShapeRectangular {
		return 0.5 * common.Sqrt32(b.Width*b.Width+b.Length*b.Length)
	}
	return b.Radius
}

// ProjectedHalfExtents returns the half extents of the body projected on the
// planar axes d (forward) and n (lateral). Rectangles are swept as oriented boxes.
func (b *Body) ProjectedHalfExtents(d, n common.Vec3) (along, across float32) {
	if b.Shape != ShapeRectangular {
		return b.Radius, b.Radius
	}
	return projectBox(b.Orientation, 0.5*b.Length, 0.5*b.Width, d, n)
}

func (b *Body) Speed() float32 {
	return common.Vlen2D(b.Velocity)
}

func projectBox(orientation, halfLength, halfWidth float32, d, n common.Vec3) (along, across float32) {
	fwd := common.Dir2D(orientation)
	side := common.Vleft2D(fwd)
	along = common.Abs(common.Vdot2D(fwd, d))*halfLength + common.Abs(common.Vdot2D(side, d))*halfWidth
	across = common.Abs(common.Vdot2D(fwd, n))*halfLength + common.Abs(common.Vdot2D(side, n))*halfWidth
	return along, across
}

type ObstacleID uint32

// / A static or quasi-static blocking box from the obstacle layer.
type Obstacle struct {
	ID          ObstacleID
	Position    common.Vec3
	Orientation float32
	HalfExtents common.Vec2 ///< x along the orientation, y across it.
	Velocity    common.Vec3
}

// AsBody exposes the obstacle with the body contract so perception handles both
// the same way. Obstacle bodies use the high bit of the ID space.
func (o *Obstacle) AsBody() Body {
	return Body{
		ID:          BodyID(o.ID) | ObstacleBodyFlag,
		Position:    o.Position,
		Orientation: o.Orientation,
		Shape:       ShapeRectangular,
		Width:       2 * o.HalfExtents[1],
		Length:      2 * o.HalfExtents[0],
		Velocity:    o.Velocity,
	}
}

const ObstacleBodyFlag BodyID = 1 << 31

func (o *Obstacle) BoundingRadius() float32 {
	return float32(math.Hypot(float64(o.HalfExtents[0]), float64(o.HalfExtents[1])))
}
