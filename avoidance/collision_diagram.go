package avoidance

import (
	"math"
	"sort"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/spatial"
)

const closingEps = 1e-3

// Obstruction is the lane interval a body occupies in the collision diagram.
// Abscissas are lateral offsets of the agent center, left positive.
type Obstruction struct {
	BodyID      spatial.BodyID
	AbscissaMin float32
	AbscissaMax float32
	Tti         float32 ///< Time before the body enters the contact window.
	Leave       float32 ///< Time at which the body leaves the contact window.
	Forward     float32 ///< Distance of the body ahead of the agent.
	Lateral     float32 ///< Current abscissa of the body.
	ForwardVel  float32 ///< Body velocity along the lane.
	LateralVel  float32 ///< Body velocity across the lane.
	RadiusF     float32 ///< Forward contact radius.
	RadiusL     float32 ///< Lateral contact radius.

	Position common.Vec3
	Velocity common.Vec3
	Radius   float32 ///< Bounding radius of the body, whatever its heading.
}

// Covers reports whether an agent centered on abscissa a would hit the body.
func (o *Obstruction) Covers(a float32) bool {
	return a >= o.AbscissaMin && a <= o.AbscissaMax
}

// ClearingSpeed is the highest speed at which an agent on lane a reaches the
// body after it left the lane. ok is false when waiting never clears the lane.
func (o *Obstruction) ClearingSpeed(a float32) (speed float32, ok bool) {
	if math.Abs(float64(o.LateralVel)) < closingEps {
		return 0, false
	}
	var leave float32
	if o.LateralVel > 0 {
		leave = (a + o.RadiusL - o.Lateral) / o.LateralVel
	} else {
		leave = (a - o.RadiusL - o.Lateral) / o.LateralVel
	}
	if leave <= 0 {
		return math.MaxFloat32, true
	}
	gap := o.Forward - o.RadiusF
	if gap <= 0 {
		return 0, false
	}
	return o.ForwardVel + gap/leave, true
}

type Gap struct {
	Min, Max float32
}

func (g Gap) Width() float32 { return g.Max - g.Min }

// CollisionDiagram projects the neighbour bodies on the lanes of the corridor
// ahead of the agent.
type CollisionDiagram struct {
	Origin    common.Vec3
	Dir       common.Vec3 ///< Forward axis.
	Left      common.Vec3 ///< Lateral axis, abscissas grow along it.
	Speed     float32     ///< Agent speed the diagram assumes.
	HalfWidth float32
	MaxLength float32
	BuiltAt   float64

	Obstructions []Obstruction
	gaps         []Gap
}

func (c *CollisionDiagram) Reset() {
	c.Obstructions = c.Obstructions[:0]
	c.gaps = c.gaps[:0]
}

func (c *CollisionDiagram) Empty() bool { return len(c.Obstructions) == 0 }

// Build fills the diagram for agent heading along dir.
func (c *CollisionDiagram) Build(now float64, agent *spatial.Body, dir common.Vec3, bodies []*spatial.Body, p *Params) {
	c.Reset()
	c.Origin = agent.Position
	c.Dir = common.Vnormalize2D(dir)
	c.Left = common.Vleft2D(c.Dir)
	c.Speed = agent.MaxSpeed
	c.HalfWidth = p.DiagramHalfWidth
	c.MaxLength = p.DiagramMaxLength
	c.BuiltAt = now

	agentAlong, agentAcross := agent.ProjectedHalfExtents(c.Dir, c.Left)
	for _, b := range bodies {
		if b.ID == agent.ID {
			continue
		}
		if common.Vdist2DSqr(agent.Position, b.Position) > common.Sqr(p.DistMax+b.BoundingRadius()) {
			continue
		}
		o, ok := c.project(agent, agentAlong, agentAcross, b, p)
		if !ok {
			continue
		}
		if o.AbscissaMax < -c.HalfWidth || o.AbscissaMin > c.HalfWidth {
			continue
		}
		c.Obstructions = append(c.Obstructions, o)
	}
	sort.Slice(c.Obstructions, func(i, j int) bool {
		if c.Obstructions[i].Tti != c.Obstructions[j].Tti {
			return c.Obstructions[i].Tti < c.Obstructions[j].Tti
		}
		return c.Obstructions[i].BodyID < c.Obstructions[j].BodyID
	})
	c.buildGaps()
}

func (c *CollisionDiagram) project(agent *spatial.Body, agentAlong, agentAcross float32, b *spatial.Body, p *Params) (Obstruction, bool) {
	rel := b.Position.Sub(agent.Position)
	s0 := common.Vdot2D(rel, c.Dir)
	l0 := common.Vdot2D(rel, c.Left)
	uf := common.Vdot2D(b.Velocity, c.Dir)
	ul := common.Vdot2D(b.Velocity, c.Left)

	bodyAlong, bodyAcross := b.ProjectedHalfExtents(c.Dir, c.Left)
	rf := agentAlong + bodyAlong + p.ExtraGap
	rl := agentAcross + bodyAcross + p.ExtraGap

	o := Obstruction{
		BodyID:     b.ID,
		Forward:    s0,
		Lateral:    l0,
		ForwardVel: uf,
		LateralVel: ul,
		RadiusF:    rf,
		RadiusL:    rl,
		Position:   b.Position,
		Velocity:   b.Velocity,
		Radius:     b.BoundingRadius(),
	}

	closing := c.Speed - uf
	if closing <= closingEps {
		// The body never closes in, it only matters when already in contact.
		if common.Abs(s0) > rf || common.Abs(l0) > rl {
			return o, false
		}
		o.Tti = 0
		o.Leave = float32(math.Inf(1))
		o.AbscissaMin = l0 - rl
		o.AbscissaMax = l0 + rl
		return o, true
	}

	tin := (s0 - rf) / closing
	tout := (s0 + rf) / closing
	if tout < 0 {
		return o, false
	}
	if c.Speed > 0 && tin*c.Speed > c.MaxLength {
		return o, false
	}
	// Lateral sweep of the body from now until it leaves the contact window.
	lEnd := l0 + ul*tout
	o.AbscissaMin = min(l0, lEnd) - rl
	o.AbscissaMax = max(l0, lEnd) + rl
	o.Tti = max(0, tin)
	o.Leave = tout

	if b.Shape == spatial.ShapeCircular && agent.Shape == spatial.ShapeCircular {
		vrel := c.Dir.Mul(c.Speed).Sub(b.Velocity)
		if tmin, _, hit := common.SweepCircleCircle(agent.Position, agent.Radius, vrel, b.Position, b.Radius+p.ExtraGap); hit && tmin >= 0 {
			o.Tti = tmin
		}
	}
	return o, true
}

func (c *CollisionDiagram) buildGaps() {
	c.gaps = c.gaps[:0]
	type span struct{ lo, hi float32 }
	spans := make([]span, 0, len(c.Obstructions))
	for i := range c.Obstructions {
		o := &c.Obstructions[i]
		spans = append(spans, span{max(o.AbscissaMin, -c.HalfWidth), min(o.AbscissaMax, c.HalfWidth)})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	cur := -c.HalfWidth
	for _, s := range spans {
		if s.lo > cur {
			c.gaps = append(c.gaps, Gap{Min: cur, Max: s.lo})
		}
		cur = max(cur, s.hi)
	}
	if cur < c.HalfWidth {
		c.gaps = append(c.gaps, Gap{Min: cur, Max: c.HalfWidth})
	}
}

// Gaps returns the free lane intervals, left to right in abscissa order.
func (c *CollisionDiagram) Gaps() []Gap { return c.gaps }

// GapAt returns the gap holding abscissa a.
func (c *CollisionDiagram) GapAt(a float32) (Gap, bool) {
	for _, g := range c.gaps {
		if a >= g.Min && a <= g.Max {
			return g, true
		}
	}
	return Gap{}, false
}

// FirstObstruction returns the earliest obstruction covering abscissa a.
func (c *CollisionDiagram) FirstObstruction(a float32) *Obstruction {
	for i := range c.Obstructions {
		if c.Obstructions[i].Covers(a) {
			return &c.Obstructions[i]
		}
	}
	return nil
}

// LaneSpeed returns the speed allowing an agent on lane a to pass every
// obstruction of the lane, capped to vmax, and the earliest tti of the lane.
// blocked is true when no waiting clears the lane.
func (c *CollisionDiagram) LaneSpeed(a, vmax float32) (speed, tti float32, obstructed, blocked bool) {
	speed = vmax
	tti = float32(math.Inf(1))
	for i := range c.Obstructions {
		o := &c.Obstructions[i]
		if !o.Covers(a) {
			continue
		}
		obstructed = true
		tti = min(tti, o.Tti)
		s, ok := o.ClearingSpeed(a)
		if !ok {
			blocked = true
			continue
		}
		speed = min(speed, s)
	}
	if blocked {
		speed = 0
	}
	return speed, tti, obstructed, blocked
}

// Risk reports whether the straight lane is obstructed within horizon. The
// returned obstruction is the most imminent one.
func (c *CollisionDiagram) Risk(horizon float32) (bool, *Obstruction) {
	o := c.FirstObstruction(0)
	if o != nil && o.Tti <= horizon {
		return true, o
	}
	return false, nil
}

// MinTti is the smallest tti of the diagram, +Inf when empty.
func (c *CollisionDiagram) MinTti() float32 {
	if len(c.Obstructions) == 0 {
		return float32(math.Inf(1))
	}
	return c.Obstructions[0].Tti
}

// Abscissa returns the lateral offset of p in the diagram frame.
func (c *CollisionDiagram) Abscissa(p common.Vec3) float32 {
	return common.Vdot2D(p.Sub(c.Origin), c.Left)
}
