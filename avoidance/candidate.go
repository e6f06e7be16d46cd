package avoidance

import (
	"math"
	"sort"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/spatial"
)

type CandidateClass uint8

const (
	CANDIDATE_DIRECT   CandidateClass = iota ///< The raw target itself.
	CANDIDATE_FREE                           ///< In a gap of the collision diagram.
	CANDIDATE_SLOWING                        ///< In an obstructed lane the agent clears by slowing down.
	CANDIDATE_BLOCKED                        ///< In an obstructed lane that does not clear.
	CANDIDATE_FOLLOW                         ///< Behind the followee.
	CANDIDATE_SIDESTEP                       ///< Free lane on the right.
	CANDIDATE_CROWDED                        ///< Raw target at minimum speed.
	CANDIDATE_REJOIN                         ///< Fixed direction around the agent.
)

// POLAR_PENALTY is added to candidates heading into a polar sector.
const POLAR_PENALTY = 1

// Rejoin directions, in degrees around the direction to the raw target.
var rejoinAngles = [...]float64{0, 45, -45, 90, -90, 135, -135}

type Candidate struct {
	Point    common.Vec3
	Abscissa float32 ///< Lateral offset from the straight line to the raw target, left positive.
	Speed    float32
	Cost     float32
	Tti      float32
	Mode     RefinedMode ///< Mode the agent enters when adopting the candidate.
	Blocked  bool
	Class    CandidateClass
}

// CandidateList is ordered best first.
type CandidateList []Candidate

func candidateLess(a, b *Candidate) bool {
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	aa, ab := common.Abs(a.Abscissa), common.Abs(b.Abscissa)
	if aa != ab {
		return aa < ab
	}
	// Right side first, as the sidestep convention.
	return a.Abscissa < b.Abscissa
}

func (l CandidateList) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return candidateLess(&l[i], &l[j]) })
}

func (l CandidateList) IsSorted() bool {
	for i := 1; i < len(l); i++ {
		if candidateLess(&l[i], &l[i-1]) {
			return false
		}
	}
	return true
}

// StandardAbscissas returns 0 then symmetric offsets whose spacing grows away
// from the center, bounded by limit.
func StandardAbscissas(spacing, limit float32, out []float32) []float32 {
	out = append(out[:0], 0)
	a := float32(0)
	for k := 1; ; k++ {
		a += spacing * (1 + 0.5*float32(k-1))
		if a > limit+1e-4 {
			break
		}
		out = append(out, a, -a)
	}
	return out
}

// CandidateGenerator turns the perception diagrams into candidate lists.
type CandidateGenerator struct {
	Params    *Params
	Collision *CollisionDiagram
	Crowd     *CrowdModule
	Polar     *PolarDiagram
	Geometry  navmesh.StaticGeometry
	Debug     *DebugData

	abscissas []float32
}

type genFrame struct {
	now        float64
	agent      *spatial.Body
	pos        common.Vec3
	target     common.Vec3
	dir        common.Vec3
	left       common.Vec3
	forward    float32 ///< Distance of the candidate row.
	laneOffset float32 ///< Abscissa of the agent in the collision diagram.
	vmax       float32
}

// Generate builds the candidates of strategy for agent heading to target and
// returns them sorted best first.
func (g *CandidateGenerator) Generate(strategy GlobalMode, now float64, agent *spatial.Body, target common.Vec3, out CandidateList) CandidateList {
	out = out[:0]
	if g.Debug != nil {
		g.Debug.Reset()
	}
	toTarget := target.Sub(agent.Position)
	dist := common.Vlen2D(toTarget)
	if dist < 1e-4 {
		return out
	}
	f := &genFrame{
		now:     now,
		agent:   agent,
		pos:     agent.Position,
		target:  target,
		dir:     common.Vnormalize2D(toTarget),
		forward: min(dist, g.Params.DiagramMaxLength*0.5),
		vmax:    agent.MaxSpeed,
	}
	f.left = common.Vleft2D(f.dir)
	if g.Collision != nil && !g.Collision.Empty() {
		f.laneOffset = g.Collision.Abscissa(f.pos)
	}

	switch strategy {
	case GLOBAL_NORMAL:
		out = g.appendDirect(f, out, MODE_NORMAL)
	case GLOBAL_STANDARD:
		out = g.generateStandard(f, out)
	case GLOBAL_CROWDING:
		out = g.generateCrowding(f, out)
	case GLOBAL_REJOINING_ORIGINAL_PATH:
		out = g.generateRejoining(f, out)
	}
	out.Sort()
	return out
}

func (g *CandidateGenerator) walkable(p common.Vec3) bool {
	if g.Geometry == nil {
		return true
	}
	return g.Geometry.IsPointOnWalkableTerrain(p, g.Params.AllowedTerrain)
}

func (g *CandidateGenerator) polarPenalty(f *genFrame, p common.Vec3) float32 {
	if g.Polar == nil {
		return 0
	}
	if g.Polar.Blocked(f.now, common.Vnormalize2D(p.Sub(f.pos))) {
		return POLAR_PENALTY
	}
	return 0
}

func (g *CandidateGenerator) lane(f *genFrame, a float32) (speed, tti float32, obstructed, blocked bool) {
	if g.Collision == nil {
		return f.vmax, float32(math.Inf(1)), false, false
	}
	return g.Collision.LaneSpeed(f.laneOffset+a, f.vmax)
}

func (g *CandidateGenerator) ttiPenalty(tti float32) float32 {
	if math.IsInf(float64(tti), 1) {
		return 0
	}
	h := g.Params.TtiHorizon
	return g.Params.TtiWeight * h / (h + max(0, tti))
}

func (g *CandidateGenerator) speedPenalty(speed, vmax float32) float32 {
	if vmax <= 0 {
		return 0
	}
	return g.Params.SpeedWeight * (1 - common.Clamp(speed/vmax, 0, 1))
}

func (g *CandidateGenerator) deviationPenalty(a float32) float32 {
	return g.Params.DeviationWeight * common.Abs(a) / g.Params.DiagramHalfWidth
}

func (g *CandidateGenerator) add(out CandidateList, c Candidate, dpen, tpen, spen, ppen float32) CandidateList {
	c.Cost = dpen + tpen + spen + ppen
	g.Debug.addSample(c.Point, c.Abscissa, c.Cost, dpen, tpen, spen, ppen)
	return append(out, c)
}

func (g *CandidateGenerator) appendDirect(f *genFrame, out CandidateList, mode RefinedMode) CandidateList {
	if !g.walkable(f.target) {
		return out
	}
	speed, tti, _, _ := g.lane(f, 0)
	c := Candidate{
		Point: f.target,
		Speed: f.vmax,
		Tti:   tti,
		Mode:  mode,
		Class: CANDIDATE_DIRECT,
	}
	var tpen float32
	if mode != MODE_NORMAL || speed < f.vmax {
		tpen = g.ttiPenalty(tti)
	}
	return g.add(out, c, 0, tpen, 0, g.polarPenalty(f, f.target))
}

func (g *CandidateGenerator) rowPoint(f *genFrame, a float32) common.Vec3 {
	p := f.pos.Add(f.dir.Mul(f.forward)).Add(f.left.Mul(a))
	p[2] = f.pos[2]
	return p
}

func (g *CandidateGenerator) agentHalfWidth(f *genFrame) float32 {
	return f.agent.EffectiveWidth() * 0.5
}

func (g *CandidateGenerator) generateStandard(f *genFrame, out CandidateList) CandidateList {
	p := g.Params
	g.abscissas = StandardAbscissas(p.CandidateSpacing, p.DiagramHalfWidth-g.agentHalfWidth(f), g.abscissas)
	for _, a := range g.abscissas {
		pt := g.rowPoint(f, a)
		if !g.walkable(pt) {
			continue
		}
		speed, tti, obstructed, blocked := g.lane(f, a)
		c := Candidate{Point: pt, Abscissa: a, Tti: tti}
		switch {
		case !obstructed:
			c.Class, c.Mode, c.Speed = CANDIDATE_FREE, MODE_STANDARD_AVOIDING, f.vmax
		case blocked || speed < p.MinSpeed:
			c.Class, c.Mode, c.Speed, c.Blocked = CANDIDATE_BLOCKED, MODE_STANDARD_QUEUEING, 0, true
		case speed >= f.vmax:
			c.Class, c.Mode, c.Speed = CANDIDATE_SLOWING, MODE_STANDARD_AVOIDING, f.vmax
		default:
			c.Class, c.Mode, c.Speed = CANDIDATE_SLOWING, MODE_STANDARD_SLOWING, speed
		}
		out = g.add(out, c, g.deviationPenalty(a), g.ttiPenalty(tti), g.speedPenalty(c.Speed, f.vmax), g.polarPenalty(f, pt))
	}
	return out
}

func (g *CandidateGenerator) generateCrowding(f *genFrame, out CandidateList) CandidateList {
	p := g.Params
	if g.Crowd != nil && g.Crowd.Followee != nil {
		fw := g.Crowd.Followee
		along, _ := f.agent.ProjectedHalfExtents(f.dir, f.left)
		back := fw.Length*0.5 + along + p.ExtraGap + p.CandidateSpacing
		rel := fw.Position.Sub(f.pos)
		a := common.Vdot2D(rel, f.left)
		ahead := common.Vdot2D(rel, f.dir) - back
		if ahead > 0 {
			pt := f.pos.Add(f.dir.Mul(ahead)).Add(f.left.Mul(a))
			pt[2] = f.pos[2]
			if g.walkable(pt) {
				speed := common.Clamp(common.Vdot2D(fw.Velocity, f.dir), p.MinSpeed, f.vmax)
				c := Candidate{Point: pt, Abscissa: a, Speed: speed, Tti: float32(math.Inf(1)), Mode: MODE_CROWDING_FOLLOWING_FLOW, Class: CANDIDATE_FOLLOW}
				out = g.add(out, c, g.deviationPenalty(a), 0, g.speedPenalty(speed, f.vmax), g.polarPenalty(f, pt))
			}
		}
	}

	g.abscissas = StandardAbscissas(p.CandidateSpacing, p.DiagramHalfWidth-g.agentHalfWidth(f), g.abscissas)
	for _, a := range g.abscissas {
		if a >= 0 {
			continue
		}
		pt := g.rowPoint(f, a)
		if !g.walkable(pt) {
			continue
		}
		if _, _, obstructed, _ := g.lane(f, a); obstructed {
			continue
		}
		c := Candidate{Point: pt, Abscissa: a, Speed: f.vmax, Tti: float32(math.Inf(1)), Mode: MODE_CROWDING_AVOID_ON_RIGHT, Class: CANDIDATE_SIDESTEP}
		out = g.add(out, c, g.deviationPenalty(a), 0, 0, g.polarPenalty(f, pt))
	}

	// Last resort: push on slowly through the crowd.
	if g.walkable(f.target) {
		c := Candidate{Point: f.target, Speed: p.MinSpeed, Tti: 0, Mode: MODE_CROWDING_CROWDED, Class: CANDIDATE_CROWDED}
		worst := p.DeviationWeight + p.TtiWeight + p.SpeedWeight + POLAR_PENALTY
		out = g.add(out, c, worst, 0, 0, 0)
	}
	return out
}

func (g *CandidateGenerator) generateRejoining(f *genFrame, out CandidateList) CandidateList {
	for _, deg := range rejoinAngles {
		if deg == 0 {
			out = g.appendDirect(f, out, MODE_NORMAL)
			continue
		}
		rad := float32(deg * math.Pi / 180)
		dir := common.Vrotate2D(f.dir, rad)
		pt := f.pos.Add(dir.Mul(f.forward))
		pt[2] = f.pos[2]
		if !g.walkable(pt) {
			continue
		}
		a := common.Vdot2D(pt.Sub(f.pos), f.left)
		c := Candidate{Point: pt, Abscissa: a, Speed: f.vmax, Tti: float32(math.Inf(1)), Mode: MODE_REJOINING_ORIGINAL_PATH, Class: CANDIDATE_REJOIN}
		var tpen float32
		if math.Abs(deg) < 90 {
			speed, tti, obstructed, _ := g.lane(f, a)
			if obstructed {
				c.Tti = tti
				c.Speed = max(speed, g.Params.MinSpeed)
				tpen = g.ttiPenalty(tti)
			}
		}
		dpen := g.Params.DeviationWeight * float32(math.Abs(deg)/180)
		out = g.add(out, c, dpen, tpen, g.speedPenalty(c.Speed, f.vmax), g.polarPenalty(f, pt))
	}
	return out
}
