// Package avoidance steers an agent toward a target point while avoiding the
// dynamic bodies around it, choosing gaps in perception diagrams.
package avoidance

import (
	"math"

	"github.com/gorustyt/gonavbot/action"
	"github.com/gorustyt/gonavbot/budget"
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/common/logger"
	"github.com/gorustyt/gonavbot/lpf"
	"github.com/gorustyt/gonavbot/spatial"
)

const arrivalEps = 1e-3

type Option func(g *GapDynamicAvoidance)

// WithDebugData records the candidates of every generation into d.
func WithDebugData(d *DebugData) Option {
	return func(g *GapDynamicAvoidance) { g.debug = d }
}

// WithTargetOnly makes Goto refine the target and speed only, leaving the
// rotation to the caller.
func WithTargetOnly() Option {
	return func(g *GapDynamicAvoidance) { g.targetOnly = true }
}

// GapDynamicAvoidance is the per-agent avoidance modifier. It is not safe for
// concurrent use, each agent owns one.
type GapDynamicAvoidance struct {
	params    Params
	bodyWidth float32

	collision  CollisionDiagram
	crowd      CrowdModule
	polar      PolarDiagram
	generator  CandidateGenerator
	validator  Validator
	boundary   *lpf.LocalBoundary
	candidates CandidateList
	debug      *DebugData
	targetOnly bool

	// Scratch buffers reused across frames.
	bodies    []*spatial.Body
	obstacles []*spatial.Obstacle
	obsBodies []spatial.Body
	all       []*spatial.Body

	mode        RefinedMode
	strategy    GlobalMode
	risk        bool
	crowded     bool
	lastOutcome Outcome

	nextDiagramUpdate float64
	nextPolarUpdate   float64
	invalidated       bool
	buildDir          common.Vec3

	pending       bool
	pendingTarget common.Vec3

	blockedSince     float64
	lastStuckAttempt float64
	stuckRetries     int

	hasTarget bool
	daTarget  common.Vec3 ///< Adopted avoidance target.
	daSpeed   float32
	adopted   Candidate
}

func NewGapDynamicAvoidance(p Params, bodyWidth float32, opts ...Option) (*GapDynamicAvoidance, error) {
	if err := p.Validate(bodyWidth); err != nil {
		logger.Error("avoidance: rejected params: %v", err)
		return nil, err
	}
	g := &GapDynamicAvoidance{
		params:    p,
		bodyWidth: bodyWidth,
		boundary:  lpf.NewLocalBoundary(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.generator = CandidateGenerator{
		Params:    &g.params,
		Collision: &g.collision,
		Crowd:     &g.crowd,
		Polar:     &g.polar,
		Debug:     g.debug,
	}
	g.Reset()
	return g, nil
}

// Reset drops every per-agent state and goes back to Normal.
func (g *GapDynamicAvoidance) Reset() {
	g.collision.Reset()
	g.crowd.Reset()
	g.polar.Reset()
	g.validator.Reset()
	g.boundary.Reset()
	g.candidates = g.candidates[:0]
	g.mode = MODE_NORMAL
	g.strategy = GLOBAL_NORMAL
	g.risk, g.crowded = false, false
	g.lastOutcome = OUTCOME_NONE
	g.pending = false
	g.blockedSince = -1
	g.lastStuckAttempt = 0
	g.stuckRetries = 0
	g.hasTarget = false
	g.Invalidate()
}

// Invalidate forces the diagrams to be rebuilt on the next frame.
func (g *GapDynamicAvoidance) Invalidate() {
	g.invalidated = true
}

func (g *GapDynamicAvoidance) Params() Params { return g.params }

// SetParams replaces the parameters. They apply from the next diagram rebuild,
// which is forced.
func (g *GapDynamicAvoidance) SetParams(p Params) error {
	if err := p.Validate(g.bodyWidth); err != nil {
		logger.Error("avoidance: rejected params: %v", err)
		return err
	}
	g.params = p
	g.Invalidate()
	return nil
}

func (g *GapDynamicAvoidance) SetAllowCrowding(allow bool) {
	g.params.AllowCrowding = allow
	g.Invalidate()
}

func (g *GapDynamicAvoidance) SetContinuousSpeed(continuous bool) {
	g.params.ContinuousSpeed = continuous
	g.Invalidate()
}

func (g *GapDynamicAvoidance) Mode() RefinedMode                   { return g.mode }
func (g *GapDynamicAvoidance) GlobalMode() GlobalMode              { return GetGlobalMode(g.mode) }
func (g *GapDynamicAvoidance) Strategy() GlobalMode                { return g.strategy }
func (g *GapDynamicAvoidance) Risk() bool                          { return g.risk }
func (g *GapDynamicAvoidance) LastOutcome() Outcome                { return g.lastOutcome }
func (g *GapDynamicAvoidance) CollisionDiagram() *CollisionDiagram { return &g.collision }
func (g *GapDynamicAvoidance) CrowdDiagram() *CrowdModule          { return &g.crowd }
func (g *GapDynamicAvoidance) PolarDiagram() *PolarDiagram         { return &g.polar }
func (g *GapDynamicAvoidance) Candidates() CandidateList           { return g.candidates }
func (g *GapDynamicAvoidance) Validator() *Validator               { return &g.validator }
func (g *GapDynamicAvoidance) StuckRetries() int                   { return g.stuckRetries }
func (g *GapDynamicAvoidance) LastStuckAttempt() float64           { return g.lastStuckAttempt }
func (g *GapDynamicAvoidance) AdoptedCandidate() Candidate         { return g.adopted }

// TargetPoint is the currently adopted avoidance target.
func (g *GapDynamicAvoidance) TargetPoint() (common.Vec3, bool) { return g.daTarget, g.hasTarget }

// Goto refines target for body and writes the resulting action. It returns
// true when the action is complete, false when only the target point and
// speed were written and the caller still has to steer.
func (g *GapDynamicAvoidance) Goto(f *Frame, body *spatial.Body, target common.Vec3, act *action.Action) bool {
	g.validator.BeginFrame()
	now := f.Now
	toTarget := target.Sub(body.Position)
	if common.Vlen2D(toTarget) < arrivalEps {
		g.pending = false
		g.hasTarget = false
		return g.writeAction(f, body, target, 0, act)
	}
	dir := common.Vnormalize2D(toTarget)

	// A list generated for another target is not worth finishing.
	if g.pending && common.Vdist2DSqr(target, g.pendingTarget) > 1e-4 {
		g.pending = false
	}
	stuckWaiting := g.mode == MODE_STUCK && now < g.lastStuckAttempt+g.params.StuckDelay
	if g.mode == MODE_STUCK && !stuckWaiting && !g.pending {
		// Retry from scratch.
		g.invalidated = true
		g.lastStuckAttempt = now
		g.stuckRetries++
	}

	g.updateDiagrams(f, body, dir)
	g.risk, _ = g.collision.Risk(g.params.TtiHorizon)
	g.crowded = g.params.AllowCrowding && g.crowd.Density >= g.params.CrowdDensityThreshold
	sensors := Sensors{Risk: g.risk, Crowded: g.crowded}

	if !g.pending && !stuckWaiting {
		g.strategy = SelectStrategy(g.mode, sensors)
		g.generator.Geometry = f.Geometry
		g.candidates = g.generator.Generate(g.strategy, now, body, target, g.candidates)
		g.validator.Reset()
		g.pending = true
		g.pendingTarget = target
	}

	outcome := OUTCOME_NONE
	if g.pending {
		outcome = g.validate(f, body, target)
	}
	g.lastOutcome = outcome

	switch outcome {
	case OUTCOME_BLOCKED:
		if g.blockedSince < 0 {
			g.blockedSince = now
		}
	case OUTCOME_FOUND, OUTCOME_STATIC_BLOCKED:
		g.blockedSince = -1
	}
	sensors.Outcome = outcome
	sensors.AdoptedMode = g.adopted.Mode
	if g.blockedSince >= 0 {
		sensors.BlockedFor = now - g.blockedSince
	}
	g.setMode(f, body, NextMode(g.mode, sensors, &g.params))

	point, speed := g.decide(outcome, body, target)
	return g.writeAction(f, body, point, speed, act)
}

func (g *GapDynamicAvoidance) validate(f *Frame, body *spatial.Body, target common.Vec3) Outcome {
	ctx := ValidationContext{
		From:     body.Position,
		Target:   target,
		Geometry: f.Geometry,
		Areas:    f.Areas,
		Boundary: g.boundary,
	}
	if f.Areas != nil && f.Areas.Len() > 0 && !g.boundary.IsValid(body.Position, g.params.DistMax, f.Areas) {
		g.boundary.Update(body.Position, g.params.DistMax, f.Areas)
	}
	grant := f.Budget.Request(budget.TaskAvoidance, g.params.MaxCollisionTestsPerFrame)
	outcome, idx := g.validator.Run(g.candidates, &ctx, grant)
	f.Budget.Refund(budget.TaskAvoidance, grant-g.validator.TestsThisFrame())
	if outcome != OUTCOME_PENDING {
		g.pending = false
	}
	if idx >= 0 {
		g.adopted = g.candidates[idx]
	}
	return outcome
}

func (g *GapDynamicAvoidance) updateDiagrams(f *Frame, body *spatial.Body, dir common.Vec3) {
	now := f.Now
	due := g.invalidated || now >= g.nextDiagramUpdate
	if !due {
		cosTurn := float32(math.Cos(float64(g.params.ForcedInvalidationAngle)))
		due = common.Vdot2D(dir, g.buildDir) < cosTurn
	}
	forcePolar := g.invalidated
	if due {
		g.gather(f, body)
		g.collision.Build(now, body, dir, g.all, &g.params)
		g.crowd.Build(now, body, dir, g.bodies, &g.params)
		g.nextDiagramUpdate = now + g.params.DiagramRefreshPeriod
		g.buildDir = dir
		g.invalidated = false
	}
	if forcePolar || now >= g.nextPolarUpdate {
		g.polar.Build(now, body, g.collision.Obstructions, &g.params)
		g.nextPolarUpdate = now + g.params.PolarDiagramRefreshPeriod
	}
}

func (g *GapDynamicAvoidance) gather(f *Frame, body *spatial.Body) {
	g.bodies = g.bodies[:0]
	g.obstacles = g.obstacles[:0]
	g.obsBodies = g.obsBodies[:0]
	g.all = g.all[:0]
	if f.Query == nil {
		return
	}
	g.bodies = f.Query.GetNearbyBodies(body.Position, g.params.DistMax, g.bodies)
	g.obstacles = f.Query.GetNearbyObstacles(body.Position, g.params.DistMax, g.obstacles)
	for _, o := range g.obstacles {
		g.obsBodies = append(g.obsBodies, o.AsBody())
	}
	g.all = append(g.all, g.bodies...)
	for i := range g.obsBodies {
		g.all = append(g.all, &g.obsBodies[i])
	}
}

func (g *GapDynamicAvoidance) setMode(f *Frame, body *spatial.Body, next RefinedMode) {
	if next == g.mode {
		return
	}
	prev := g.mode
	g.mode = next
	if next == MODE_STUCK {
		g.lastStuckAttempt = f.Now
	}
	logger.Debug("avoidance: body %d mode %s -> %s at %.2f", body.ID, prev, next, f.Now)
	if f.Observer != nil {
		f.Observer.OnModeChange(ModeChange{BodyID: body.ID, From: prev, To: next, Time: f.Now})
	}
}

func (g *GapDynamicAvoidance) decide(outcome Outcome, body *spatial.Body, target common.Vec3) (common.Vec3, float32) {
	switch {
	case outcome == OUTCOME_FOUND:
		g.daTarget = g.adopted.Point
		g.daSpeed = g.adaptSpeed(g.adopted.Speed, body.MaxSpeed)
		g.hasTarget = true
	case g.mode == MODE_STANDARD_QUEUEING:
		g.daTarget, g.daSpeed, g.hasTarget = target, 0, true
	case g.mode == MODE_STANDARD_PUSHING:
		g.daTarget, g.daSpeed, g.hasTarget = target, min(g.params.MinSpeed, body.MaxSpeed), true
	case g.mode == MODE_STUCK:
		g.daTarget, g.daSpeed, g.hasTarget = target, 0, false
	case !g.hasTarget:
		// Nothing adopted yet, wait for the validation to finish.
		return target, 0
	}
	return g.daTarget, g.daSpeed
}

func (g *GapDynamicAvoidance) adaptSpeed(speed, vmax float32) float32 {
	if speed <= 0 {
		return 0
	}
	if !g.params.ContinuousSpeed {
		return vmax
	}
	urgency := float32(0)
	if tti := g.collision.MinTti(); tti <= g.params.TtiHorizon {
		urgency = 1 - tti/g.params.TtiHorizon
	}
	v := speed * (1 - g.params.Courtesy*urgency)
	lo := min(g.params.MinSpeed, speed)
	return common.Clamp(v, lo, max(lo, vmax))
}

func (g *GapDynamicAvoidance) writeAction(f *Frame, body *spatial.Body, point common.Vec3, speed float32, act *action.Action) bool {
	act.Set(action.NewTargetPoint(point))
	act.Set(action.NewSpeed(speed))
	if g.targetOnly {
		return false
	}
	heading := body.Orientation
	if common.Vdist2DSqr(point, body.Position) > arrivalEps*arrivalEps {
		desired := common.Heading2D(point.Sub(body.Position))
		maxTurn := g.params.MaxAngularSpeed * float32(f.Dt)
		delta := common.Clamp(common.WrapAngle(desired-body.Orientation), -maxTurn, maxTurn)
		heading = common.WrapAngle(body.Orientation + delta)
	}
	act.Set(action.NewRotation(heading))
	return true
}
