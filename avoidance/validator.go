package avoidance

import (
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/lpf"
	"github.com/gorustyt/gonavbot/navmesh"
)

const (
	stepMeshFromAgent = iota ///< Navmesh test agent -> candidate.
	stepMeshToTarget         ///< Navmesh test candidate -> raw target.
	stepLPF                  ///< LPF test agent -> candidate.
	stepCount
)

// ValidationContext is the static world a candidate is checked against.
type ValidationContext struct {
	From     common.Vec3 ///< Agent position.
	Target   common.Vec3 ///< Raw target.
	Geometry navmesh.StaticGeometry
	Areas    *lpf.AreaSet
	Boundary *lpf.LocalBoundary
}

// Validator walks a candidate list in order and stops at the first candidate
// passing every static test. Its cursor survives between frames so a list is
// never validated twice when the test budget runs out.
type Validator struct {
	cursor         int
	step           int
	testsThisFrame int
	totalTests     int
	adopted        int
}

func (v *Validator) Reset() {
	v.cursor = 0
	v.step = 0
	v.adopted = -1
}

// BeginFrame resets the per-frame test counter.
func (v *Validator) BeginFrame() {
	v.testsThisFrame = 0
}

func (v *Validator) Cursor() int         { return v.cursor }
func (v *Validator) TestsThisFrame() int { return v.testsThisFrame }
func (v *Validator) TotalTests() int     { return v.totalTests }

// Adopted is the index of the candidate the last run settled on, -1 if none.
func (v *Validator) Adopted() int { return v.adopted }

func (v *Validator) needsTest(step int, c *Candidate, ctx *ValidationContext) bool {
	switch step {
	case stepMeshFromAgent:
		return ctx.Geometry != nil
	case stepMeshToTarget:
		return ctx.Geometry != nil && common.Vdist2DSqr(c.Point, ctx.Target) > 1e-6
	case stepLPF:
		return ctx.Areas != nil && ctx.Areas.Len() > 0 && ctx.Boundary != nil
	}
	return false
}

func (v *Validator) test(step int, c *Candidate, ctx *ValidationContext) bool {
	switch step {
	case stepMeshFromAgent:
		return ctx.Geometry.IsSegmentClear(ctx.From, c.Point)
	case stepMeshToTarget:
		return ctx.Geometry.IsSegmentClear(c.Point, ctx.Target)
	case stepLPF:
		return ctx.Boundary.IsSegmentClear(ctx.From, c.Point)
	}
	return true
}

// Run validates list from the saved cursor, performing at most maxTests
// collision tests. It returns the outcome and the adopted index.
func (v *Validator) Run(list CandidateList, ctx *ValidationContext, maxTests int) (Outcome, int) {
	for v.cursor < len(list) {
		c := &list[v.cursor]
		valid := true
		if v.step == 0 && ctx.Areas != nil && ctx.Areas.Contains(c.Point) {
			valid = false
		}
		for valid && v.step < stepCount {
			if v.needsTest(v.step, c, ctx) {
				if v.testsThisFrame >= maxTests {
					return OUTCOME_PENDING, -1
				}
				v.testsThisFrame++
				v.totalTests++
				if !v.test(v.step, c, ctx) {
					valid = false
					break
				}
			}
			v.step++
		}
		if valid {
			v.adopted = v.cursor
			if c.Blocked {
				return OUTCOME_BLOCKED, v.cursor
			}
			return OUTCOME_FOUND, v.cursor
		}
		v.cursor++
		v.step = 0
	}
	return OUTCOME_STATIC_BLOCKED, -1
}
