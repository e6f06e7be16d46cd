package avoidance

import (
	"math"
	"sort"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/spatial"
)

const movingEps = 0.05

// BodyRecord is the snapshot of a neighbour kept by the crowd diagram.
type BodyRecord struct {
	BodyID      spatial.BodyID
	Position    common.Vec3
	Velocity    common.Vec3
	Shape       spatial.ShapeKind
	Orientation float32
	Width       float32
	Length      float32
	Forward     float32 ///< Distance ahead of the agent.
	Lateral     float32 ///< Abscissa of the body.
	Score       float32 ///< Relevance, higher is closer and more in the way.
}

// CrowdModule splits the neighbours by their direction of motion relative to
// the agent. Density counts every body inside the look-ahead corridor.
type CrowdModule struct {
	Same     []BodyRecord
	Opposite []BodyRecord
	Followee *BodyRecord
	Density  int
	BuiltAt  float64
}

func (m *CrowdModule) Reset() {
	m.Same = m.Same[:0]
	m.Opposite = m.Opposite[:0]
	m.Followee = nil
	m.Density = 0
}

func (m *CrowdModule) Empty() bool {
	return len(m.Same) == 0 && len(m.Opposite) == 0 && m.Density == 0
}

func (m *CrowdModule) Build(now float64, agent *spatial.Body, dir common.Vec3, bodies []*spatial.Body, p *Params) {
	m.Reset()
	m.BuiltAt = now
	d := common.Vnormalize2D(dir)
	n := common.Vleft2D(d)
	cosTol := float32(math.Cos(float64(p.CrowdDirectionTolerance)))

	for _, b := range bodies {
		if b.ID == agent.ID {
			continue
		}
		rel := b.Position.Sub(agent.Position)
		dist := common.Vlen2D(rel)
		if dist > p.DistMax {
			continue
		}
		rec := BodyRecord{
			BodyID:      b.ID,
			Position:    b.Position,
			Velocity:    b.Velocity,
			Shape:       b.Shape,
			Orientation: b.Orientation,
			Width:       b.EffectiveWidth(),
			Length:      b.Length,
			Forward:     common.Vdot2D(rel, d),
			Lateral:     common.Vdot2D(rel, n),
		}
		if b.Shape == spatial.ShapeCircular {
			rec.Length = 2 * b.Radius
		}
		inCorridor := rec.Forward >= 0 && rec.Forward <= p.DiagramMaxLength && common.Abs(rec.Lateral) <= p.DiagramHalfWidth
		if inCorridor {
			m.Density++
		}
		rec.Score = 1 - dist/p.DistMax
		if !inCorridor {
			rec.Score *= 0.5
		}

		speed := b.Speed()
		if speed < movingEps {
			continue
		}
		cosAngle := common.Vdot2D(b.Velocity, d) / speed
		switch {
		case cosAngle >= cosTol:
			m.Same = append(m.Same, rec)
		case cosAngle <= -cosTol:
			m.Opposite = append(m.Opposite, rec)
		}
	}
	byScore := func(recs []BodyRecord) {
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].Score != recs[j].Score {
				return recs[i].Score > recs[j].Score
			}
			return recs[i].BodyID < recs[j].BodyID
		})
	}
	byScore(m.Same)
	byScore(m.Opposite)

	for i := range m.Same {
		r := &m.Same[i]
		if r.Forward > 0 && r.Forward <= p.DiagramMaxLength && common.Abs(r.Lateral) <= p.DiagramHalfWidth {
			m.Followee = r
			break
		}
	}
}
