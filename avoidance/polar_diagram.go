package avoidance

import (
	"math"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/spatial"
)

// PolarSector is a blocked range of directions around Axis.
type PolarSector struct {
	Axis         common.Vec2
	CosHalfAngle float32
	BodyID       spatial.BodyID
	Tti          float32
}

// Contains reports whether the planar unit direction dir lies in the sector.
func (s *PolarSector) Contains(dir common.Vec3) bool {
	return s.Axis[0]*dir[0]+s.Axis[1]*dir[1] >= s.CosHalfAngle
}

// PolarDiagram holds the directions occupied by imminent colliders. Sectors
// are only valid until ExpiresAt.
type PolarDiagram struct {
	sectors   []PolarSector
	BuiltAt   float64
	ExpiresAt float64
}

func (d *PolarDiagram) Reset() {
	d.sectors = d.sectors[:0]
	d.ExpiresAt = 0
}

// Build turns the obstructions hitting within PolarDiagramHorizon into sectors.
func (d *PolarDiagram) Build(now float64, agent *spatial.Body, obstructions []Obstruction, p *Params) {
	d.sectors = d.sectors[:0]
	d.BuiltAt = now
	d.ExpiresAt = now + p.PolarDiagramRefreshPeriod
	agentHalfWidth := agent.EffectiveWidth() * 0.5
	for i := range obstructions {
		o := &obstructions[i]
		if o.Tti > p.PolarDiagramHorizon {
			continue
		}
		// Where the body will be at contact, seen from the agent now.
		contact := o.Position.Add(o.Velocity.Mul(o.Tti))
		rel := contact.Sub(agent.Position)
		dist := common.Vlen2D(rel)
		if dist < 1e-4 {
			// On top of the agent, every direction is blocked.
			d.sectors = append(d.sectors, PolarSector{Axis: common.Vec2{1, 0}, CosHalfAngle: -1, BodyID: o.BodyID, Tti: o.Tti})
			continue
		}
		axis := common.Vnormalize2D(rel)
		half := KY_POLAR_DIAGRAM_WIDTH_RATIO * (agentHalfWidth + o.Radius)
		sinHalf := float64(min(1, half/dist))
		d.sectors = append(d.sectors, PolarSector{
			Axis:         common.Vec2{axis[0], axis[1]},
			CosHalfAngle: float32(math.Cos(math.Asin(sinHalf))),
			BodyID:       o.BodyID,
			Tti:          o.Tti,
		})
	}
}

// Sectors returns the live sectors, none once the diagram expired.
func (d *PolarDiagram) Sectors(now float64) []PolarSector {
	if now >= d.ExpiresAt && now != d.BuiltAt {
		return nil
	}
	return d.sectors
}

// Blocked reports whether dir falls in a live sector.
func (d *PolarDiagram) Blocked(now float64, dir common.Vec3) bool {
	for _, s := range d.Sectors(now) {
		if s.Contains(dir) {
			return true
		}
	}
	return false
}
