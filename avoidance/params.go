package avoidance

import (
	"errors"
	"fmt"
	"math"

	"github.com/gorustyt/gonavbot/navmesh"
)

var ErrInvalidParam = errors.New("avoidance: invalid parameter")

// KY_POLAR_DIAGRAM_WIDTH_RATIO inflates polar sectors relative to the
// combined width of the agent and the collider.
const KY_POLAR_DIAGRAM_WIDTH_RATIO = 1.5

// Params tune the gap avoidance. Distances are in meters, durations in
// seconds, speeds in m/s and angles in radians. Every field may be changed at
// runtime with SetParams and applies from the next diagram rebuild.
type Params struct {
	DistMax                   float32 `yaml:"dist_max"`                     ///< Bodies further than this are ignored.
	DiagramMaxLength          float32 `yaml:"diagram_max_length"`           ///< Look-ahead length of the collision diagram.
	DiagramHalfWidth          float32 `yaml:"diagram_half_width"`           ///< Half width of the look-ahead corridor.
	DiagramRefreshPeriod      float64 `yaml:"diagram_refresh_period"`       ///< Collision and crowd diagrams rebuild period.
	PolarDiagramRefreshPeriod float64 `yaml:"polar_diagram_refresh_period"` ///< Polar diagram rebuild period and sector lifetime.
	PolarDiagramHorizon       float32 `yaml:"polar_diagram_horizon"`        ///< Only colliders hitting within this time get a sector.
	CandidateSpacing          float32 `yaml:"candidate_spacing"`            ///< Spacing of the central candidates.
	ExtraGap                  float32 `yaml:"extra_gap"`                    ///< Clearance added around every body.
	MinSpeed                  float32 `yaml:"min_speed"`
	Courtesy                  float32 `yaml:"courtesy"` ///< 0 never yields, 1 always yields.
	QueueingDelay             float64 `yaml:"queueing_delay"`
	PushingDelay              float64 `yaml:"pushing_delay"`
	StuckDelay                float64 `yaml:"stuck_delay"`
	MaxAngularSpeed           float32 `yaml:"max_angular_speed"`
	MaxCollisionTestsPerFrame int     `yaml:"max_collision_tests_per_frame"`
	CrowdDensityThreshold     int     `yaml:"crowd_density_threshold"`
	CrowdDirectionTolerance   float32 `yaml:"crowd_direction_tolerance"`
	TtiHorizon                float32 `yaml:"tti_horizon"`               ///< Obstructions hitting later are no risk.
	ForcedInvalidationAngle   float32 `yaml:"forced_invalidation_angle"` ///< Target turn forcing a rebuild.
	DeviationWeight           float32 `yaml:"deviation_weight"`
	TtiWeight                 float32 `yaml:"tti_weight"`
	SpeedWeight               float32 `yaml:"speed_weight"`
	AllowCrowding             bool    `yaml:"allow_crowding"`
	ContinuousSpeed           bool    `yaml:"continuous_speed"`

	AllowedTerrain navmesh.TerrainMask `yaml:"allowed_terrain"` ///< Terrains a candidate may stand on.
}

func DefaultParams() Params {
	return Params{
		DistMax:                   10,
		DiagramMaxLength:          8,
		DiagramHalfWidth:          3,
		DiagramRefreshPeriod:      0.1,
		PolarDiagramRefreshPeriod: 0.25,
		PolarDiagramHorizon:       2,
		CandidateSpacing:          0.5,
		ExtraGap:                  0.2,
		MinSpeed:                  0.3,
		Courtesy:                  0.5,
		QueueingDelay:             1,
		PushingDelay:              2,
		StuckDelay:                1,
		MaxAngularSpeed:           2 * math.Pi,
		MaxCollisionTestsPerFrame: 8,
		CrowdDensityThreshold:     6,
		CrowdDirectionTolerance:   math.Pi / 4,
		TtiHorizon:                4,
		ForcedInvalidationAngle:   math.Pi / 6,
		DeviationWeight:           1,
		TtiWeight:                 4,
		SpeedWeight:               1,
		AllowCrowding:             false,
		ContinuousSpeed:           true,
		AllowedTerrain:            navmesh.TERRAIN_ALL,
	}
}

func invalid(name string, v any) error {
	return fmt.Errorf("%s=%v: %w", name, v, ErrInvalidParam)
}

// Validate rejects configurations that cannot work for a body of the given width.
func (p *Params) Validate(bodyWidth float32) error {
	switch {
	case !(p.DistMax > 0):
		return invalid("DistMax", p.DistMax)
	case !(p.DiagramMaxLength > 0):
		return invalid("DiagramMaxLength", p.DiagramMaxLength)
	case p.DiagramHalfWidth < bodyWidth || !(p.DiagramHalfWidth > 0):
		return fmt.Errorf("DiagramHalfWidth=%v smaller than body width %v: %w", p.DiagramHalfWidth, bodyWidth, ErrInvalidParam)
	case p.DiagramRefreshPeriod < 0:
		return invalid("DiagramRefreshPeriod", p.DiagramRefreshPeriod)
	case p.PolarDiagramRefreshPeriod < 0:
		return invalid("PolarDiagramRefreshPeriod", p.PolarDiagramRefreshPeriod)
	case p.PolarDiagramHorizon < 0:
		return invalid("PolarDiagramHorizon", p.PolarDiagramHorizon)
	case !(p.CandidateSpacing > 0):
		return invalid("CandidateSpacing", p.CandidateSpacing)
	case p.ExtraGap < 0:
		return invalid("ExtraGap", p.ExtraGap)
	case p.MinSpeed < 0:
		return invalid("MinSpeed", p.MinSpeed)
	case p.Courtesy < 0 || p.Courtesy > 1:
		return invalid("Courtesy", p.Courtesy)
	case p.QueueingDelay < 0:
		return invalid("QueueingDelay", p.QueueingDelay)
	case p.PushingDelay < 0:
		return invalid("PushingDelay", p.PushingDelay)
	case p.StuckDelay < 0:
		return invalid("StuckDelay", p.StuckDelay)
	case !(p.MaxAngularSpeed > 0):
		return invalid("MaxAngularSpeed", p.MaxAngularSpeed)
	case p.MaxCollisionTestsPerFrame < 1:
		return invalid("MaxCollisionTestsPerFrame", p.MaxCollisionTestsPerFrame)
	case p.CrowdDensityThreshold < 1:
		return invalid("CrowdDensityThreshold", p.CrowdDensityThreshold)
	case p.CrowdDirectionTolerance < 0 || p.CrowdDirectionTolerance > math.Pi/2:
		return invalid("CrowdDirectionTolerance", p.CrowdDirectionTolerance)
	case !(p.TtiHorizon > 0):
		return invalid("TtiHorizon", p.TtiHorizon)
	case p.ForcedInvalidationAngle < 0:
		return invalid("ForcedInvalidationAngle", p.ForcedInvalidationAngle)
	case p.DeviationWeight < 0 || p.TtiWeight < 0 || p.SpeedWeight < 0:
		return fmt.Errorf("negative cost weight: %w", ErrInvalidParam)
	}
	return nil
}
