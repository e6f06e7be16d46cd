package pathfinder

import (
	"errors"
	"fmt"

	"github.com/gorustyt/gonavbot/navmesh"
)

var ErrInvalidParam = errors.New("pathfinder: invalid parameter")

// Params tune planning and following. Distances are in meters, periods in seconds.
type Params struct {
	NbEdgesPerAstar          int     `yaml:"nb_edges_per_astar"` ///< Edges relaxed per FindNextMove call.
	DestinationMoveThreshold float32 `yaml:"destination_move_threshold"`
	AccidentDetectionPeriod  float64 `yaml:"accident_detection_period"`
	AccidentDistance         float32 `yaml:"accident_distance"` ///< Drift from the followed segment counted as an accident.
	POEdgeStatusCheckPeriod  float64 `yaml:"po_edge_status_check_period"`
	StreamingCheckPeriod     float64 `yaml:"streaming_check_period"`
	AstarNewAttemptPeriod    float64 `yaml:"astar_new_attempt_period"` ///< Wait before retrying a failed computation.
	NodeReachedRadius        float32 `yaml:"node_reached_radius"`
	ArrivalPrecision         float32 `yaml:"arrival_precision"`
	MaxNodes                 int     `yaml:"max_nodes"`           ///< A* node pool size.
	StartSearchRadius        float32 `yaml:"start_search_radius"` ///< Radius searched for the start and destination vertices.

	AllowedTerrain navmesh.TerrainMask `yaml:"allowed_terrain"`
}

func DefaultParams() Params {
	return Params{
		NbEdgesPerAstar:          64,
		DestinationMoveThreshold: 1,
		AccidentDetectionPeriod:  0.5,
		AccidentDistance:         3,
		POEdgeStatusCheckPeriod:  1,
		StreamingCheckPeriod:     1,
		AstarNewAttemptPeriod:    2,
		NodeReachedRadius:        0.5,
		ArrivalPrecision:         0.3,
		MaxNodes:                 4096,
		StartSearchRadius:        10,
		AllowedTerrain:           navmesh.TERRAIN_ALL,
	}
}

func (p *Params) Validate() error {
	switch {
	case p.NbEdgesPerAstar < 1:
		return fmt.Errorf("NbEdgesPerAstar=%d: %w", p.NbEdgesPerAstar, ErrInvalidParam)
	case p.MaxNodes < 2:
		return fmt.Errorf("MaxNodes=%d: %w", p.MaxNodes, ErrInvalidParam)
	case !(p.StartSearchRadius > 0):
		return fmt.Errorf("StartSearchRadius=%v: %w", p.StartSearchRadius, ErrInvalidParam)
	case p.NodeReachedRadius < 0 || p.ArrivalPrecision < 0 || p.DestinationMoveThreshold < 0:
		return fmt.Errorf("negative radius: %w", ErrInvalidParam)
	case !(p.AccidentDistance > 0):
		return fmt.Errorf("AccidentDistance=%v: %w", p.AccidentDistance, ErrInvalidParam)
	case p.AccidentDetectionPeriod < 0 || p.POEdgeStatusCheckPeriod < 0 || p.StreamingCheckPeriod < 0 || p.AstarNewAttemptPeriod < 0:
		return fmt.Errorf("negative period: %w", ErrInvalidParam)
	}
	return nil
}
