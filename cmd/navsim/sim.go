package main

import (
	"context"
	"fmt"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/common/logger"
	"github.com/gorustyt/gonavbot/config"
	"github.com/gorustyt/gonavbot/lpf"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathobject"
	"github.com/gorustyt/gonavbot/spatial"
	"github.com/gorustyt/gonavbot/telemetry"
	"github.com/gorustyt/gonavbot/world"
)

type timedDoor struct {
	door    *pathobject.Door
	closeAt float64
}

// sim is a scenario instantiated into a world.
type sim struct {
	cfg       config.Config
	mesh      *navmesh.Mesh
	graph     *navgraph.Graph
	world     *world.World
	doors     []timedDoor
	obstacles []*spatial.Obstacle
	recorder  *telemetry.Recorder
}

func boxVerts(b config.Box) []common.Vec3 {
	return []common.Vec3{
		{b.Min[0], b.Min[1], 0},
		{b.Max[0], b.Min[1], 0},
		{b.Max[0], b.Max[1], 0},
		{b.Min[0], b.Max[1], 0},
	}
}

func newSim(cfg config.Config, recordEvery int) (*sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc := &cfg.Scenario
	mesh := navmesh.NewMesh(navmesh.Rect(sc.Bounds.Min, sc.Bounds.Max, navmesh.TERRAIN_DEFAULT))
	for _, w := range sc.Walls {
		mesh.AddObstacle(boxVerts(w))
	}

	objects := pathobject.NewRegistry()
	s := &sim{cfg: cfg, mesh: mesh, recorder: telemetry.NewRecorder(recordEvery)}
	var gates []navgraph.Gate
	for _, d := range sc.Doors {
		door := pathobject.NewDoor(pathobject.ID(d.ID), d.Open, d.Cost, objects)
		s.doors = append(s.doors, timedDoor{door: door, closeAt: d.CloseAt})
		gates = append(gates, navgraph.Gate{BMin: d.Box.Min, BMax: d.Box.Max, PathObject: door.ID()})
	}
	// One spacing of margin keeps the lattice off the outer border.
	margin := sc.GridSpacing
	s.graph = navgraph.BuildGrid(mesh, navgraph.GridConfig{
		BMin:      common.Vec2{sc.Bounds.Min[0] + margin, sc.Bounds.Min[1] + margin},
		BMax:      common.Vec2{sc.Bounds.Max[0] - margin, sc.Bounds.Max[1] - margin},
		Spacing:   sc.GridSpacing,
		CellSize:  sc.CellSize,
		Diagonals: true,
		Gates:     gates,
	})

	areas := lpf.NewAreaSet()
	for i, a := range sc.Areas {
		areas.Add(&lpf.Area{ID: lpf.AreaID(i + 1), Verts: boxVerts(a)})
	}

	s.world = world.New(cfg.World, mesh, s.graph, areas, objects)
	for _, o := range sc.Obstacles {
		obs := &spatial.Obstacle{
			ID:          spatial.ObstacleID(o.ID),
			Position:    common.Vec3{o.Position[0], o.Position[1], 0},
			HalfExtents: o.HalfExtents,
			Orientation: o.Orientation,
			Velocity:    common.Vec3{o.Velocity[0], o.Velocity[1], 0},
		}
		s.obstacles = append(s.obstacles, obs)
		s.world.Registry().AddObstacle(obs)
	}
	for _, bs := range sc.Bots {
		body := &spatial.Body{
			ID:       spatial.BodyID(bs.ID),
			Position: common.Vec3{bs.Start[0], bs.Start[1], 0},
			Shape:    spatial.ShapeCircular,
			Radius:   bs.Radius,
			Width:    bs.Width,
			Length:   bs.Length,
			MaxSpeed: bs.MaxSpeed,
		}
		if bs.Shape == "rectangular" {
			body.Shape = spatial.ShapeRectangular
		}
		goal := common.Vec3{bs.Goal[0], bs.Goal[1], 0}
		body.Orientation = common.Heading2D(goal.Sub(body.Position))
		b, err := s.world.AddBot(body, cfg.Avoidance, cfg.PathFinder)
		if err != nil {
			return nil, err
		}
		b.SetDestination(goal)
	}
	logger.Info("navsim: scenario %s with %d bots, %d graph vertices", sc.Name, len(sc.Bots), s.graph.VertexCount())
	return s, nil
}

// moveObstacles advances the obstacles, bouncing them off the bounds.
func (s *sim) moveObstacles(dt float64) {
	b := s.cfg.Scenario.Bounds
	for _, o := range s.obstacles {
		o.Position = o.Position.Add(o.Velocity.Mul(float32(dt)))
		for axis := 0; axis < 2; axis++ {
			if (o.Position[axis] < b.Min[axis] && o.Velocity[axis] < 0) || (o.Position[axis] > b.Max[axis] && o.Velocity[axis] > 0) {
				o.Velocity[axis] = -o.Velocity[axis]
			}
		}
	}
}

func (s *sim) step(ctx context.Context) error {
	sc := &s.cfg.Scenario
	now := s.world.Now()
	for _, d := range s.doors {
		if d.closeAt >= 0 && now >= d.closeAt && d.door.IsOpen() {
			d.door.Close()
			logger.Info("navsim: door %d closed at %.2f", d.door.ID(), now)
		}
	}
	s.moveObstacles(sc.Dt)
	if sc.Parallel {
		if err := s.world.UpdateParallel(ctx, sc.Dt); err != nil {
			return fmt.Errorf("frame %d: %w", s.world.Frame(), err)
		}
	} else {
		s.world.Update(sc.Dt)
	}
	s.recorder.Capture(s.world)
	return nil
}

func (s *sim) allArrived() bool {
	for _, b := range s.world.Bots() {
		if !b.Arrived() {
			return false
		}
	}
	return true
}

// run steps until every bot arrived or the scenario duration elapsed.
func (s *sim) run(ctx context.Context) error {
	sc := &s.cfg.Scenario
	for s.world.Now() < sc.Duration && !s.allArrived() {
		if err := s.step(ctx); err != nil {
			return err
		}
	}
	logger.Info("navsim: %s finished at %.2f after %d frames", sc.Name, s.world.Now(), s.world.Frame())
	return nil
}
