// Package world owns the bots of a simulation and runs their per-frame
// decision and movement, sequentially or on worker goroutines.
package world

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gorustyt/gonavbot/action"
	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/budget"
	"github.com/gorustyt/gonavbot/common/logger"
	"github.com/gorustyt/gonavbot/lpf"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathfinder"
	"github.com/gorustyt/gonavbot/pathobject"
	"github.com/gorustyt/gonavbot/spatial"
)

var ErrDuplicateBot = errors.New("world: duplicate bot id")

type Config struct {
	CellSize float32       `yaml:"cell_size"` ///< Proximity grid cell size.
	Workers  int           `yaml:"workers"`   ///< Goroutines of UpdateParallel, 0 uses GOMAXPROCS.
	Budget   budget.Params `yaml:"budget"`
}

func DefaultConfig() Config {
	return Config{
		CellSize: 2,
		Budget:   budget.DefaultParams(),
	}
}

// World is driven by a single goroutine calling Update or UpdateParallel.
type World struct {
	cfg      Config
	now      float64
	frame    uint64
	head     int
	registry *spatial.Registry
	geometry navmesh.StaticGeometry
	graph    *navgraph.Graph
	areas    *lpf.AreaSet
	objects  *pathobject.Registry
	budget   *budget.TimeManager
	bots     []*Bot

	obsMu     sync.Mutex
	observers []avoidance.ModeObserver
}

func New(cfg Config, geometry navmesh.StaticGeometry, graph *navgraph.Graph, areas *lpf.AreaSet, objects *pathobject.Registry) *World {
	if cfg.CellSize <= 0 {
		cfg.CellSize = DefaultConfig().CellSize
	}
	if areas == nil {
		areas = lpf.NewAreaSet()
	}
	if objects == nil {
		objects = pathobject.NewRegistry()
	}
	return &World{
		cfg:      cfg,
		registry: spatial.NewRegistry(cfg.CellSize),
		geometry: geometry,
		graph:    graph,
		areas:    areas,
		objects:  objects,
		budget:   budget.NewTimeManager(cfg.Budget),
	}
}

func (w *World) Now() float64                     { return w.now }
func (w *World) Frame() uint64                    { return w.frame }
func (w *World) Bots() []*Bot                     { return w.bots }
func (w *World) Registry() *spatial.Registry      { return w.registry }
func (w *World) Geometry() navmesh.StaticGeometry { return w.geometry }
func (w *World) Graph() *navgraph.Graph           { return w.graph }
func (w *World) Areas() *lpf.AreaSet              { return w.areas }
func (w *World) Objects() *pathobject.Registry    { return w.objects }
func (w *World) Budget() *budget.TimeManager      { return w.budget }

// AddBot registers body and builds its path finder around a gap avoidance.
func (w *World) AddBot(body *spatial.Body, ap avoidance.Params, pp pathfinder.Params, opts ...avoidance.Option) (*Bot, error) {
	if w.Bot(body.ID) != nil {
		return nil, fmt.Errorf("bot %d: %w", body.ID, ErrDuplicateBot)
	}
	ga, err := avoidance.NewGapDynamicAvoidance(ap, body.EffectiveWidth(), opts...)
	if err != nil {
		return nil, fmt.Errorf("bot %d avoidance: %w", body.ID, err)
	}
	pf, err := pathfinder.New(pp, w.graph, w.objects, pathfinder.Modifiers{Goto: ga})
	if err != nil {
		return nil, fmt.Errorf("bot %d path finder: %w", body.ID, err)
	}
	b := &Bot{
		Body:       body,
		PathFinder: pf,
		Avoidance:  ga,
		action:     action.New(),
		applied:    action.New(),
	}
	w.bots = append(w.bots, b)
	w.registry.AddBody(body)
	logger.Debug("world: bot %d added at %v", body.ID, body.Position)
	return b, nil
}

func (w *World) RemoveBot(id spatial.BodyID) bool {
	for i, b := range w.bots {
		if b.ID() == id {
			w.bots = append(w.bots[:i], w.bots[i+1:]...)
			w.registry.RemoveBody(id)
			return true
		}
	}
	return false
}

func (w *World) Bot(id spatial.BodyID) *Bot {
	for _, b := range w.bots {
		if b.ID() == id {
			return b
		}
	}
	return nil
}

// AddObserver subscribes o to the avoidance mode changes of every bot.
func (w *World) AddObserver(o avoidance.ModeObserver) {
	w.obsMu.Lock()
	defer w.obsMu.Unlock()
	w.observers = append(w.observers, o)
}

func (w *World) OnModeChange(ev avoidance.ModeChange) {
	w.obsMu.Lock()
	defer w.obsMu.Unlock()
	for _, o := range w.observers {
		o.OnModeChange(ev)
	}
}

// beginFrame advances the clock and returns the frame shared by every bot.
func (w *World) beginFrame(dt float64) *avoidance.Frame {
	w.now += dt
	w.frame++
	w.budget.BeginFrame()
	w.registry.Rebuild()
	return &avoidance.Frame{
		Now:      w.now,
		Dt:       dt,
		Query:    w.registry,
		Geometry: w.geometry,
		Areas:    w.areas,
		Budget:   w.budget,
		Observer: w,
	}
}

// order returns the bots starting from the round robin head, so the bot
// served first by the shared budgets changes every frame.
func (w *World) order() []*Bot {
	n := len(w.bots)
	res := make([]*Bot, 0, n)
	for i := 0; i < n; i++ {
		res = append(res, w.bots[(w.head+i)%n])
	}
	if n > 0 {
		w.head = (w.head + 1) % n
	}
	return res
}

func (w *World) endFrame(dt float64) {
	for _, b := range w.bots {
		b.integrate(dt)
	}
}

// Update runs one frame: every bot decides, then every body moves.
func (w *World) Update(dt float64) {
	f := w.beginFrame(dt)
	for _, b := range w.order() {
		b.think(f)
	}
	w.endFrame(dt)
}

// UpdateParallel runs the decisions on worker goroutines. Bodies only move
// once every decision is made, so bots read a consistent world.
func (w *World) UpdateParallel(ctx context.Context, dt float64) error {
	f := w.beginFrame(dt)
	g, ctx := errgroup.WithContext(ctx)
	workers := w.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(workers)
	for _, b := range w.order() {
		b := b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b.think(f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.endFrame(dt)
	return nil
}
