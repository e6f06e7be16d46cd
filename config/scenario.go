package config

import (
	"fmt"
	"sort"
	"strings"
)

type Box struct {
	Min [2]float32 `yaml:"min"`
	Max [2]float32 `yaml:"max"`
}

func (b Box) valid() bool { return b.Max[0] > b.Min[0] && b.Max[1] > b.Min[1] }

// DoorSpec is a door gating every graph edge crossing its box.
type DoorSpec struct {
	ID      uint32  `yaml:"id"`
	Box     Box     `yaml:"box"`
	Open    bool    `yaml:"open"`
	Cost    float32 `yaml:"cost"`
	CloseAt float64 `yaml:"close_at"` ///< Simulation time the door closes, negative for never.
}

// ObstacleSpec is a moving rectangular obstacle.
type ObstacleSpec struct {
	ID          uint32     `yaml:"id"`
	Position    [2]float32 `yaml:"position"`
	HalfExtents [2]float32 `yaml:"half_extents"`
	Orientation float32    `yaml:"orientation"`
	Velocity    [2]float32 `yaml:"velocity"`
}

type BotSpec struct {
	ID       uint32     `yaml:"id"`
	Start    [2]float32 `yaml:"start"`
	Goal     [2]float32 `yaml:"goal"`
	Shape    string     `yaml:"shape"` ///< circular or rectangular
	Radius   float32    `yaml:"radius"`
	Width    float32    `yaml:"width"`
	Length   float32    `yaml:"length"`
	MaxSpeed float32    `yaml:"max_speed"`
}

// EffectiveWidth is the extent of the bot across its heading.
func (b *BotSpec) EffectiveWidth() float32 {
	if b.Shape == "rectangular" {
		return b.Width
	}
	return 2 * b.Radius
}

// Scenario describes the ground, its walls, doors and areas, and the bots.
type Scenario struct {
	Name        string         `yaml:"name"`
	Duration    float64        `yaml:"duration"` ///< Seconds of simulation.
	Dt          float64        `yaml:"dt"`
	Parallel    bool           `yaml:"parallel"`
	Bounds      Box            `yaml:"bounds"`
	GridSpacing float32        `yaml:"grid_spacing"`
	CellSize    float32        `yaml:"cell_size"` ///< Streaming cell size of the graph.
	Walls       []Box          `yaml:"walls,omitempty"`
	Areas       []Box          `yaml:"areas,omitempty"`
	Doors       []DoorSpec     `yaml:"doors,omitempty"`
	Obstacles   []ObstacleSpec `yaml:"obstacles,omitempty"`
	Bots        []BotSpec      `yaml:"bots,omitempty"`
}

func invalidScenario(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidScenario)
}

func (s *Scenario) Validate() error {
	switch {
	case !(s.Dt > 0):
		return invalidScenario("dt=%v", s.Dt)
	case s.Duration < 0:
		return invalidScenario("duration=%v", s.Duration)
	case !s.Bounds.valid():
		return invalidScenario("bounds %v", s.Bounds)
	case !(s.GridSpacing > 0) || !(s.CellSize > 0):
		return invalidScenario("grid_spacing=%v cell_size=%v", s.GridSpacing, s.CellSize)
	}
	for i, w := range s.Walls {
		if !w.valid() {
			return invalidScenario("wall %d %v", i, w)
		}
	}
	for i, a := range s.Areas {
		if !a.valid() {
			return invalidScenario("area %d %v", i, a)
		}
	}
	doors := make(map[uint32]bool)
	for _, d := range s.Doors {
		if d.ID == 0 || doors[d.ID] || !d.Box.valid() {
			return invalidScenario("door %d", d.ID)
		}
		doors[d.ID] = true
	}
	bots := make(map[uint32]bool)
	for _, b := range s.Bots {
		switch {
		case b.ID == 0 || bots[b.ID]:
			return invalidScenario("bot id %d", b.ID)
		case b.Shape != "" && b.Shape != "circular" && b.Shape != "rectangular":
			return invalidScenario("bot %d shape %q", b.ID, b.Shape)
		case !(b.MaxSpeed > 0):
			return invalidScenario("bot %d max_speed=%v", b.ID, b.MaxSpeed)
		case !(b.EffectiveWidth() > 0):
			return invalidScenario("bot %d has no width", b.ID)
		}
		bots[b.ID] = true
	}
	return nil
}

// MaxBotWidth is the width of the widest bot, 0 without bots.
func (s *Scenario) MaxBotWidth() float32 {
	var w float32
	for i := range s.Bots {
		w = max(w, s.Bots[i].EffectiveWidth())
	}
	return w
}

var builtins = map[string]func() Scenario{
	"crossing": crossing,
	"corridor": corridor,
	"door":     door,
	"crowd":    crowd,
}

// Builtin returns a copy of a scenario shipped with the simulator.
func Builtin(name string) (Scenario, bool) {
	fn, ok := builtins[strings.ToLower(name)]
	if !ok {
		return Scenario{}, false
	}
	return fn(), true
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func circleBot(id uint32, start, goal [2]float32) BotSpec {
	return BotSpec{ID: id, Start: start, Goal: goal, Shape: "circular", Radius: 0.4, MaxSpeed: 1.2}
}

// crossing: two bots swap sides while a third crosses their way.
func crossing() Scenario {
	return Scenario{
		Name:        "crossing",
		Duration:    30,
		Dt:          0.1,
		Bounds:      Box{Min: [2]float32{-10, -10}, Max: [2]float32{10, 10}},
		GridSpacing: 1,
		CellSize:    5,
		Bots: []BotSpec{
			circleBot(1, [2]float32{-8, 0}, [2]float32{8, 0}),
			circleBot(2, [2]float32{8, 0}, [2]float32{-8, 0}),
			circleBot(3, [2]float32{0, -8}, [2]float32{0, 8}),
		},
	}
}

// corridor: a wall with a narrow opening, bots queue through it.
func corridor() Scenario {
	s := Scenario{
		Name:        "corridor",
		Duration:    60,
		Dt:          0.1,
		Bounds:      Box{Min: [2]float32{-10, -6}, Max: [2]float32{10, 6}},
		GridSpacing: 0.5,
		CellSize:    5,
		Walls: []Box{
			{Min: [2]float32{-0.25, -6}, Max: [2]float32{0.25, -1.25}},
			{Min: [2]float32{-0.25, 1.25}, Max: [2]float32{0.25, 6}},
		},
	}
	for i := uint32(0); i < 4; i++ {
		y := -3 + 2*float32(i)
		s.Bots = append(s.Bots, circleBot(i+1, [2]float32{-8, y}, [2]float32{8, -y}))
	}
	return s
}

// door: the short way closes after a few seconds.
func door() Scenario {
	return Scenario{
		Name:        "door",
		Duration:    60,
		Dt:          0.1,
		Bounds:      Box{Min: [2]float32{-10, -10}, Max: [2]float32{10, 10}},
		GridSpacing: 1,
		CellSize:    5,
		Walls: []Box{
			{Min: [2]float32{-0.5, -10}, Max: [2]float32{0.5, -1.5}},
			{Min: [2]float32{-0.5, 1.5}, Max: [2]float32{0.5, 6}},
		},
		Doors: []DoorSpec{
			{ID: 1, Box: Box{Min: [2]float32{-0.5, -1.5}, Max: [2]float32{0.5, 1.5}}, Open: true, CloseAt: 3},
		},
		Bots: []BotSpec{circleBot(1, [2]float32{-8, 0}, [2]float32{8, 0})},
	}
}

// crowd: a flow of bots heading the same way past a moving crate.
func crowd() Scenario {
	s := Scenario{
		Name:        "crowd",
		Duration:    60,
		Dt:          0.1,
		Bounds:      Box{Min: [2]float32{-15, -5}, Max: [2]float32{15, 5}},
		GridSpacing: 1,
		CellSize:    5,
		Areas:       []Box{{Min: [2]float32{-1, -5}, Max: [2]float32{1, -2}}},
		Obstacles: []ObstacleSpec{
			{ID: 1, Position: [2]float32{5, 3}, HalfExtents: [2]float32{0.5, 0.5}, Velocity: [2]float32{0, -0.3}},
		},
	}
	id := uint32(1)
	for col := 0; col < 4; col++ {
		for row := 0; row < 3; row++ {
			x := -13 + 1.5*float32(col)
			y := -1.5 + 1.5*float32(row)
			s.Bots = append(s.Bots, circleBot(id, [2]float32{x, y}, [2]float32{x + 22, y}))
			id++
		}
	}
	s.Bots = append(s.Bots, circleBot(id, [2]float32{13, 0}, [2]float32{-13, 0}))
	return s
}
