package world

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/navgraph"
	"github.com/gorustyt/gonavbot/navmesh"
	"github.com/gorustyt/gonavbot/pathfinder"
	"github.com/gorustyt/gonavbot/spatial"
)

const testDt = 0.125

func openWorld(t *testing.T) *World {
	g := navgraph.BuildGrid(navmesh.OpenTerrain{}, navgraph.GridConfig{
		BMin:      common.Vec2{-2, -6},
		BMax:      common.Vec2{12, 6},
		Spacing:   1,
		CellSize:  4,
		Diagonals: true,
	})
	require.NotZero(t, g.VertexCount())
	return New(DefaultConfig(), navmesh.OpenTerrain{}, g, nil, nil)
}

func addBot(t *testing.T, w *World, id spatial.BodyID, x, y float32) *Bot {
	body := &spatial.Body{
		ID:       id,
		Position: common.Vec3{x, y, 0},
		Shape:    spatial.ShapeCircular,
		Radius:   0.4,
		MaxSpeed: 1,
	}
	b, err := w.AddBot(body, avoidance.DefaultParams(), pathfinder.DefaultParams())
	require.NoError(t, err)
	return b
}

func TestBotReachesDestination(t *testing.T) {
	w := openWorld(t)
	b := addBot(t, w, 1, 0, 0)
	dest := common.Vec3{10, 0, 0}
	b.SetDestination(dest)

	for i := 0; i < 200 && !b.Arrived(); i++ {
		w.Update(testDt)
	}
	require.True(t, b.Arrived())
	assert.LessOrEqual(t, common.Vdist2D(b.Body.Position, dest), float32(0.31))
	assert.False(t, b.Moving())
	assert.Equal(t, avoidance.GLOBAL_NORMAL, b.Avoidance.GlobalMode())
	assert.Equal(t, pathfinder.PATHFINDER_ERROR_NONE, b.PathFinder.GetLastError())

	w.Update(testDt)
	assert.Zero(t, b.Body.Velocity.Len())
}

func TestBotWithoutDestinationStays(t *testing.T) {
	w := openWorld(t)
	b := addBot(t, w, 1, 1, 1)
	w.Update(testDt)
	assert.Equal(t, common.Vec3{1, 1, 0}, b.Body.Position)
	assert.False(t, b.Moving())
	assert.Equal(t, 1, int(w.Frame()))
	assert.Equal(t, testDt, w.Now())
}

func TestTeleportAndForcedRotation(t *testing.T) {
	w := openWorld(t)
	b := addBot(t, w, 1, 0, 0)

	b.Teleport(common.Vec3{3, 3, 0})
	w.Update(testDt)
	assert.Equal(t, common.Vec3{3, 3, 0}, b.Body.Position)

	b.ForceRotation(1)
	w.Update(testDt)
	assert.Equal(t, float32(1), b.Body.Orientation)
	// Forced attributes apply once.
	w.Update(testDt)
	assert.Equal(t, common.Vec3{3, 3, 0}, b.Body.Position)
}

func pillarWorld(t *testing.T) *World {
	mesh := navmesh.NewMesh(navmesh.Rect(common.Vec2{-3, -7}, common.Vec2{23, 7}, navmesh.TERRAIN_DEFAULT))
	mesh.AddObstacle([]common.Vec3{{4, 1.5, 0}, {8, 1.5, 0}, {8, 2.7, 0}, {4, 2.7, 0}})
	g := navgraph.BuildGrid(mesh, navgraph.GridConfig{
		BMin:      common.Vec2{-2, -6},
		BMax:      common.Vec2{22, 6},
		Spacing:   1,
		CellSize:  4,
		Diagonals: true,
	})
	require.NotZero(t, g.VertexCount())
	return New(DefaultConfig(), mesh, g, nil, nil)
}

func TestBotPushedBehindPillarReplans(t *testing.T) {
	w := pillarWorld(t)
	b := addBot(t, w, 1, 0, 0)
	dest := common.Vec3{20, 0, 0}
	b.SetDestination(dest)

	for i := 0; i < 100 && b.Body.Position[0] < 4; i++ {
		w.Update(testDt)
	}
	require.GreaterOrEqual(t, b.Body.Position[0], float32(4))
	require.False(t, b.PathFinder.AccidentDetected())

	// Less than AccidentDistance off the path, with the pillar between the
	// bot and the node it was heading for.
	pushed := common.Vec3{5, 2.9, 0}
	b.Teleport(pushed)
	w.Update(testDt)
	require.Equal(t, pushed, b.Body.Position)
	teleportedAt := w.Now()

	for i := 0; i < 400 && !b.Arrived(); i++ {
		w.Update(testDt)
	}
	require.True(t, b.Arrived())
	assert.True(t, b.PathFinder.AccidentDetected())
	assert.GreaterOrEqual(t, b.PathFinder.LastAccidentDate(), teleportedAt)
	assert.GreaterOrEqual(t, b.PathFinder.Computations(), 2)
	assert.NotEqual(t, avoidance.MODE_STUCK, b.Avoidance.Mode())
}

func TestAddBotErrors(t *testing.T) {
	w := openWorld(t)
	addBot(t, w, 1, 0, 0)
	_, err := w.AddBot(&spatial.Body{ID: 1, Radius: 0.4, MaxSpeed: 1}, avoidance.DefaultParams(), pathfinder.DefaultParams())
	assert.ErrorIs(t, err, ErrDuplicateBot)

	ap := avoidance.DefaultParams()
	ap.DiagramHalfWidth = 0.1
	_, err = w.AddBot(&spatial.Body{ID: 2, Radius: 0.4, MaxSpeed: 1}, ap, pathfinder.DefaultParams())
	assert.ErrorIs(t, err, avoidance.ErrInvalidParam)

	pp := pathfinder.DefaultParams()
	pp.MaxNodes = 0
	_, err = w.AddBot(&spatial.Body{ID: 3, Radius: 0.4, MaxSpeed: 1}, avoidance.DefaultParams(), pp)
	assert.ErrorIs(t, err, pathfinder.ErrInvalidParam)

	assert.Len(t, w.Bots(), 1)
	assert.True(t, w.RemoveBot(1))
	assert.False(t, w.RemoveBot(1))
	assert.Nil(t, w.Bot(1))
}

func TestRoundRobinOrder(t *testing.T) {
	w := openWorld(t)
	for id := spatial.BodyID(1); id <= 3; id++ {
		addBot(t, w, id, float32(id), 0)
	}
	ids := func() []spatial.BodyID {
		var res []spatial.BodyID
		for _, b := range w.order() {
			res = append(res, b.ID())
		}
		return res
	}
	assert.Equal(t, []spatial.BodyID{1, 2, 3}, ids())
	assert.Equal(t, []spatial.BodyID{2, 3, 1}, ids())
	assert.Equal(t, []spatial.BodyID{3, 1, 2}, ids())
	assert.Equal(t, []spatial.BodyID{1, 2, 3}, ids())
}

type modeLog struct {
	mu     sync.Mutex
	events []avoidance.ModeChange
}

func (l *modeLog) OnModeChange(ev avoidance.ModeChange) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func headOn(t *testing.T) (*World, *Bot, *Bot) {
	w := openWorld(t)
	a := addBot(t, w, 1, 0, 0)
	b := addBot(t, w, 2, 10, 0)
	a.SetDestination(common.Vec3{10, 0, 0})
	b.SetDestination(common.Vec3{0, 0, 0})
	return w, a, b
}

func TestHeadOnBotsPass(t *testing.T) {
	w, a, b := headOn(t)
	log := &modeLog{}
	w.AddObserver(log)

	for i := 0; i < 480 && !(a.Arrived() && b.Arrived()); i++ {
		w.Update(testDt)
	}
	assert.True(t, a.Arrived())
	assert.True(t, b.Arrived())
	assert.NotEmpty(t, log.events)
}

func TestParallelUpdateMatchesSequential(t *testing.T) {
	seq, sa, sb := headOn(t)
	par, pa, pb := headOn(t)
	for i := 0; i < 64; i++ {
		seq.Update(testDt)
		require.NoError(t, par.UpdateParallel(context.Background(), testDt))
	}
	assert.Equal(t, sa.Body.Position, pa.Body.Position)
	assert.Equal(t, sb.Body.Position, pb.Body.Position)
	assert.Equal(t, sa.Avoidance.Mode(), pa.Avoidance.Mode())
}

func TestUpdateParallelCancelled(t *testing.T) {
	w, a, _ := headOn(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.UpdateParallel(ctx, testDt), context.Canceled)
	assert.Equal(t, common.Vec3{0, 0, 0}, a.Body.Position)
}
