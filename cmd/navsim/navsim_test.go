package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/common"
	"github.com/gorustyt/gonavbot/config"
	"github.com/gorustyt/gonavbot/telemetry"
)

func builtinConfig(t *testing.T, name string) config.Config {
	sc, ok := config.Builtin(name)
	require.True(t, ok, name)
	cfg := config.Default()
	cfg.Scenario = sc
	return cfg
}

func TestNewSimBuiltins(t *testing.T) {
	for _, name := range config.BuiltinNames() {
		cfg := builtinConfig(t, name)
		s, err := newSim(cfg, 1)
		require.NoError(t, err, name)
		assert.Len(t, s.world.Bots(), len(cfg.Scenario.Bots), name)
		assert.Len(t, s.doors, len(cfg.Scenario.Doors), name)
		assert.Len(t, s.obstacles, len(cfg.Scenario.Obstacles), name)
		assert.NotZero(t, s.graph.VertexCount(), name)
		for _, b := range s.world.Bots() {
			_, ok := b.Destination()
			assert.True(t, ok)
		}
	}
}

func TestNewSimRejectsInvalidScenario(t *testing.T) {
	cfg := builtinConfig(t, "crossing")
	cfg.Scenario.Dt = 0
	_, err := newSim(cfg, 1)
	assert.ErrorIs(t, err, config.ErrInvalidScenario)
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint("1.5,-2")
	require.NoError(t, err)
	assert.Equal(t, common.Vec3{1.5, -2, 0}, p)
	_, err = parsePoint("nope")
	assert.Error(t, err)
}

func TestComparePathsThroughDoor(t *testing.T) {
	s, err := newSim(builtinConfig(t, "door"), 1)
	require.NoError(t, err)
	from, to := common.Vec3{-8, 0, 0}, common.Vec3{8, 0, 0}

	res, err := comparePaths(s, from, to, 5)
	require.NoError(t, err)
	assert.InDelta(t, 16, res.SlicedCost, 1e-3)
	assert.InDelta(t, res.ReferenceCost, res.SlicedCost, 1e-3)
	assert.Greater(t, res.Slices, 1)
	assert.Len(t, res.Sliced, 17)

	s.doors[0].door.Close()
	res, err = comparePaths(s, from, to, 5)
	require.NoError(t, err)
	assert.Greater(t, res.SlicedCost, 16.0)
	assert.InDelta(t, res.ReferenceCost, res.SlicedCost, 1e-3)
	for _, ref := range res.Sliced {
		pos := s.graph.Vertex(ref).Pos
		assert.False(t, pos[0] == 0 && pos[1] > -1.5 && pos[1] < 1.5, "path goes through the closed door at %v", pos)
	}
}

func TestComparePathsNoVertex(t *testing.T) {
	s, err := newSim(builtinConfig(t, "door"), 1)
	require.NoError(t, err)
	_, err = comparePaths(s, common.Vec3{50, 50, 0}, common.Vec3{8, 0, 0}, 5)
	assert.Error(t, err)
}

func TestRunClosesDoorAndRecords(t *testing.T) {
	cfg := builtinConfig(t, "door")
	cfg.Scenario.Duration = 4
	s, err := newSim(cfg, 2)
	require.NoError(t, err)
	require.NoError(t, s.run(context.Background()))

	assert.False(t, s.doors[0].door.IsOpen())
	assert.GreaterOrEqual(t, s.world.Now(), 4.0)
	frames := int(s.world.Frame())
	assert.Len(t, s.recorder.Records(), frames/2)

	dir := t.TempDir()
	require.NoError(t, writeOutputs(s, dir))
	f, err := os.Open(filepath.Join(dir, "telemetry.csv"))
	require.NoError(t, err)
	defer f.Close()
	recs, err := telemetry.ReadCSV(f)
	require.NoError(t, err)
	assert.Len(t, recs, len(s.recorder.Records()))
	for _, name := range []string{"summary.csv", "snapshot.pb"} {
		st, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotZero(t, st.Size())
	}
}

func TestMoveObstaclesBounces(t *testing.T) {
	cfg := builtinConfig(t, "crowd")
	s, err := newSim(cfg, 1)
	require.NoError(t, err)
	o := s.obstacles[0]
	o.Position = common.Vec3{5, -5.1, 0}
	o.Velocity = common.Vec3{0, -0.3, 0}
	s.moveObstacles(0.1)
	assert.Equal(t, float32(0.3), o.Velocity[1])
}

func TestScenariosCmd(t *testing.T) {
	var out bytes.Buffer
	c := rootCmd()
	c.SetOut(&out)
	c.SetArgs([]string{"scenarios"})
	require.NoError(t, c.Execute())
	for _, name := range config.BuiltinNames() {
		assert.Contains(t, out.String(), name)
	}

	out.Reset()
	c = rootCmd()
	c.SetOut(&out)
	c.SetArgs([]string{"scenarios", "--dump", "corridor"})
	require.NoError(t, c.Execute())
	assert.True(t, strings.Contains(out.String(), "name: corridor"))

	c = rootCmd()
	c.SetArgs([]string{"scenarios", "--dump", "maze"})
	assert.ErrorIs(t, c.Execute(), config.ErrInvalidScenario)
}

func TestRunCmd(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "navsim.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("logger:\n  console: false\nscenario:\n  duration: 1\n"), 0o644))

	var out bytes.Buffer
	c := rootCmd()
	c.SetOut(&out)
	c.SetArgs([]string{"run", "--config", cfgFile, "--out", filepath.Join(dir, "out"), "--parallel"})
	require.NoError(t, c.Execute())
	assert.Contains(t, out.String(), "crossing")
	assert.Contains(t, out.String(), "bot 3")
	_, err := os.Stat(filepath.Join(dir, "out", "telemetry.csv"))
	assert.NoError(t, err)
}
