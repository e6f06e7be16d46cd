package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/pathfinder"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navsim.yaml")
	cfg := Default()
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
avoidance:
  min_speed: 0.5
  allow_crowding: true
pathfinder:
  nb_edges_per_astar: 16
scenario:
  name: custom
  dt: 0.05
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), cfg.Avoidance.MinSpeed)
	assert.True(t, cfg.Avoidance.AllowCrowding)
	assert.Equal(t, avoidance.DefaultParams().DistMax, cfg.Avoidance.DistMax)
	assert.Equal(t, 16, cfg.PathFinder.NbEdgesPerAstar)
	assert.Equal(t, "custom", cfg.Scenario.Name)
	assert.Equal(t, 0.05, cfg.Scenario.Dt)
	assert.Len(t, cfg.Scenario.Bots, 3)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("avoidance: [1, 2"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Avoidance.DiagramHalfWidth = 0.1
	assert.ErrorIs(t, cfg.Validate(), avoidance.ErrInvalidParam)

	cfg = Default()
	cfg.PathFinder.StartSearchRadius = 0
	assert.ErrorIs(t, cfg.Validate(), pathfinder.ErrInvalidParam)

	cfg = Default()
	cfg.Logger.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Scenario.Dt = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidScenario)

	cfg = Default()
	cfg.Scenario.Bots[1].ID = cfg.Scenario.Bots[0].ID
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidScenario)

	cfg = Default()
	cfg.Scenario.Bots[0].Shape = "triangle"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidScenario)

	cfg = Default()
	cfg.Scenario.Walls = []Box{{Min: [2]float32{1, 1}, Max: [2]float32{0, 2}}}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidScenario)
}

func TestBuiltins(t *testing.T) {
	assert.Equal(t, []string{"corridor", "crossing", "crowd", "door"}, BuiltinNames())
	for _, name := range BuiltinNames() {
		sc, ok := Builtin(name)
		require.True(t, ok, name)
		assert.Equal(t, name, sc.Name)
		assert.NoError(t, sc.Validate(), name)
		assert.NotEmpty(t, sc.Bots, name)
	}
	_, ok := Builtin("nowhere")
	assert.False(t, ok)

	sc, _ := Builtin("crowd")
	assert.Equal(t, float32(0.8), sc.MaxBotWidth())
}
