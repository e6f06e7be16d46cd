// Package config loads the YAML configuration of the simulator: logger,
// avoidance and path finder parameters, world budgets and the scenario.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gorustyt/gonavbot/avoidance"
	"github.com/gorustyt/gonavbot/common/logger"
	"github.com/gorustyt/gonavbot/pathfinder"
	"github.com/gorustyt/gonavbot/world"
)

var ErrInvalidScenario = errors.New("config: invalid scenario")

type Config struct {
	Logger     logger.Config     `yaml:"logger"`
	Avoidance  avoidance.Params  `yaml:"avoidance"`
	PathFinder pathfinder.Params `yaml:"pathfinder"`
	World      world.Config      `yaml:"world"`
	Scenario   Scenario          `yaml:"scenario"`
}

// Default returns the configuration running the crossing scenario.
func Default() Config {
	sc, _ := Builtin("crossing")
	return Config{
		Logger:     logger.DefaultConfig(),
		Avoidance:  avoidance.DefaultParams(),
		PathFinder: pathfinder.DefaultParams(),
		World:      world.DefaultConfig(),
		Scenario:   sc,
	}
}

// Load reads the YAML file at path over the defaults.
// If the file doesn't exist, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks the parameters against the widest bot of the scenario.
func (c *Config) Validate() error {
	if _, err := logger.ParseLogLevel(c.Logger.Level); err != nil {
		return err
	}
	if err := c.Scenario.Validate(); err != nil {
		return err
	}
	width := c.Scenario.MaxBotWidth()
	if err := c.Avoidance.Validate(width); err != nil {
		return fmt.Errorf("avoidance: %w", err)
	}
	if err := c.PathFinder.Validate(); err != nil {
		return fmt.Errorf("pathfinder: %w", err)
	}
	if c.World.CellSize <= 0 {
		return fmt.Errorf("world cell_size=%v: %w", c.World.CellSize, ErrInvalidScenario)
	}
	return nil
}
