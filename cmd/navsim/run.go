package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gorustyt/gonavbot/common/logger"
	"github.com/gorustyt/gonavbot/config"
	"github.com/gorustyt/gonavbot/telemetry"
)

// loadConfig reads configFile and swaps in the builtin scenario when one is named.
func loadConfig(configFile, scenario string) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}
	if scenario != "" {
		sc, ok := config.Builtin(scenario)
		if !ok {
			return cfg, fmt.Errorf("scenario %q: %w", scenario, config.ErrInvalidScenario)
		}
		cfg.Scenario = sc
	}
	return cfg, nil
}

func writeOutputs(s *sim, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if err := s.recorder.SaveCSV(filepath.Join(dir, "telemetry.csv")); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "summary.csv"))
	if err != nil {
		return fmt.Errorf("creating summary: %w", err)
	}
	defer f.Close()
	if err := telemetry.WriteSummaryCSV(telemetry.Summarize(s.recorder.Records()), f); err != nil {
		return err
	}
	snap, err := telemetry.Snapshot(s.world)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "snapshot.pb"), snap, 0o644)
}

func printSummary(out io.Writer, s *sim) {
	fmt.Fprintf(out, "%s: %.2fs, %d frames\n", s.cfg.Scenario.Name, s.world.Now(), s.world.Frame())
	for _, sum := range telemetry.Summarize(s.recorder.Records()) {
		arrival := "not arrived"
		if sum.Arrived {
			arrival = fmt.Sprintf("arrived at %.2fs", sum.ArrivalTime)
		}
		fmt.Fprintf(out, "bot %d: %s, distance %.2f, mean speed %.2f, %d mode changes, stuck %.0f%%\n",
			sum.BotID, arrival, sum.Distance, sum.MeanSpeed, sum.ModeChanges, 100*sum.StuckShare)
	}
}

func RunCmd() *cobra.Command {
	var (
		configFile string
		scenario   string
		outDir     string
		every      int
		parallel   bool
	)
	c := &cobra.Command{
		Use:   "run",
		Short: "run a scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, scenario)
			if err != nil {
				return err
			}
			if parallel {
				cfg.Scenario.Parallel = true
			}
			if err := logger.Init(cfg.Logger); err != nil {
				return err
			}
			s, err := newSim(cfg, every)
			if err != nil {
				return err
			}
			if err := s.run(context.Background()); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s)
			if outDir == "" {
				return nil
			}
			return writeOutputs(s, outDir)
		},
	}
	c.Flags().StringVar(&configFile, "config", "navsim.yaml", "config file")
	c.Flags().StringVar(&scenario, "scenario", "", "builtin scenario overriding the configured one")
	c.Flags().StringVar(&outDir, "out", "", "directory receiving telemetry.csv, summary.csv and snapshot.pb")
	c.Flags().IntVar(&every, "every", 1, "record one frame out of every")
	c.Flags().BoolVar(&parallel, "parallel", false, "run bot decisions on worker goroutines")
	return c
}
