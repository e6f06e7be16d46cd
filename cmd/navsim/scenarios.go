package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gorustyt/gonavbot/config"
)

func ScenariosCmd() *cobra.Command {
	var dump string
	c := &cobra.Command{
		Use:   "scenarios",
		Short: "list the builtin scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if dump == "" {
				for _, name := range config.BuiltinNames() {
					sc, _ := config.Builtin(name)
					fmt.Fprintf(out, "%-10s %2d bots, %.0fs\n", name, len(sc.Bots), sc.Duration)
				}
				return nil
			}
			sc, ok := config.Builtin(dump)
			if !ok {
				return fmt.Errorf("scenario %q: %w", dump, config.ErrInvalidScenario)
			}
			cfg := config.Default()
			cfg.Scenario = sc
			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	c.Flags().StringVar(&dump, "dump", "", "print the full configuration running this scenario")
	return c
}
