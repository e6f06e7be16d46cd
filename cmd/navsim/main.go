// Command navsim runs bot navigation scenarios and records their telemetry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gorustyt/gonavbot/common/logger"
)

func rootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:           "navsim",
		Short:         "bot navigation simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	c.AddCommand(RunCmd(), PathCmd(), ScenariosCmd())
	return c
}

func main() {
	err := rootCmd().Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
