// Command synctreectl is a reference host around the synctree core:
// enough wiring to run the registration -> listen -> server-push ->
// event loop end to end without a real network, plus a way to inspect
// the resolved configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/synctree/logger"
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "synctreectl",
	Short: "Inspect and exercise the synctree core",
	Long: `synctreectl - reference host for the synctree core.

Available commands:
  demo         Run the registration/listen/server-push loop in-process
  config show  Print the resolved configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbosity(verbosity)
		return logger.InitializeAtLevel(false, logger.VerbosityToLevel(verbosity))
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase output verbosity (-v, -vv, -vvv)")
	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
