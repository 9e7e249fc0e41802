package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "prism",
	Short: "Prism - toggle-driven build-time code generation",
	Long: `Prism evaluates boolean toggle expressions at build time and emits
only the code fragments whose conditions hold.

Manifest files declare:
  - Predicates: named toggles resolved against the configuration
  - Aliases: reusable named expressions, private or exported
  - Switches: ordered condition/fragment arms, first match wins

For more information, visit: https://github.com/mercator-hq/prism`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "prism.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
