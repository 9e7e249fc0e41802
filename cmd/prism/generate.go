package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/prism/pkg/cli"
	"mercator-hq/prism/pkg/engine"
	"mercator-hq/prism/pkg/generate"
)

var generateFlags struct {
	sets     []string
	dryRun   bool
	noHeader bool
	output   string
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate output from the configured manifests",
	Long: `Parse and validate all configured manifests, evaluate every switch
against the toggle configuration, and write the selected fragments to
their target files under the output directory.

Examples:
  # Generate with the toggles from prism.yaml
  prism generate

  # Override toggles on the command line
  prism generate --set tracing=true --set web=false

  # Evaluate and report without writing files
  prism generate --dry-run`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringArrayVar(&generateFlags.sets, "set", nil, "toggle override (name=true|false, repeatable)")
	generateCmd.Flags().BoolVar(&generateFlags.dryRun, "dry-run", false, "evaluate without writing files")
	generateCmd.Flags().BoolVar(&generateFlags.noHeader, "no-header", false, "omit the generated-file banner")
	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "", "output directory (overrides config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := applyToggleFlags(cfg, generateFlags.sets); err != nil {
		return err
	}
	if generateFlags.output != "" {
		cfg.Output.Dir = generateFlags.output
	}

	units, err := loadUnits(cfg)
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	gen := generate.New(generate.Options{
		OutputDir:   cfg.Output.Dir,
		ToolVersion: Version,
		DryRun:      generateFlags.dryRun,
		NoHeader:    generateFlags.noHeader || !cfg.Output.Header,
	}, store, logger)

	ctx := cli.SetupSignalHandler()

	result, err := gen.Run(ctx, units, &engine.Config{
		Toggles:     cfg.Toggles,
		UnitToggles: cfg.UnitToggles,
	})
	if err != nil {
		return cli.NewCommandError("generate", err)
	}

	if generateFlags.dryRun {
		fmt.Printf("dry run: %d units, %d switches, %d files would be written\n",
			result.Run.UnitCount, result.Run.SwitchCount, len(result.Files))
	} else {
		fmt.Printf("generated %d files from %d units (run %s)\n",
			len(result.Files), result.Run.UnitCount, result.Run.ID)
	}
	for _, file := range result.Files {
		fmt.Printf("  %s\n", file)
	}

	return nil
}
