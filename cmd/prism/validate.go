package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/prism/pkg/cli"
	cferrors "mercator-hq/prism/pkg/condexpr/errors"
	"mercator-hq/prism/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate [manifests...]",
	Short: "Validate manifest files",
	Long: `Parse and validate manifest files without generating output.

Validation covers:
  - YAML syntax and manifest structure
  - Expression grammar (all, any, not, alias references)
  - Arm ordering (no arm may follow a wildcard)
  - Cross-unit alias references, visibility, and cycles

With no arguments, the manifests configured in prism.yaml are checked.

Examples:
  # Validate configured manifests
  prism validate

  # Validate specific files
  prism validate manifests/net.yaml manifests/render.yaml

  # JSON output for CI
  prism validate --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationResult is the JSON shape of a validation outcome.
type validationResult struct {
	Valid  bool     `json:"valid"`
	Files  []string `json:"files"`
	Errors []string `json:"errors,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	_, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	patterns := cfg.Manifests.Paths
	if len(args) > 0 {
		patterns = args
	}

	files, err := expandManifestPaths(patterns)
	if err != nil {
		return err
	}

	result := validationResult{Valid: true, Files: files}

	if verr := validateFiles(cfg, files); verr != nil {
		result.Valid = false
		if list, ok := verr.(*cferrors.ErrorList); ok {
			for _, e := range list.Errors {
				result.Errors = append(result.Errors, e.Error())
			}
		} else {
			result.Errors = append(result.Errors, verr.Error())
		}
	}

	formatter, err := cli.NewFormatter(validateFlags.format)
	if err != nil {
		return err
	}

	if validateFlags.format == "json" {
		if err := formatter.FormatTo(os.Stdout, result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Printf("%d manifest(s) valid\n", len(files))
		} else {
			for _, msg := range result.Errors {
				fmt.Fprintln(os.Stderr, msg)
			}
			fmt.Fprintf(os.Stderr, "\n%d error(s) in %d manifest(s)\n", len(result.Errors), len(files))
		}
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}

func validateFiles(cfg *config.Config, files []string) error {
	loadCfg := *cfg
	loadCfg.Manifests.Paths = files
	_, err := loadUnits(&loadCfg)
	return err
}
