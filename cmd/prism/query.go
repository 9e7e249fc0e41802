package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/prism/pkg/cli"
	"mercator-hq/prism/pkg/condexpr/parser"
	"mercator-hq/prism/pkg/engine"
)

var queryFlags struct {
	unit   string
	sets   []string
	format string
}

var queryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Evaluate a toggle expression",
	Long: `Evaluate a single expression against the configured toggle state.

The expression is evaluated in the context of a unit, so it may use the
unit's local aliases and predicates as well as exported aliases from
other units via dotted paths.

Examples:
  # Evaluate a predicate
  prism query --unit net-stack tls

  # Evaluate a compound expression
  prism query --unit net-stack 'all(tls, not(legacy))'

  # Evaluate an exported alias from another unit
  prism query --unit app 'net-stack.secure-transport'

  # With toggle overrides
  prism query --unit net-stack tls --set tls=true`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryFlags.unit, "unit", "u", "", "unit providing the evaluation context (required)")
	queryCmd.Flags().StringArrayVar(&queryFlags.sets, "set", nil, "toggle override (name=true|false, repeatable)")
	queryCmd.Flags().StringVar(&queryFlags.format, "format", "text", "output format: text, json")
	queryCmd.MarkFlagRequired("unit")
}

// queryResult is the JSON shape of a query outcome.
type queryResult struct {
	Expression string `json:"expression"`
	Unit       string `json:"unit"`
	Value      bool   `json:"value"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := applyToggleFlags(cfg, queryFlags.sets); err != nil {
		return err
	}

	units, err := loadUnits(cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(units, &engine.Config{
		Toggles:     cfg.Toggles,
		UnitToggles: cfg.UnitToggles,
	}, logger)
	if err != nil {
		return err
	}

	scope, err := eng.Registry().Unit(queryFlags.unit)
	if err != nil {
		return err
	}

	expr, err := parser.NewParser().ParseExpression(args[0], scope)
	if err != nil {
		return err
	}

	value, err := eng.EvaluateIn(queryFlags.unit, expr)
	if err != nil {
		return cli.NewCommandError("query", err)
	}

	if queryFlags.format == "json" {
		formatter := &cli.JSONFormatter{Indent: true}
		return formatter.FormatTo(os.Stdout, queryResult{
			Expression: args[0],
			Unit:       queryFlags.unit,
			Value:      value,
		})
	}

	fmt.Println(value)
	return nil
}
