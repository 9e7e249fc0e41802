package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/prism/pkg/cli"
	"mercator-hq/prism/pkg/config"
	"mercator-hq/prism/pkg/report"
	"mercator-hq/prism/pkg/report/export"
	"mercator-hq/prism/pkg/report/retention"
)

var reportFlags struct {
	limit  int
	failed bool
	format string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect recorded generation runs",
	Long: `Query the run report store.

Every generation run records which switch arms were selected and under
which toggle state, so a shipped fragment can be traced back to the
condition that selected it.`,
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE:  runReportList,
}

var reportShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its decisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	RunE:  runReportPrune,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportListCmd, reportShowCmd, reportPruneCmd)

	reportListCmd.Flags().IntVar(&reportFlags.limit, "limit", 20, "maximum number of runs to list")
	reportListCmd.Flags().BoolVar(&reportFlags.failed, "failed", false, "only show failed runs")
	reportCmd.PersistentFlags().StringVar(&reportFlags.format, "format", "text", "output format: text, json")
}

func openReportStorage() (report.Storage, *config.Config, func(), error) {
	cfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}

	_, closeLog, err := setupLogging(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	if !cfg.Report.Enabled {
		closeLog()
		return nil, nil, nil, fmt.Errorf("run reporting is disabled in the configuration")
	}

	store, err := openStorage(cfg)
	if err != nil {
		closeLog()
		return nil, nil, nil, err
	}

	cleanup := func() {
		store.Close()
		closeLog()
	}
	return store, cfg, cleanup, nil
}

func runReportList(cmd *cobra.Command, args []string) error {
	store, cfg, cleanup, err := openReportStorage()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cli.SetupSignalHandler()

	runs, err := store.QueryRuns(ctx, &report.Query{
		Limit:      reportFlags.limit,
		OnlyFailed: reportFlags.failed,
	})
	if err != nil {
		return err
	}

	if reportFlags.format == "json" {
		exporter := export.NewJSONExporter(cfg.Report.ExportPretty)
		return exporter.ExportRuns(ctx, runs, os.Stdout)
	}

	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "FAILED"
		}
		fmt.Printf("%s  %s  %-6s  units=%d switches=%d bytes=%d  %s\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			status,
			run.UnitCount,
			run.SwitchCount,
			run.FragmentBytes,
			run.Duration,
		)
	}

	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	store, cfg, cleanup, err := openReportStorage()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cli.SetupSignalHandler()
	runID := args[0]

	runs, err := store.QueryRuns(ctx, &report.Query{RunID: runID, Limit: 1})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("run %q not found", runID)
	}

	decisions, err := store.QueryDecisions(ctx, &report.Query{RunID: runID})
	if err != nil {
		return err
	}

	if reportFlags.format == "json" {
		exporter := export.NewJSONExporter(cfg.Report.ExportPretty)
		return exporter.ExportReport(ctx, runs[0], decisions, os.Stdout)
	}

	run := runs[0]
	fmt.Printf("run %s\n", run.ID)
	fmt.Printf("  started:     %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Printf("  duration:    %s\n", run.Duration)
	fmt.Printf("  fingerprint: %s\n", run.OracleFingerprint)
	fmt.Printf("  units:       %d\n", run.UnitCount)
	fmt.Printf("  switches:    %d\n", run.SwitchCount)
	if !run.Success {
		fmt.Printf("  error:       %s\n", run.Error)
	}

	fmt.Println("decisions:")
	for _, d := range decisions {
		outcome := fmt.Sprintf("arm %d (%s)", d.ArmIndex, d.Condition)
		if d.Wildcard {
			outcome = fmt.Sprintf("arm %d (wildcard)", d.ArmIndex)
		}
		if d.Empty {
			outcome = "no match"
		}
		fmt.Printf("  %s.%s -> %s  [%d arm(s) evaluated, target %s]\n",
			d.Unit, d.Switch, outcome, d.ArmsEvaluated, d.Target)
	}

	return nil
}

func runReportPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	_, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if !cfg.Report.Enabled {
		return fmt.Errorf("run reporting is disabled in the configuration")
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Report.Retention.Days,
		PruneSchedule: cfg.Report.Retention.Schedule,
		MaxRuns:       cfg.Report.Retention.MaxRuns,
	})

	deleted, err := pruner.Prune(cli.SetupSignalHandler())
	if err != nil {
		return err
	}

	fmt.Printf("pruned %d run(s)\n", deleted)
	return nil
}
