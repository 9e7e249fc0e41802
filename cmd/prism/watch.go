package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/prism/pkg/cli"
	"mercator-hq/prism/pkg/config"
	"mercator-hq/prism/pkg/engine"
	"mercator-hq/prism/pkg/generate"
	"mercator-hq/prism/pkg/report/retention"
	"mercator-hq/prism/pkg/telemetry/metrics"
	"mercator-hq/prism/pkg/watch"
)

var watchFlags struct {
	sets []string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate output whenever manifests change",
	Long: `Run an initial generation, then watch the configured manifest paths
and regenerate after every change.

Edits are debounced, so a burst of editor writes triggers one rebuild.
A manifest that fails validation is logged and skipped; the previous
output stays in place until the manifest is fixed.

When metrics are enabled in the configuration, a Prometheus endpoint is
served for the lifetime of the watch.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringArrayVar(&watchFlags.sets, "set", nil, "toggle override (name=true|false, repeatable)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigFile(cfgFile)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := applyToggleFlags(cfg, watchFlags.sets); err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	ctx := cli.SetupSignalHandler()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(nil)
		go serveMetrics(cfg, collector, logger)
	}

	if store != nil && cfg.Report.Retention.Schedule != "" {
		pruner := retention.NewPruner(store, &retention.Config{
			RetentionDays: cfg.Report.Retention.Days,
			PruneSchedule: cfg.Report.Retention.Schedule,
			MaxRuns:       cfg.Report.Retention.MaxRuns,
		})
		if err := pruner.Scheduler().Start(ctx); err != nil {
			return err
		}
		defer pruner.Scheduler().Stop()
	}

	gen := generate.New(generate.Options{
		OutputDir:   cfg.Output.Dir,
		ToolVersion: Version,
		NoHeader:    !cfg.Output.Header,
	}, store, logger)

	engCfg := &engine.Config{
		Toggles:     cfg.Toggles,
		UnitToggles: cfg.UnitToggles,
	}

	regenerate := func() error {
		units, err := loadUnits(cfg)
		if err != nil {
			if collector != nil {
				collector.RecordReload(false, 0)
			}
			return err
		}
		if collector != nil {
			collector.RecordReload(true, len(units))
		}

		result, err := gen.Run(ctx, units, engCfg)
		if collector != nil && result != nil && result.Run != nil {
			run := result.Run
			collector.RecordRun(run.Duration, run.Success)
			collector.RecordOutput(run.FragmentBytes)
			for _, d := range result.Decisions {
				collector.RecordSelection(d.ArmsEvaluated, d.Empty)
			}
		}
		return err
	}

	// Initial generation; a broken tree at startup is fatal, unlike
	// mid-watch edits which only log.
	if err := regenerate(); err != nil {
		return cli.NewCommandError("watch", err)
	}

	watcher, err := watch.NewFileWatcher(&watch.Config{
		Paths:            cfg.Manifests.Paths,
		DebounceInterval: cfg.Watch.DebounceInterval,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("watching %v (press Ctrl-C to stop)\n", cfg.Manifests.Paths)

	return watcher.Watch(ctx, regenerate)
}

// serveMetrics runs the Prometheus endpoint for the lifetime of the
// watch. Listen failures are logged, not fatal: metrics are an
// accessory to the watch, not its purpose.
func serveMetrics(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())

	server := &http.Server{
		Addr:         cfg.Telemetry.Metrics.ListenAddress,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("metrics endpoint started",
		"address", cfg.Telemetry.Metrics.ListenAddress,
		"path", cfg.Telemetry.Metrics.Path,
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
