package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/prism/pkg/report"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain run reports.
	// 0 means keep reports forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// MaxRuns is the maximum number of runs to keep.
	// 0 means unlimited.
	MaxRuns int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
		MaxRuns:       0,
	}
}

// Pruner enforces retention policies on stored run reports.
type Pruner struct {
	storage   report.Storage
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(storage report.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "report.retention"),
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes runs older than the retention period or exceeding the
// max run count.
//
// Pruning happens in two phases:
// 1. Age-based: delete runs older than retention_days
// 2. Count-based: if total runs > max_runs, delete the oldest
//
// Both can run together. Returns the total number of runs deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.storage.DeleteRunsBefore(ctx, cutoff)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
		p.logger.Info("pruned runs by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRuns > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

// pruneByCount deletes the oldest runs until the total count is at or
// below MaxRuns.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.CountRuns(ctx)
	if err != nil {
		return 0, err
	}

	excess := count - p.config.MaxRuns
	if excess <= 0 {
		return 0, nil
	}

	ids, err := p.storage.OldestRuns(ctx, excess)
	if err != nil {
		return 0, err
	}

	deleted, err := p.storage.DeleteRuns(ctx, ids)
	if err != nil {
		return 0, err
	}

	p.logger.Info("pruned runs by count",
		"deleted_count", deleted,
		"max_runs", p.config.MaxRuns,
	)

	return deleted, nil
}

// Scheduler returns the pruner's scheduler for automatic pruning.
func (p *Pruner) Scheduler() *Scheduler {
	return p.scheduler
}
