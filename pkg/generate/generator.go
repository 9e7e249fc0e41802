package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mercator-hq/prism/pkg/condexpr/ast"
	"mercator-hq/prism/pkg/engine"
	"mercator-hq/prism/pkg/report"
)

// Options configures a generation run.
type Options struct {
	// OutputDir is the directory generated files are written under.
	OutputDir string

	// ToolVersion is stamped into file headers and run records.
	ToolVersion string

	// DryRun evaluates and records decisions without writing any files.
	DryRun bool

	// NoHeader suppresses the generated-file header.
	NoHeader bool
}

// Result is the outcome of a generation run.
type Result struct {
	// Run is the run record, including timing and the oracle fingerprint.
	Run *report.RunRecord

	// Decisions holds one entry per switch resolved on a committed path.
	Decisions []*report.Decision

	// Outputs maps target paths (relative to OutputDir) to the emitted
	// content, headers included. Targets whose switches all produced the
	// empty result are absent.
	Outputs map[string]string

	// Files lists the target paths in write order.
	Files []string
}

// Generator runs the full pipeline: evaluate every unit's switches
// against the toggle state and emit the selected fragments.
type Generator struct {
	opts    Options
	storage report.Storage
	logger  *slog.Logger
}

// New creates a generator. Storage may be nil to skip run recording.
func New(opts Options, storage report.Storage, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		opts:    opts,
		storage: storage,
		logger:  logger.With("component", "generate"),
	}
}

// Run evaluates all units under the given toggle configuration and
// writes the selected fragments to their target files.
//
// Units are processed in name order and switches in declaration order,
// so equal inputs always produce byte-identical output. A switch that
// resolves to the empty result contributes nothing; a target file all
// of whose switches were empty is not written at all.
func (g *Generator) Run(ctx context.Context, units []*ast.Unit, cfg *engine.Config) (*Result, error) {
	started := time.Now()

	runID := uuid.NewString()
	if cfg == nil {
		cfg = &engine.Config{}
	}

	run := &report.RunRecord{
		ID:                runID,
		StartedAt:         started,
		ToolVersion:       g.opts.ToolVersion,
		OracleFingerprint: report.Fingerprint(cfg.Toggles, cfg.UnitToggles),
		UnitCount:         len(units),
	}

	g.logger.Info("generation run started",
		"run_id", runID,
		"units", len(units),
		"fingerprint", shortFingerprint(run.OracleFingerprint),
		"dry_run", g.opts.DryRun,
	)

	result, err := g.run(ctx, runID, units, cfg, run)

	run.FinishedAt = time.Now()
	run.Duration = run.FinishedAt.Sub(run.StartedAt)
	run.Success = err == nil
	if err != nil {
		run.Error = err.Error()
	}

	g.record(ctx, run, result)

	if err != nil {
		g.logger.Error("generation run failed",
			"run_id", runID,
			"error", err,
		)
		return result, err
	}

	g.logger.Info("generation run completed",
		"run_id", runID,
		"switches", run.SwitchCount,
		"files", len(result.Files),
		"bytes", run.FragmentBytes,
		"duration", run.Duration,
	)

	return result, nil
}

func (g *Generator) run(ctx context.Context, runID string, units []*ast.Unit, cfg *engine.Config, run *report.RunRecord) (*Result, error) {
	result := &Result{
		Run:     run,
		Outputs: make(map[string]string),
	}

	eng, err := engine.New(units, cfg, g.logger)
	if err != nil {
		return result, err
	}

	sorted := make([]*ast.Unit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	buffers := make(map[string]*strings.Builder)
	var order []string

	for _, unit := range sorted {
		for _, sw := range unit.Switches {
			if err := ctx.Err(); err != nil {
				return result, err
			}

			text, trail, err := eng.Resolve(unit.Name, sw)
			if err != nil {
				return result, fmt.Errorf("resolve %s.%s: %w", unit.Name, sw.Name, err)
			}

			run.SwitchCount++
			result.Decisions = append(result.Decisions,
				decisionsFromTrail(runID, unit.Name, sw, trail)...)

			final := trail[len(trail)-1]
			if final.Empty() {
				g.logger.Debug("switch produced no output",
					"unit", unit.Name,
					"switch", sw.Name,
				)
				continue
			}

			buf, ok := buffers[sw.Target]
			if !ok {
				buf = &strings.Builder{}
				buffers[sw.Target] = buf
				order = append(order, sw.Target)
			}
			writeFragment(buf, text)
		}
	}

	for _, target := range order {
		content := buffers[target].String()
		if !g.opts.NoHeader {
			content = header(target, g.opts.ToolVersion, runID) + content
		}
		result.Outputs[target] = content
		result.Files = append(result.Files, target)
		run.FragmentBytes += int64(len(content))
	}

	if g.opts.DryRun {
		return result, nil
	}

	if err := writeOutputs(g.opts.OutputDir, result); err != nil {
		return result, err
	}

	return result, nil
}

// record persists the run and its decisions when storage is configured.
// Recording failures are logged, never returned: a run that generated
// its files correctly should not fail because the report store is down.
func (g *Generator) record(ctx context.Context, run *report.RunRecord, result *Result) {
	if g.storage == nil {
		return
	}

	if err := g.storage.StoreRun(ctx, run); err != nil {
		g.logger.Error("failed to store run record", "run_id", run.ID, "error", err)
		return
	}
	if result == nil {
		return
	}
	if err := g.storage.StoreDecisions(ctx, result.Decisions); err != nil {
		g.logger.Error("failed to store decisions", "run_id", run.ID, "error", err)
	}
}

// decisionsFromTrail converts a resolution trail into decision records.
// Nested selections carry the top-level switch name with a depth suffix.
func decisionsFromTrail(runID, unit string, sw *ast.SwitchNode, trail []*engine.Selection) []*report.Decision {
	now := time.Now()

	decisions := make([]*report.Decision, 0, len(trail))
	for depth, sel := range trail {
		name := sw.Name
		if depth > 0 {
			name = fmt.Sprintf("%s#%d", sw.Name, depth)
		}
		decisions = append(decisions, &report.Decision{
			ID:            uuid.NewString(),
			RunID:         runID,
			Unit:          unit,
			Switch:        name,
			Target:        sw.Target,
			ArmIndex:      sel.ArmIndex,
			Condition:     sel.Condition,
			Wildcard:      sel.Wildcard,
			ArmsEvaluated: sel.ArmsEvaluated,
			Empty:         sel.Empty(),
			RecordedAt:    now,
		})
	}
	return decisions
}

// writeFragment appends fragment text, guaranteeing a newline between
// consecutive fragments in the same target.
func writeFragment(buf *strings.Builder, text string) {
	buf.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		buf.WriteByte('\n')
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
