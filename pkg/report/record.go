package report

import (
	"context"
	"time"
)

// RunRecord captures a single generation run: which units were loaded,
// what was produced, and the toggle state the run was evaluated under.
type RunRecord struct {
	// ID is a unique identifier for the run (UUID).
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed.
	FinishedAt time.Time `json:"finished_at"`

	// Duration is the total run time.
	Duration time.Duration `json:"duration"`

	// ToolVersion is the prism version that produced the run.
	ToolVersion string `json:"tool_version"`

	// OracleFingerprint is a stable hash of the toggle state the run
	// was evaluated under. Two runs with the same fingerprint and the
	// same manifests produce identical output.
	OracleFingerprint string `json:"oracle_fingerprint"`

	// UnitCount is the number of manifest units loaded.
	UnitCount int `json:"unit_count"`

	// SwitchCount is the number of top-level switches resolved.
	SwitchCount int `json:"switch_count"`

	// FragmentBytes is the total size of emitted fragment text.
	FragmentBytes int64 `json:"fragment_bytes"`

	// Success indicates whether the run completed without error.
	Success bool `json:"success"`

	// Error holds the failure message for unsuccessful runs.
	Error string `json:"error,omitempty"`
}

// Decision records the outcome of resolving one switch during a run.
// A run produces one decision per top-level switch plus one per nested
// switch reached on the committed path.
type Decision struct {
	// ID is a unique identifier for the decision (UUID).
	ID string `json:"id"`

	// RunID links the decision to its run.
	RunID string `json:"run_id"`

	// Unit is the manifest unit the switch belongs to.
	Unit string `json:"unit"`

	// Switch is the switch name. Nested switches inherit the
	// top-level name with a "#<depth>" suffix.
	Switch string `json:"switch"`

	// Target is the output file the fragment was written to.
	Target string `json:"target"`

	// ArmIndex is the zero-based index of the committed arm,
	// or -1 when no arm matched.
	ArmIndex int `json:"arm_index"`

	// Condition is the source text of the committed arm's condition,
	// or "_" for a wildcard arm. Empty when no arm matched.
	Condition string `json:"condition,omitempty"`

	// Wildcard indicates the committed arm was the trailing wildcard.
	Wildcard bool `json:"wildcard"`

	// ArmsEvaluated is the number of arm conditions evaluated before
	// the selector committed or ran out of arms.
	ArmsEvaluated int `json:"arms_evaluated"`

	// Empty indicates no arm matched and no fragment was emitted.
	Empty bool `json:"empty"`

	// RecordedAt is when the decision was recorded.
	RecordedAt time.Time `json:"recorded_at"`
}

// Query contains filters for retrieving run and decision records.
type Query struct {
	// RunID filters decisions to a single run.
	RunID string

	// Unit filters decisions by manifest unit.
	Unit string

	// Since filters runs that started at or after this time.
	Since time.Time

	// Until filters runs that started before this time.
	Until time.Time

	// OnlyFailed restricts results to unsuccessful runs.
	OnlyFailed bool

	// Limit is the maximum number of results. 0 uses the backend default.
	Limit int

	// Offset skips the first N results.
	Offset int
}

// Storage is the persistence interface for run reports.
// Implementations must be safe for concurrent use.
type Storage interface {
	// StoreRun persists a run record.
	StoreRun(ctx context.Context, run *RunRecord) error

	// StoreDecisions persists the decisions of a run in one batch.
	StoreDecisions(ctx context.Context, decisions []*Decision) error

	// QueryRuns retrieves run records matching the query, newest first.
	QueryRuns(ctx context.Context, query *Query) ([]*RunRecord, error)

	// QueryDecisions retrieves decision records matching the query.
	QueryDecisions(ctx context.Context, query *Query) ([]*Decision, error)

	// DeleteRunsBefore removes runs (and their decisions) that started
	// before the cutoff. Returns the number of runs deleted.
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// CountRuns returns the total number of stored runs.
	CountRuns(ctx context.Context) (int64, error)

	// OldestRuns returns the IDs of the N oldest runs.
	OldestRuns(ctx context.Context, n int64) ([]string, error)

	// DeleteRuns removes the given runs and their decisions.
	DeleteRuns(ctx context.Context, ids []string) (int64, error)

	// Close releases storage resources.
	Close() error
}
