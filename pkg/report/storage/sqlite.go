package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/prism/pkg/report"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/reports.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "report.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite report storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return report.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return report.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return report.NewStorageError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return report.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return report.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return report.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return report.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// StoreRun persists a run record to the database.
func (s *SQLiteStorage) StoreRun(ctx context.Context, run *report.RunRecord) error {
	query := `
		INSERT INTO runs (
			id, started_at, finished_at, duration_ms, tool_version,
			oracle_fingerprint, unit_count, switch_count, fragment_bytes,
			success, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal interface{}
	if run.Error != "" {
		errorVal = run.Error
	}

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.Duration.Milliseconds(),
		run.ToolVersion, run.OracleFingerprint, run.UnitCount, run.SwitchCount,
		run.FragmentBytes, run.Success, errorVal,
	)
	if err != nil {
		return report.NewStorageError("sqlite", "store_run", err)
	}

	return nil
}

// StoreDecisions persists a batch of decisions in a single transaction.
func (s *SQLiteStorage) StoreDecisions(ctx context.Context, decisions []*report.Decision) error {
	if len(decisions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return report.NewStorageError("sqlite", "begin_tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (
			id, run_id, unit, switch, target, arm_index, condition,
			wildcard, arms_evaluated, empty, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return report.NewStorageError("sqlite", "prepare_decision", err)
	}
	defer stmt.Close()

	for _, d := range decisions {
		var conditionVal interface{}
		if d.Condition != "" {
			conditionVal = d.Condition
		}

		_, err := stmt.ExecContext(ctx,
			d.ID, d.RunID, d.Unit, d.Switch, d.Target, d.ArmIndex,
			conditionVal, d.Wildcard, d.ArmsEvaluated, d.Empty, d.RecordedAt,
		)
		if err != nil {
			return report.NewStorageError("sqlite", "store_decision", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return report.NewStorageError("sqlite", "commit", err)
	}

	return nil
}

// QueryRuns retrieves run records matching the query filters, newest first.
func (s *SQLiteStorage) QueryRuns(ctx context.Context, query *report.Query) ([]*report.RunRecord, error) {
	where, args := buildRunWhere(query)

	sqlQuery := `
		SELECT id, started_at, finished_at, duration_ms, tool_version,
		       oracle_fingerprint, unit_count, switch_count, fragment_bytes,
		       success, error
		FROM runs
	`
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY started_at DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "query_runs", err)
	}
	defer rows.Close()

	runs := []*report.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, report.NewStorageError("sqlite", "scan_run", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, report.NewStorageError("sqlite", "query_runs", err)
	}

	return runs, nil
}

// QueryDecisions retrieves decision records matching the query filters.
func (s *SQLiteStorage) QueryDecisions(ctx context.Context, query *report.Query) ([]*report.Decision, error) {
	var conditions []string
	var args []interface{}

	if query.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, query.RunID)
	}
	if query.Unit != "" {
		conditions = append(conditions, "unit = ?")
		args = append(args, query.Unit)
	}

	sqlQuery := `
		SELECT id, run_id, unit, switch, target, arm_index, condition,
		       wildcard, arms_evaluated, empty, recorded_at
		FROM decisions
	`
	if len(conditions) > 0 {
		sqlQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	sqlQuery += " ORDER BY recorded_at ASC"

	limit := 1000
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "query_decisions", err)
	}
	defer rows.Close()

	decisions := []*report.Decision{}
	for rows.Next() {
		var d report.Decision
		var condition sql.NullString
		err := rows.Scan(
			&d.ID, &d.RunID, &d.Unit, &d.Switch, &d.Target, &d.ArmIndex,
			&condition, &d.Wildcard, &d.ArmsEvaluated, &d.Empty, &d.RecordedAt,
		)
		if err != nil {
			return nil, report.NewStorageError("sqlite", "scan_decision", err)
		}
		d.Condition = condition.String
		decisions = append(decisions, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, report.NewStorageError("sqlite", "query_decisions", err)
	}

	return decisions, nil
}

// DeleteRunsBefore removes runs that started before the cutoff.
// Decisions are removed by the foreign key cascade.
func (s *SQLiteStorage) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, report.NewStorageError("sqlite", "delete_runs_before", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, report.NewStorageError("sqlite", "rows_affected", err)
	}

	return deleted, nil
}

// CountRuns returns the total number of stored runs.
func (s *SQLiteStorage) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return 0, report.NewStorageError("sqlite", "count_runs", err)
	}
	return count, nil
}

// OldestRuns returns the IDs of the N oldest runs by start time.
func (s *SQLiteStorage) OldestRuns(ctx context.Context, n int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM runs ORDER BY started_at ASC LIMIT ?", n)
	if err != nil {
		return nil, report.NewStorageError("sqlite", "oldest_runs", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, report.NewStorageError("sqlite", "scan_id", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, report.NewStorageError("sqlite", "oldest_runs", err)
	}

	return ids, nil
}

// DeleteRuns removes the given runs and their decisions.
func (s *SQLiteStorage) DeleteRuns(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM runs WHERE id IN (%s)", placeholders), args...)
	if err != nil {
		return 0, report.NewStorageError("sqlite", "delete_runs", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, report.NewStorageError("sqlite", "rows_affected", err)
	}

	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return report.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func buildRunWhere(query *report.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.RunID != "" {
		conditions = append(conditions, "id = ?")
		args = append(args, query.RunID)
	}
	if !query.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.Since)
	}
	if !query.Until.IsZero() {
		conditions = append(conditions, "started_at < ?")
		args = append(args, query.Until)
	}
	if query.OnlyFailed {
		conditions = append(conditions, "success = 0")
	}

	return strings.Join(conditions, " AND "), args
}

func scanRun(rows *sql.Rows) (*report.RunRecord, error) {
	var run report.RunRecord
	var durationMs int64
	var errStr sql.NullString

	err := rows.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &durationMs,
		&run.ToolVersion, &run.OracleFingerprint, &run.UnitCount,
		&run.SwitchCount, &run.FragmentBytes, &run.Success, &errStr,
	)
	if err != nil {
		return nil, err
	}

	run.Duration = time.Duration(durationMs) * time.Millisecond
	run.Error = errStr.String

	return &run, nil
}
