package config

import "time"

// Config is the root configuration structure for Prism.
// It contains all configuration sections for manifest loading, toggle
// state, output, run reporting, watch mode, and telemetry.
type Config struct {
	// Manifests contains configuration for locating and parsing
	// manifest files.
	Manifests ManifestsConfig `yaml:"manifests"`

	// Toggles is the global toggle map. Every predicate name maps to
	// its value; predicates absent from the map evaluate to false.
	Toggles map[string]bool `yaml:"toggles"`

	// UnitToggles holds per-unit toggle overrides, keyed by unit name.
	// A unit's overrides take precedence over the global map.
	UnitToggles map[string]map[string]bool `yaml:"unit_toggles"`

	// Output contains configuration for generated file output.
	Output OutputConfig `yaml:"output"`

	// Report contains configuration for run report storage and retention.
	Report ReportConfig `yaml:"report"`

	// Watch contains configuration for watch mode.
	Watch WatchConfig `yaml:"watch"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ManifestsConfig controls how manifest files are located and parsed.
type ManifestsConfig struct {
	// Paths lists manifest files or glob patterns to load.
	// Default: ["manifests/*.yaml"]
	Paths []string `yaml:"paths"`

	// MaxFileSize is the maximum manifest file size in bytes.
	// Default: 10485760 (10MB)
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxDepth is the maximum expression and switch nesting depth.
	// Default: 32
	MaxDepth int `yaml:"max_depth"`

	// Strict enables strict validation mode.
	// Default: false
	Strict bool `yaml:"strict"`
}

// OutputConfig controls generated file output.
type OutputConfig struct {
	// Dir is the directory generated files are written under.
	// Default: "generated"
	Dir string `yaml:"dir"`

	// Header controls whether generated files carry a banner comment
	// with the tool version and run ID.
	// Default: true
	Header bool `yaml:"header"`
}

// ReportConfig controls run report persistence.
type ReportConfig struct {
	// Enabled turns run recording on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend ("sqlite" or "memory").
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite backend settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention contains report retention settings.
	Retention RetentionConfig `yaml:"retention"`

	// ExportPretty enables indented JSON when exporting reports.
	// Default: true
	ExportPretty bool `yaml:"export_pretty"`
}

// SQLiteConfig contains SQLite storage settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/reports.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig contains report retention settings.
type RetentionConfig struct {
	// Days is the number of days to retain run reports.
	// 0 keeps reports forever.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is a cron expression for automatic pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxRuns is the maximum number of runs to keep. 0 means unlimited.
	// Default: 0
	MaxRuns int64 `yaml:"max_runs"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	// DebounceInterval is how long to wait after a filesystem event
	// before regenerating, coalescing editor write bursts.
	// Default: 500ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	// Logging contains structured logging settings.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics settings.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text", "console").
	// Default: "console"
	Format string `yaml:"format"`

	// Output is the log destination ("stdout", "stderr", or a file path).
	// Default: "stderr"
	Output string `yaml:"output"`
}

// MetricsConfig contains Prometheus metrics settings.
// Metrics are only served in watch mode.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics server listens on.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path metrics are served at.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
