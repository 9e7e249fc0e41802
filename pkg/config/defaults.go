package config

import "time"

// Default values for configuration fields.
const (
	// Manifest defaults
	DefaultManifestMaxFileSize = int64(10 * 1024 * 1024)
	DefaultManifestMaxDepth    = 32

	// Output defaults
	DefaultOutputDir    = "generated"
	DefaultOutputHeader = true

	// Report defaults
	DefaultReportEnabled      = true
	DefaultReportBackend      = "sqlite"
	DefaultSQLitePath         = "data/reports.db"
	DefaultSQLiteMaxOpenConns = 10
	DefaultSQLiteMaxIdleConns = 5
	DefaultSQLiteWALMode      = true
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultRetentionDays      = 90
	DefaultRetentionSchedule  = "0 3 * * *"
	DefaultRetentionMaxRuns   = int64(0)
	DefaultExportPretty       = true

	// Watch defaults
	DefaultWatchDebounceInterval = 500 * time.Millisecond

	// Telemetry defaults
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "console"
	DefaultLogOutput            = "stderr"
	DefaultMetricsEnabled       = false
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultMetricsPath          = "/metrics"
)

// DefaultManifestPaths returns the default manifest glob patterns.
func DefaultManifestPaths() []string {
	return []string{"manifests/*.yaml"}
}

// ApplyDefaults fills in default values for any zero-valued fields.
// Explicitly configured values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Manifests.Paths) == 0 {
		cfg.Manifests.Paths = DefaultManifestPaths()
	}
	if cfg.Manifests.MaxFileSize == 0 {
		cfg.Manifests.MaxFileSize = DefaultManifestMaxFileSize
	}
	if cfg.Manifests.MaxDepth == 0 {
		cfg.Manifests.MaxDepth = DefaultManifestMaxDepth
	}

	if cfg.Toggles == nil {
		cfg.Toggles = make(map[string]bool)
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}

	if cfg.Report.Backend == "" {
		cfg.Report.Backend = DefaultReportBackend
	}
	if cfg.Report.SQLite.Path == "" {
		cfg.Report.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Report.SQLite.MaxOpenConns == 0 {
		cfg.Report.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Report.SQLite.MaxIdleConns == 0 {
		cfg.Report.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Report.SQLite.BusyTimeout == 0 {
		cfg.Report.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Report.Retention.Days == 0 {
		cfg.Report.Retention.Days = DefaultRetentionDays
	}
	if cfg.Report.Retention.Schedule == "" {
		cfg.Report.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Watch.DebounceInterval == 0 {
		cfg.Watch.DebounceInterval = DefaultWatchDebounceInterval
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Logging.Output == "" {
		cfg.Telemetry.Logging.Output = DefaultLogOutput
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// DefaultConfig returns a configuration populated with all defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		Output: OutputConfig{
			Header: DefaultOutputHeader,
		},
		Report: ReportConfig{
			Enabled:      DefaultReportEnabled,
			ExportPretty: DefaultExportPretty,
			SQLite: SQLiteConfig{
				WALMode: DefaultSQLiteWALMode,
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
