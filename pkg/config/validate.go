package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "output.dir").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a
// ValidationError if any validation rules fail. All validation errors
// are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateManifests(&cfg.Manifests)...)
	errs = append(errs, validateOutput(&cfg.Output)...)
	errs = append(errs, validateReport(&cfg.Report)...)
	errs = append(errs, validateWatch(&cfg.Watch)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateManifests(cfg *ManifestsConfig) []FieldError {
	var errs []FieldError

	if len(cfg.Paths) == 0 {
		errs = append(errs, FieldError{
			Field:   "manifests.paths",
			Message: "at least one manifest path is required",
		})
	}
	for i, path := range cfg.Paths {
		if strings.TrimSpace(path) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("manifests.paths[%d]", i),
				Message: "path must not be empty",
			})
		}
	}

	if cfg.MaxFileSize < 0 {
		errs = append(errs, FieldError{
			Field:   "manifests.max_file_size",
			Message: "must not be negative",
		})
	}
	if cfg.MaxDepth < 1 {
		errs = append(errs, FieldError{
			Field:   "manifests.max_depth",
			Message: "must be at least 1",
		})
	}

	return errs
}

func validateOutput(cfg *OutputConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.Dir) == "" {
		errs = append(errs, FieldError{
			Field:   "output.dir",
			Message: "output directory is required",
		})
	}

	return errs
}

func validateReport(cfg *ReportConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "sqlite", "memory":
	default:
		errs = append(errs, FieldError{
			Field:   "report.backend",
			Message: fmt.Sprintf("unsupported backend %q (must be \"sqlite\" or \"memory\")", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && strings.TrimSpace(cfg.SQLite.Path) == "" {
		errs = append(errs, FieldError{
			Field:   "report.sqlite.path",
			Message: "database path is required for the sqlite backend",
		})
	}

	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "report.retention.days",
			Message: "must not be negative",
		})
	}
	if cfg.Retention.MaxRuns < 0 {
		errs = append(errs, FieldError{
			Field:   "report.retention.max_runs",
			Message: "must not be negative",
		})
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "report.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateWatch(cfg *WatchConfig) []FieldError {
	var errs []FieldError

	if cfg.DebounceInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "watch.debounce_interval",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unsupported level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text", "console":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unsupported format %q (must be json, text, or console)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.ListenAddress) == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.listen_address",
			Message: "listen address is required when metrics are enabled",
		})
	}

	return errs
}
