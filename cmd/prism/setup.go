package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mercator-hq/prism/pkg/condexpr/ast"
	"mercator-hq/prism/pkg/condexpr/parser"
	"mercator-hq/prism/pkg/condexpr/validator"
	"mercator-hq/prism/pkg/config"
	"mercator-hq/prism/pkg/report"
	"mercator-hq/prism/pkg/report/storage"
	"mercator-hq/prism/pkg/telemetry/logging"
)

// loadConfigFile loads the configuration file named by --config. A
// missing file at the default path falls back to pure defaults so prism
// works out of the box; an explicitly named missing file is an error.
func loadConfigFile(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path == "prism.yaml" {
			return config.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("config file %q not found", path)
	}

	return config.LoadConfigWithEnvOverrides(path)
}

// setupLogging configures the default logger from the config, honoring
// the --verbose flag.
func setupLogging(cfg *config.Config) (*slog.Logger, func() error, error) {
	logCfg := cfg.Telemetry.Logging
	if verbose {
		logCfg.Level = "debug"
	}
	return logging.Setup(logCfg)
}

// expandManifestPaths expands glob patterns into a sorted, de-duplicated
// file list.
func expandManifestPaths(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no manifest files found for %v", patterns)
	}

	sort.Strings(files)
	return files, nil
}

// loadUnits parses and validates all configured manifests.
func loadUnits(cfg *config.Config) ([]*ast.Unit, error) {
	files, err := expandManifestPaths(cfg.Manifests.Paths)
	if err != nil {
		return nil, err
	}

	p := parser.NewParser().
		WithMaxFileSize(cfg.Manifests.MaxFileSize).
		WithMaxDepth(cfg.Manifests.MaxDepth).
		WithStrictMode(cfg.Manifests.Strict)

	units, err := p.ParseMulti(files)
	if err != nil {
		return nil, err
	}

	v := validator.NewValidator().WithMaxDepth(cfg.Manifests.MaxDepth)
	if err := v.Validate(units); err != nil {
		return nil, err
	}

	return units, nil
}

// openStorage builds the configured report storage backend, or nil when
// reporting is disabled.
func openStorage(cfg *config.Config) (report.Storage, error) {
	if !cfg.Report.Enabled {
		return nil, nil
	}

	switch cfg.Report.Backend {
	case "memory":
		return storage.NewMemoryStorage(), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Report.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create report directory: %w", err)
			}
		}
		return storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.Report.SQLite.Path,
			MaxOpenConns: cfg.Report.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Report.SQLite.MaxIdleConns,
			WALMode:      cfg.Report.SQLite.WALMode,
			BusyTimeout:  cfg.Report.SQLite.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported report backend %q", cfg.Report.Backend)
	}
}

// applyToggleFlags applies --set name=value overrides to the toggle map.
func applyToggleFlags(cfg *config.Config, sets []string) error {
	for _, s := range sets {
		name, value, found := strings.Cut(s, "=")
		if !found {
			return fmt.Errorf("invalid --set %q (expected name=value)", s)
		}

		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid --set %q: value must be a boolean", s)
		}

		if cfg.Toggles == nil {
			cfg.Toggles = make(map[string]bool)
		}
		cfg.Toggles[name] = b
	}
	return nil
}
