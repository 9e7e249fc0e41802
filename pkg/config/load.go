package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Defaults are applied first, so fields absent from the file keep their
// default values, then the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	return ParseConfig(data)
}

// ParseConfig parses configuration from raw YAML bytes.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention PRISM_SECTION_FIELD (e.g. PRISM_OUTPUT_DIR) and
// always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Apply default values
// 2. Load YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format PRISM_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PRISM_MANIFESTS_PATHS"); val != "" {
		cfg.Manifests.Paths = strings.Split(val, ",")
	}
	if val := os.Getenv("PRISM_MANIFESTS_STRICT"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Manifests.Strict = b
		}
	}

	if val := os.Getenv("PRISM_OUTPUT_DIR"); val != "" {
		cfg.Output.Dir = val
	}
	if val := os.Getenv("PRISM_OUTPUT_HEADER"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Output.Header = b
		}
	}

	if val := os.Getenv("PRISM_REPORT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Report.Enabled = b
		}
	}
	if val := os.Getenv("PRISM_REPORT_BACKEND"); val != "" {
		cfg.Report.Backend = val
	}
	if val := os.Getenv("PRISM_REPORT_SQLITE_PATH"); val != "" {
		cfg.Report.SQLite.Path = val
	}
	if val := os.Getenv("PRISM_REPORT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Report.Retention.Days = i
		}
	}
	if val := os.Getenv("PRISM_REPORT_RETENTION_SCHEDULE"); val != "" {
		cfg.Report.Retention.Schedule = val
	}

	if val := os.Getenv("PRISM_WATCH_DEBOUNCE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Watch.DebounceInterval = d
		}
	}

	if val := os.Getenv("PRISM_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("PRISM_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("PRISM_LOG_OUTPUT"); val != "" {
		cfg.Telemetry.Logging.Output = val
	}

	if val := os.Getenv("PRISM_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("PRISM_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}

	applyToggleEnvOverrides(cfg)
}

// applyToggleEnvOverrides reads toggle values from PRISM_TOGGLE_<NAME>
// variables. The toggle name is lowercased with underscores mapped to
// hyphens, matching manifest predicate naming.
func applyToggleEnvOverrides(cfg *Config) {
	const prefix = "PRISM_TOGGLE_"

	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, prefix) {
			continue
		}

		eq := strings.Index(kv, "=")
		if eq < 0 {
			continue
		}

		name := strings.ReplaceAll(strings.ToLower(kv[len(prefix):eq]), "_", "-")
		if name == "" {
			continue
		}

		if b, err := strconv.ParseBool(kv[eq+1:]); err == nil {
			if cfg.Toggles == nil {
				cfg.Toggles = make(map[string]bool)
			}
			cfg.Toggles[name] = b
		}
	}
}
