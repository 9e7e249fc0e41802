package logging

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"mercator-hq/prism/pkg/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLevel(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetup(t *testing.T) {
	logger, closer, err := Setup(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}
	defer closer()

	if logger == nil {
		t.Fatal("Setup() returned a nil logger")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level not enabled")
	}
}

func TestSetup_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prism.log")

	logger, closer, err := Setup(config.LoggingConfig{
		Level:  "info",
		Format: "text",
		Output: path,
	})
	if err != nil {
		t.Fatalf("Setup() failed: %v", err)
	}

	logger.Info("written to file")
	if err := closer(); err != nil {
		t.Errorf("closer() failed: %v", err)
	}
}

func TestSetup_Errors(t *testing.T) {
	if _, _, err := Setup(config.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("Setup() accepted an unknown level")
	}
	if _, _, err := Setup(config.LoggingConfig{Format: "xml"}); err == nil {
		t.Error("Setup() accepted an unknown format")
	}
}

func TestComponent(t *testing.T) {
	if Component(nil, "engine") == nil {
		t.Error("Component(nil) returned nil")
	}
}
