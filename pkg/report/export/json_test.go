package export

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mercator-hq/prism/pkg/report"
)

func TestJSONExporter_ExportRuns(t *testing.T) {
	runs := []*report.RunRecord{
		{ID: "run-1", StartedAt: time.Now(), Success: true, ToolVersion: "test"},
		{ID: "run-2", StartedAt: time.Now(), Success: false, Error: "boom"},
	}

	var buf bytes.Buffer
	if err := NewJSONExporter(false).ExportRuns(context.Background(), runs, &buf); err != nil {
		t.Fatalf("ExportRuns() failed: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("decoded %d runs, want 2", len(decoded))
	}
}

func TestJSONExporter_EmptyRunsIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).ExportRuns(context.Background(), nil, &buf); err != nil {
		t.Fatalf("ExportRuns() failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty export = %q, want %q", got, "[]")
	}
}

func TestJSONExporter_ExportReport(t *testing.T) {
	run := &report.RunRecord{ID: "run-1", Success: true}
	decisions := []*report.Decision{
		{ID: "d-1", RunID: "run-1", Unit: "pool", Switch: "pool-impl", Condition: "async"},
	}

	var buf bytes.Buffer
	if err := NewJSONExporter(true).ExportReport(context.Background(), run, decisions, &buf); err != nil {
		t.Fatalf("ExportReport() failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Run == nil || decoded.Run.ID != "run-1" {
		t.Errorf("decoded run = %+v, want run-1", decoded.Run)
	}
	if len(decoded.Decisions) != 1 {
		t.Errorf("decoded %d decisions, want 1", len(decoded.Decisions))
	}

	// Pretty output is indented.
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("pretty export is not indented")
	}
}
