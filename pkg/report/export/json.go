package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/prism/pkg/report"
)

// Report is the combined export shape: a run and its decisions.
type Report struct {
	Run       *report.RunRecord  `json:"run"`
	Decisions []*report.Decision `json:"decisions"`
}

// JSONExporter exports run reports to JSON format.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// ExportRuns writes run records to the provided writer as a JSON array.
func (e *JSONExporter) ExportRuns(ctx context.Context, runs []*report.RunRecord, w io.Writer) error {
	if len(runs) == 0 {
		_, err := w.Write([]byte("[]"))
		return err
	}

	data, err := e.marshal(runs)
	if err != nil {
		return report.NewExportError("json", len(runs), err)
	}

	if _, err := w.Write(data); err != nil {
		return report.NewExportError("json", len(runs), err)
	}

	return nil
}

// ExportReport writes a single run and its decisions to the writer.
func (e *JSONExporter) ExportReport(ctx context.Context, run *report.RunRecord, decisions []*report.Decision, w io.Writer) error {
	rep := &Report{
		Run:       run,
		Decisions: decisions,
	}

	data, err := e.marshal(rep)
	if err != nil {
		return report.NewExportError("json", len(decisions), err)
	}

	if _, err := w.Write(data); err != nil {
		return report.NewExportError("json", len(decisions), err)
	}

	return nil
}

func (e *JSONExporter) marshal(v interface{}) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
