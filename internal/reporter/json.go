package reporter

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// AnalysisDocument is the JSON shape of an analysis
type AnalysisDocument struct {
	File   models.RawReport   `json:"file"`
	Result models.ParseResult `json:"result"`
}

// ContentDocument is the JSON shape of a file read
type ContentDocument struct {
	Path      string `json:"path"`
	Truncated bool   `json:"truncated"`
	Content   string `json:"content"`
}

// LatestDocument is the JSON shape of a latest-file lookup
type LatestDocument struct {
	File      models.FileInfo `json:"file"`
	Directory string          `json:"directory"`
}

// Generate writes v as JSON followed by a newline
func (r *JSONReporter) Generate(v interface{}) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}

// GenerateAnalysis writes a report and its parse result
func (r *JSONReporter) GenerateAnalysis(report models.RawReport, result models.ParseResult) error {
	return r.Generate(AnalysisDocument{File: report, Result: result})
}
