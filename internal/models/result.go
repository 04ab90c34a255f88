package models

// ParseResult is the outcome of parsing one report. Exactly one of Success
// and Failure is set; use Succeeded and Failed to construct it.
type ParseResult struct {
	Success *ParseSuccess `json:"success,omitempty"`
	Failure *ParseFailure `json:"failure,omitempty"`
}

// ParseSuccess holds the normalized fields extracted from a report.
// Which fields are populated depends on FileType.
type ParseSuccess struct {
	FileType string `json:"file_type"`

	// HTML and JSON-ASFF
	KeywordCounts KeywordCounts `json:"keyword_counts,omitempty"`
	TextPreview   string        `json:"text_preview,omitempty"`
	Findings      []Finding     `json:"findings,omitempty"`

	// JSON-ASFF
	DataType   string   `json:"data_type,omitempty"`
	ItemCount  int      `json:"item_count,omitempty"`
	SampleKeys []string `json:"sample_keys,omitempty"`
	Keys       []string `json:"keys,omitempty"`

	// CSV
	TotalLines int      `json:"total_lines,omitempty"`
	DataRows   int      `json:"data_rows"`
	Header     string   `json:"header,omitempty"`
	SampleRows []string `json:"sample_rows,omitempty"`

	// Generic fallback
	ContentLength int    `json:"content_length,omitempty"`
	LineCount     int    `json:"line_count,omitempty"`
	Preview       string `json:"preview,omitempty"`

	// Data-quality problems that did not stop parsing
	Warnings []string `json:"warnings,omitempty"`
}

// ParseFailure carries a human-readable message and its classification
type ParseFailure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Succeeded wraps a success payload
func Succeeded(s *ParseSuccess) ParseResult {
	if s == nil {
		return Failed(KindUnknown, "empty parse result")
	}
	return ParseResult{Success: s}
}

// Failed builds a failure result
func Failed(kind ErrorKind, message string) ParseResult {
	return ParseResult{Failure: &ParseFailure{Kind: kind, Message: message}}
}

// OK reports whether the result is a success
func (r ParseResult) OK() bool {
	return r.Success != nil && r.Failure == nil
}

// Err returns the failure as an error, or nil on success
func (r ParseResult) Err() error {
	if r.OK() {
		return nil
	}
	if r.Failure == nil {
		return &Error{Kind: KindUnknown, Op: "parse report", Err: errString("no result")}
	}
	return &Error{Kind: r.Failure.Kind, Op: "parse report", Err: errString(r.Failure.Message)}
}

type errString string

func (e errString) Error() string { return string(e) }
