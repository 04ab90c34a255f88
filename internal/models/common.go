package models

import (
	"strings"
	"time"
)

// ReportFormat represents the detected format of a report file
type ReportFormat string

const (
	FormatHTML    ReportFormat = "html"
	FormatCSV     ReportFormat = "csv"
	FormatASFF    ReportFormat = "json-asff"
	FormatUnknown ReportFormat = "unknown"
)

// File type labels carried by successful parse results
const (
	FileTypeHTML = "Prowler HTML Report"
	FileTypeCSV  = "Prowler CSV Results"
	FileTypeASFF = "Prowler JSON-ASFF Findings"
)

// Keyword vocabulary shared by status and severity tallies
const (
	KeywordPass     = "PASS"
	KeywordFail     = "FAIL"
	KeywordCritical = "CRITICAL"
	KeywordHigh     = "HIGH"
	KeywordMedium   = "MEDIUM"
	KeywordLow      = "LOW"
)

// Keywords is the fixed vocabulary in display order
var Keywords = []string{KeywordPass, KeywordFail, KeywordCritical, KeywordHigh, KeywordMedium, KeywordLow}

// StatusKeywords are the check outcome keywords
var StatusKeywords = []string{KeywordPass, KeywordFail}

// SeverityKeywords are the severity keywords, most severe first
var SeverityKeywords = []string{KeywordCritical, KeywordHigh, KeywordMedium, KeywordLow}

// IsKeyword reports whether s (already uppercased) is in the vocabulary
func IsKeyword(s string) bool {
	for _, k := range Keywords {
		if k == s {
			return true
		}
	}
	return false
}

// IsSeverity reports whether s (already uppercased) is a severity keyword
func IsSeverity(s string) bool {
	for _, k := range SeverityKeywords {
		if k == s {
			return true
		}
	}
	return false
}

// KeywordCounts maps each vocabulary keyword to its occurrence count.
// Only the six vocabulary keys ever appear.
type KeywordCounts map[string]int

// NewKeywordCounts returns counts with every keyword initialized to zero
func NewKeywordCounts() KeywordCounts {
	counts := make(KeywordCounts, len(Keywords))
	for _, k := range Keywords {
		counts[k] = 0
	}
	return counts
}

// Add increments the bucket for token if it is a vocabulary keyword.
// The token is trimmed and uppercased first.
func (c KeywordCounts) Add(token string) bool {
	token = strings.ToUpper(strings.TrimSpace(token))
	if !IsKeyword(token) {
		return false
	}
	c[token]++
	return true
}

// Total returns the sum of all buckets
func (c KeywordCounts) Total() int {
	total := 0
	for _, k := range Keywords {
		total += c[k]
	}
	return total
}

// RawReport is a report file read fully into memory
type RawReport struct {
	Name    string       `json:"name"`
	Path    string       `json:"path"`
	Format  ReportFormat `json:"format"`
	Data    []byte       `json:"-"`
	Size    int64        `json:"size"`
	ModTime time.Time    `json:"mod_time"`
}

// Text returns the report content as a string
func (r RawReport) Text() string {
	return string(r.Data)
}

// Finding is one normalized security check result
type Finding struct {
	Status         string `json:"status"`
	Severity       string `json:"severity"`
	Service        string `json:"service"`
	Region         string `json:"region"`
	CheckID        string `json:"check_id"`
	CheckTitle     string `json:"check_title"`
	ResourceID     string `json:"resource_id"`
	StatusExtended string `json:"status_extended"`
	Risk           string `json:"risk"`
	Recommendation string `json:"recommendation"`
	Compliance     string `json:"compliance"`
}

// FileInfo describes a file in the scan directory
type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	Extension string    `json:"extension"`
}

// SizeKB returns the file size in kilobytes, rounded to the nearest integer
func (f FileInfo) SizeKB() int64 {
	return (f.Size + 512) / 1024
}

// SandboxEntry describes a file stored under the sandbox root
type SandboxEntry struct {
	RelPath string    `json:"relative_path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Grades in descending order of quality
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
)

// SecuritySummary is the quick pass/fail overview of a report
type SecuritySummary struct {
	File          string    `json:"file"`
	PassCount     int       `json:"pass_count"`
	FailCount     int       `json:"fail_count"`
	CriticalCount int       `json:"critical_count"`
	PassRate      float64   `json:"pass_rate"`
	Grade         string    `json:"grade"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}

// TotalChecks returns the number of PASS and FAIL occurrences
func (s SecuritySummary) TotalChecks() int {
	return s.PassCount + s.FailCount
}

// CalculateGrade derives a letter grade from pass and fail counts.
// pass rate = pass / (pass + fail) * 100, zero when nothing was checked.
func CalculateGrade(pass, fail int) (string, float64) {
	total := pass + fail
	rate := 0.0
	if total > 0 {
		rate = float64(pass) / float64(total) * 100.0
	}

	switch {
	case rate >= 90:
		return GradeA, rate
	case rate >= 80:
		return GradeB, rate
	case rate >= 70:
		return GradeC, rate
	default:
		return GradeD, rate
	}
}

// GradeRank orders grades so that higher is better. Unknown grades rank 0.
func GradeRank(grade string) int {
	switch strings.ToUpper(grade) {
	case GradeA:
		return 4
	case GradeB:
		return 3
	case GradeC:
		return 2
	case GradeD:
		return 1
	default:
		return 0
	}
}
