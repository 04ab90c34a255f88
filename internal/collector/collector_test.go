package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/prowlerhub/internal/models"
)

func writeFile(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("failed to set mtime on %s: %v", name, err)
		}
	}
	return path
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Config{ScanDir: "reports"})
	if c.config.PreviewLength != DefaultPreviewLength {
		t.Errorf("expected preview length %d, got %d", DefaultPreviewLength, c.config.PreviewLength)
	}
	if c.config.MaxReadBytes != DefaultMaxReadBytes {
		t.Errorf("expected max read bytes %d, got %d", DefaultMaxReadBytes, c.config.MaxReadBytes)
	}
	if c.ScanDir() != "reports" {
		t.Errorf("expected scan dir reports, got %s", c.ScanDir())
	}
}

func TestLatestFile(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	writeFile(t, dir, "old.csv", "a", base)
	writeFile(t, dir, "newest.html", "b", base.Add(30*time.Minute))
	writeFile(t, dir, "middle.json", "c", base.Add(10*time.Minute))
	writeFile(t, dir, ".DS_Store", "x", base.Add(50*time.Minute))
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	c := New(Config{ScanDir: dir})
	latest, err := c.LatestFile("")
	if err != nil {
		t.Fatalf("LatestFile failed: %v", err)
	}
	if latest.Name != "newest.html" {
		t.Errorf("expected newest.html, got %s", latest.Name)
	}
	if latest.Extension != ".html" {
		t.Errorf("expected .html extension, got %s", latest.Extension)
	}
	if latest.Path != filepath.Join(dir, "newest.html") {
		t.Errorf("unexpected path: %s", latest.Path)
	}
}

func TestLatestFileErrors(t *testing.T) {
	c := New(Config{})

	_, err := c.LatestFile(filepath.Join(t.TempDir(), "missing"))
	if !models.IsKind(err, models.KindNotFound) {
		t.Errorf("expected not_found for missing dir, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "directory does not exist") {
		t.Errorf("unexpected error message: %v", err)
	}

	empty := t.TempDir()
	writeFile(t, empty, "Thumbs.db", "x", time.Time{})
	_, err = c.LatestFile(empty)
	if !models.IsKind(err, models.KindNotFound) {
		t.Errorf("expected not_found for empty dir, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "no files found") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestListReportsOrder(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	writeFile(t, dir, "b.csv", "1", base)
	writeFile(t, dir, "a.csv", "1", base)
	writeFile(t, dir, "c.html", "1", base.Add(time.Minute))

	files, err := New(Config{ScanDir: dir}).ListReports("")
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}

	want := []string{"c.html", "a.csv", "b.csv"}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(files))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, files[i].Name)
		}
	}
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.csv", "a", time.Time{})
	c := New(Config{ScanDir: dir})

	if got := c.ResolvePath("report.csv"); got != path {
		t.Errorf("expected %s, got %s", path, got)
	}
	if got := c.ResolvePath(path); got != path {
		t.Errorf("expected absolute path unchanged, got %s", got)
	}
	if got := c.ResolvePath("nope.csv"); got != "nope.csv" {
		t.Errorf("expected unresolved path unchanged, got %s", got)
	}
}

func TestReadReportErrors(t *testing.T) {
	dir := t.TempDir()
	c := New(Config{ScanDir: dir})

	if _, err := c.ReadReport(""); !models.IsKind(err, models.KindNotFound) {
		t.Errorf("expected not_found for empty path, got %v", err)
	}
	if _, err := c.ReadReport(filepath.Join(dir, "missing.html")); !models.IsKind(err, models.KindNotFound) {
		t.Errorf("expected not_found for missing file, got %v", err)
	}
	if _, err := c.ReadReport(dir); !models.IsKind(err, models.KindIO) {
		t.Errorf("expected io_failure for directory, got %v", err)
	}
}

func TestReadContent(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "small.txt", "hello", time.Time{})
	large := writeFile(t, dir, "large.txt", strings.Repeat("z", 5000), time.Time{})

	c := New(Config{ScanDir: dir, MaxReadBytes: 4096})

	text, truncated, err := c.ReadContent(small)
	if err != nil {
		t.Fatalf("ReadContent failed: %v", err)
	}
	if truncated || text != "hello" {
		t.Errorf("expected full content, got %q (truncated=%v)", text, truncated)
	}

	text, truncated, err = c.ReadContent(large)
	if err != nil {
		t.Fatalf("ReadContent failed: %v", err)
	}
	if !truncated {
		t.Error("expected large file to be truncated")
	}
	if len(text) != largeFilePreviewLength {
		t.Errorf("expected %d chars, got %d", largeFilePreviewLength, len(text))
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "results.csv", "STATUS,SEVERITY\nPASS,low\nFAIL,high\n", time.Time{})
	writeFile(t, dir, "notes.md", "line one\nline two\n", time.Time{})
	writeFile(t, dir, "broken.json", "{", time.Time{})

	c := New(Config{ScanDir: dir})

	report, result, err := c.Analyze("results.csv", 0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.Format != models.FormatCSV {
		t.Errorf("expected csv format, got %s", report.Format)
	}
	if !result.OK() || result.Success.DataRows != 2 {
		t.Errorf("unexpected result: %+v", result)
	}

	_, result, err = c.Analyze("notes.md", 0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Success.FileType != "Text file (.md)" || result.Success.LineCount != 2 {
		t.Errorf("unexpected generic result: %+v", result.Success)
	}

	_, result, err = c.Analyze("broken.json", 0)
	if err != nil {
		t.Fatalf("parse failures should not be returned as errors: %v", err)
	}
	if result.OK() || result.Failure.Kind != models.KindMalformed {
		t.Errorf("expected malformed failure, got %+v", result)
	}

	if _, _, err := c.Analyze("absent.html", 0); !models.IsKind(err, models.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}

func TestAnalyzeOversizedDegradesToPreview(t *testing.T) {
	dir := t.TempDir()
	row := `<tr><td>FAIL</td><td>critical</td></tr>`
	html := `<table id="findingsTable">` + strings.Repeat(row, 20) + `</table>`
	writeFile(t, dir, "big.html", html, time.Time{})

	c := New(Config{ScanDir: dir, MaxReadBytes: 256})

	_, result, err := c.Analyze("big.html", 0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if result.Success.FileType != "Text file (.html)" {
		t.Errorf("expected generic preview, got %s", result.Success.FileType)
	}
	if result.Success.KeywordCounts != nil {
		t.Errorf("oversized report should not be parsed, got counts %v", result.Success.KeywordCounts)
	}
	if len(result.Success.Warnings) != 1 || !strings.Contains(result.Success.Warnings[0], "too large") {
		t.Errorf("expected a size warning, got %v", result.Success.Warnings)
	}
	if !strings.HasSuffix(result.Success.Preview, "...") {
		t.Errorf("expected truncated preview, got %q", result.Success.Preview)
	}

	c = New(Config{ScanDir: dir})
	_, result, err = c.Analyze("big.html", 0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Success.KeywordCounts["FAIL"] != 20 {
		t.Errorf("expected full parse under the default limit, got %v", result.Success.KeywordCounts)
	}
}

func TestSummarize(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		content  string
		pass     int
		fail     int
		critical int
		grade    string
	}{
		{"all-pass.txt", strings.Repeat("PASS ", 9) + "FAIL", 9, 1, 0, models.GradeA},
		{"mixed.txt", "PASS PASS PASS FAIL CRITICAL", 3, 1, 1, models.GradeC},
		{"failing.txt", "PASS FAIL FAIL", 1, 2, 0, models.GradeD},
		{"b-grade.txt", strings.Repeat("pass\n", 8) + "fail\nfail", 8, 2, 0, models.GradeB},
		{"empty.txt", "nothing here", 0, 0, 0, models.GradeD},
	}

	c := New(Config{ScanDir: dir})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeFile(t, dir, tt.name, tt.content, time.Time{})

			s, err := c.Summarize(tt.name)
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if s.File != tt.name {
				t.Errorf("expected file %s, got %s", tt.name, s.File)
			}
			if s.PassCount != tt.pass || s.FailCount != tt.fail || s.CriticalCount != tt.critical {
				t.Errorf("expected %d/%d/%d, got %d/%d/%d",
					tt.pass, tt.fail, tt.critical, s.PassCount, s.FailCount, s.CriticalCount)
			}
			if s.Grade != tt.grade {
				t.Errorf("expected grade %s, got %s (rate %.1f)", tt.grade, s.Grade, s.PassRate)
			}
			if s.AnalyzedAt.IsZero() {
				t.Error("expected analyzed_at to be set")
			}
		})
	}
}

func TestSummarizeMissingFile(t *testing.T) {
	_, err := New(Config{ScanDir: t.TempDir()}).Summarize("missing.html")
	if !models.IsKind(err, models.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}
