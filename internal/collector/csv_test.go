package collector

import (
	"strings"
	"testing"

	"github.com/ppiankov/prowlerhub/internal/models"
)

func TestParseCSVReportHeaderOnly(t *testing.T) {
	result := ParseCSVReport("ASSESSMENT_START_TIME;STATUS;SEVERITY\n")
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if result.Success.DataRows != 0 {
		t.Errorf("expected data_rows=0, got %d", result.Success.DataRows)
	}
	if len(result.Success.SampleRows) != 0 {
		t.Errorf("expected no sample rows, got %v", result.Success.SampleRows)
	}
	if result.Success.TotalLines != 1 {
		t.Errorf("expected total_lines=1, got %d", result.Success.TotalLines)
	}
}

func TestParseCSVReportEmpty(t *testing.T) {
	for _, content := range []string{"", "\n\n", "   \n\t\n"} {
		result := ParseCSVReport(content)
		if result.OK() {
			t.Fatalf("expected failure for %q", content)
		}
		if result.Failure.Kind != models.KindMalformed {
			t.Errorf("expected malformed kind, got %s", result.Failure.Kind)
		}
		if !strings.Contains(result.Failure.Message, "Empty CSV file") {
			t.Errorf("unexpected message: %s", result.Failure.Message)
		}
	}
}

func TestParseCSVReportSampleRows(t *testing.T) {
	content := "STATUS,SEVERITY,CHECK_ID\n\n  PASS,low,a  \nFAIL,high,b\r\nFAIL,critical,c\nPASS,medium,d\n"

	result := ParseCSVReport(content)
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}

	s := result.Success
	if s.FileType != models.FileTypeCSV {
		t.Errorf("unexpected file type: %s", s.FileType)
	}
	if s.TotalLines != 5 || s.DataRows != 4 {
		t.Errorf("expected 5 lines / 4 rows, got %d / %d", s.TotalLines, s.DataRows)
	}
	if s.Header != "STATUS,SEVERITY,CHECK_ID" {
		t.Errorf("unexpected header: %q", s.Header)
	}
	want := []string{"PASS,low,a", "FAIL,high,b", "FAIL,critical,c"}
	if len(s.SampleRows) != len(want) {
		t.Fatalf("expected %d sample rows, got %v", len(want), s.SampleRows)
	}
	for i := range want {
		if s.SampleRows[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], s.SampleRows[i])
		}
	}
}

func TestParseCSVReportColumnCounts(t *testing.T) {
	content := "AUTH_METHOD;STATUS;SEVERITY;CHECK_ID\nprofile;PASS;low;a\nprofile;FAIL;\"high\";b\nprofile;MANUAL;informational;c\n"

	result := ParseCSVReport(content)
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}

	counts := result.Success.KeywordCounts
	if counts == nil {
		t.Fatal("expected keyword counts for a Prowler CSV header")
	}
	if counts["PASS"] != 1 || counts["FAIL"] != 1 || counts["LOW"] != 1 || counts["HIGH"] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
	if counts.Total() != 4 {
		t.Errorf("expected total=4, got %d", counts.Total())
	}
}

func TestParseCSVReportWithoutStatusColumns(t *testing.T) {
	result := ParseCSVReport("name,value\nPASS,FAIL\n")
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if result.Success.KeywordCounts != nil {
		t.Errorf("expected no column counts, got %v", result.Success.KeywordCounts)
	}
}
