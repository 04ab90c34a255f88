package collector

import (
	"strings"
	"testing"

	"github.com/ppiankov/prowlerhub/internal/models"
)

func TestParseReportDispatch(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		fileType string
	}{
		{"report.html", "<table id=\"findingsTable\"></table>", models.FileTypeHTML},
		{"report.csv", "a,b\n1,2\n", models.FileTypeCSV},
		{"report.json", "[]", models.FileTypeASFF},
		{"report.json-asff", "{}", models.FileTypeASFF},
		{"notes.txt", "hello", "Text file (.txt)"},
		{"README", "hello", "Text file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseReport(tt.name, []byte(tt.data), Options{})
			if !result.OK() {
				t.Fatalf("unexpected failure: %+v", result.Failure)
			}
			if result.Success.FileType != tt.fileType {
				t.Errorf("expected file type %q, got %q", tt.fileType, result.Success.FileType)
			}
		})
	}
}

func TestParseReportFailureVariant(t *testing.T) {
	result := ParseReport("broken.json", []byte("{not json"), Options{})
	if result.OK() || result.Success != nil {
		t.Fatal("expected failure variant only")
	}
	if result.Failure.Kind != models.KindMalformed {
		t.Errorf("expected malformed kind, got %s", result.Failure.Kind)
	}
}

func TestParseGenericReport(t *testing.T) {
	content := strings.Repeat("x", 150) + "\n" + strings.Repeat("y", 100) + "\n"

	result := ParseGenericReport(content, ".log")
	s := result.Success
	if s.ContentLength != 252 {
		t.Errorf("expected content_length=252, got %d", s.ContentLength)
	}
	if s.LineCount != 2 {
		t.Errorf("expected line_count=2, got %d", s.LineCount)
	}
	if !strings.HasSuffix(s.Preview, "...") || len(s.Preview) != 203 {
		t.Errorf("expected 200 chars plus ellipsis, got %d chars", len(s.Preview))
	}
}

func TestParseGenericReportShort(t *testing.T) {
	s := ParseGenericReport("short", "").Success
	if s.Preview != "short" {
		t.Errorf("expected untruncated preview, got %q", s.Preview)
	}
	if s.LineCount != 1 {
		t.Errorf("expected line_count=1, got %d", s.LineCount)
	}
}

func TestSafeParseRecoversPanic(t *testing.T) {
	result := safeParse(func() models.ParseResult {
		panic("boom")
	})
	if result.OK() {
		t.Fatal("expected failure after panic")
	}
	if result.Failure.Kind != models.KindUnknown || !strings.Contains(result.Failure.Message, "boom") {
		t.Errorf("unexpected failure: %+v", result.Failure)
	}
}

func TestCountLines(t *testing.T) {
	tests := map[string]int{
		"":          0,
		"a":         1,
		"a\n":       1,
		"a\nb":      2,
		"a\r\nb\r\n": 2,
		"\n\n":      2,
	}
	for in, want := range tests {
		if got := countLines(in); got != want {
			t.Errorf("countLines(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld", 7); got != "héllo w" {
		t.Errorf("unexpected truncation: %q", got)
	}
	if got := truncateRunes("abc", 0); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := truncateRunes("abc", 10); got != "abc" {
		t.Errorf("expected unchanged string, got %q", got)
	}
}
