package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewKeywordCountsHasFixedKeys(t *testing.T) {
	counts := NewKeywordCounts()
	if len(counts) != len(Keywords) {
		t.Fatalf("expected %d keys, got %d", len(Keywords), len(counts))
	}
	for _, k := range Keywords {
		if v, ok := counts[k]; !ok || v != 0 {
			t.Errorf("expected %s=0, got %d (present=%v)", k, v, ok)
		}
	}
}

func TestKeywordCountsAdd(t *testing.T) {
	counts := NewKeywordCounts()
	if !counts.Add(" pass ") {
		t.Error("expected pass to be accepted")
	}
	if counts.Add("INFO") {
		t.Error("expected INFO to be rejected")
	}
	if counts.Add("") {
		t.Error("expected empty token to be rejected")
	}
	if counts[KeywordPass] != 1 {
		t.Errorf("expected PASS=1, got %d", counts[KeywordPass])
	}
	if _, ok := counts["INFO"]; ok {
		t.Error("non-vocabulary key must never appear")
	}
	if counts.Total() != 1 {
		t.Errorf("expected total=1, got %d", counts.Total())
	}
}

func TestCalculateGrade(t *testing.T) {
	tests := []struct {
		pass, fail int
		grade      string
		rate       float64
	}{
		{9, 1, GradeA, 90},
		{8, 2, GradeB, 80},
		{7, 3, GradeC, 70},
		{69, 31, GradeD, 69},
		{0, 0, GradeD, 0},
		{5, 0, GradeA, 100},
	}
	for _, tt := range tests {
		grade, rate := CalculateGrade(tt.pass, tt.fail)
		if grade != tt.grade || rate != tt.rate {
			t.Errorf("CalculateGrade(%d, %d) = %s, %.1f; want %s, %.1f",
				tt.pass, tt.fail, grade, rate, tt.grade, tt.rate)
		}
	}
}

func TestGradeRank(t *testing.T) {
	if GradeRank("a") <= GradeRank("B") {
		t.Error("expected A to outrank B")
	}
	if GradeRank("Z") != 0 {
		t.Error("expected unknown grade to rank 0")
	}
}

func TestParseResultVariants(t *testing.T) {
	ok := Succeeded(&ParseSuccess{FileType: FileTypeCSV})
	if !ok.OK() || ok.Failure != nil || ok.Err() != nil {
		t.Errorf("expected success variant, got %+v", ok)
	}

	bad := Failed(KindMalformed, "Empty CSV file")
	if bad.OK() || bad.Success != nil {
		t.Errorf("expected failure variant, got %+v", bad)
	}
	if !IsKind(bad.Err(), KindMalformed) {
		t.Errorf("expected malformed kind, got %s", KindOf(bad.Err()))
	}

	empty := Succeeded(nil)
	if empty.OK() {
		t.Error("nil success payload must become a failure")
	}
}

func TestKindOfWrapped(t *testing.T) {
	base := NewError(KindUnsafePath, "write document", "../x", "unsafe path")
	wrapped := fmt.Errorf("outer: %w", base)
	if KindOf(wrapped) != KindUnsafePath {
		t.Errorf("expected unsafe_path, got %s", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected unknown kind for plain error")
	}
	if KindOf(nil) != "" {
		t.Error("expected empty kind for nil")
	}
}

func TestFileInfoSizeKB(t *testing.T) {
	if got := (FileInfo{Size: 1536}).SizeKB(); got != 2 {
		t.Errorf("expected 2 KB, got %d", got)
	}
	if got := (FileInfo{Size: 100}).SizeKB(); got != 0 {
		t.Errorf("expected 0 KB, got %d", got)
	}
}
