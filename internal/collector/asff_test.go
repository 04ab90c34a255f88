package collector

import (
	"strings"
	"testing"

	"github.com/ppiankov/prowlerhub/internal/models"
)

func assertCounts(t *testing.T, got models.KeywordCounts, want map[string]int) {
	t.Helper()
	for _, k := range models.Keywords {
		if got[k] != want[k] {
			t.Errorf("%s: expected %d, got %d", k, want[k], got[k])
		}
	}
}

func TestParseASFFReportPassedLow(t *testing.T) {
	data := []byte(`[{"Compliance":{"Status":"PASSED"},"Severity":{"Label":"LOW"}}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	assertCounts(t, result.Success.KeywordCounts, map[string]int{"PASS": 1, "LOW": 1})

	if result.Success.ItemCount != 1 {
		t.Errorf("expected item_count=1, got %d", result.Success.ItemCount)
	}
	if result.Success.DataType != "list" {
		t.Errorf("expected data_type=list, got %s", result.Success.DataType)
	}
}

func TestParseASFFReportFailedCritical(t *testing.T) {
	data := []byte(`[{"Compliance":{"Status":"FAILED"},"Severity":{"Label":"CRITICAL"}}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	assertCounts(t, result.Success.KeywordCounts, map[string]int{"FAIL": 1, "CRITICAL": 1})
}

func TestParseASFFReportMissingFieldsCountAsFail(t *testing.T) {
	data := []byte(`[{"Severity":{"Label":"medium"}}, {"Compliance":{"Status":"WARNING"},"Severity":{"Label":"HIGH"}}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	assertCounts(t, result.Success.KeywordCounts, map[string]int{"FAIL": 2, "MEDIUM": 1, "HIGH": 1})
}

func TestParseASFFReportUnrecognizedSeverity(t *testing.T) {
	data := []byte(`[
		{"Compliance":{"Status":"FAILED"},"Severity":{"Label":"INFORMATIONAL"}},
		{"Compliance":{"Status":"PASSED"}}
	]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unrecognized severities must not fail parsing: %+v", result.Failure)
	}
	assertCounts(t, result.Success.KeywordCounts, map[string]int{"PASS": 1, "FAIL": 1})

	if len(result.Success.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Success.Warnings)
	}
	if !strings.Contains(result.Success.Warnings[0], `"INFORMATIONAL"`) {
		t.Errorf("expected warning to name the label, got %s", result.Success.Warnings[0])
	}
	if _, ok := result.Success.KeywordCounts["INFORMATIONAL"]; ok {
		t.Error("unrecognized label must not create a bucket")
	}
}

func TestParseASFFReportSampleKeysInDocumentOrder(t *testing.T) {
	data := []byte(`[{"SchemaVersion":"2018-10-08","Id":"x","ProductArn":"p","RecordState":"ACTIVE",
		"GeneratorId":"prowler-s3_bucket_public","AwsAccountId":"1","Types":[]}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}

	want := []string{"SchemaVersion", "Id", "ProductArn", "RecordState", "GeneratorId"}
	got := result.Success.SampleKeys
	if len(got) != len(want) {
		t.Fatalf("expected %d sample keys, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample key %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestParseASFFReportTopLevelObject(t *testing.T) {
	data := []byte(`{"a":1,"b":2,"c":3,"d":4,"e":5,"f":6,"g":7,"h":8,"i":9,"j":10,"k":11,"l":12}`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if result.Success.DataType != "object" {
		t.Errorf("expected data_type=object, got %s", result.Success.DataType)
	}
	if len(result.Success.Keys) != 10 || result.Success.Keys[0] != "a" || result.Success.Keys[9] != "j" {
		t.Errorf("expected the first 10 keys, got %v", result.Success.Keys)
	}
	if result.Success.ItemCount != 0 {
		t.Errorf("expected no item count for an object, got %d", result.Success.ItemCount)
	}
}

func TestParseASFFReportMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `[{"Compliance":`},
		{"empty", ``},
		{"scalar", `"just a string"`},
		{"number", `42`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseASFFReport([]byte(tt.data), Options{})
			if result.OK() {
				t.Fatal("expected failure")
			}
			if result.Failure.Kind != models.KindMalformed {
				t.Errorf("expected malformed kind, got %s", result.Failure.Kind)
			}
			if result.Failure.Message == "" {
				t.Error("expected a descriptive message")
			}
		})
	}
}

func TestParseASFFReportSkipsNonObjects(t *testing.T) {
	data := []byte(`[1, "x", {"Compliance":{"Status":"PASSED"},"Severity":{"Label":"HIGH"}}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if result.Success.ItemCount != 3 {
		t.Errorf("expected item_count=3, got %d", result.Success.ItemCount)
	}
	if len(result.Success.SampleKeys) != 0 {
		t.Errorf("first element is not an object, expected no sample keys, got %v", result.Success.SampleKeys)
	}
	assertCounts(t, result.Success.KeywordCounts, map[string]int{"PASS": 1, "HIGH": 1})
	if len(result.Success.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Success.Warnings)
	}
}

func TestParseASFFReportOddTypedFieldsStillCounted(t *testing.T) {
	tests := []struct {
		name string
		data string
		want map[string]int
	}{
		{
			name: "numeric region",
			data: `[{"Compliance":{"Status":"PASSED"},"Severity":{"Label":"HIGH"},"Region":1}]`,
			want: map[string]int{"PASS": 1, "HIGH": 1},
		},
		{
			name: "non-string product field",
			data: `[{"Compliance":{"Status":"PASSED"},"Severity":{"Label":"HIGH"},"ProductFields":{"Score":7}}]`,
			want: map[string]int{"PASS": 1, "HIGH": 1},
		},
		{
			name: "resources object",
			data: `[{"Compliance":{"Status":"FAILED"},"Severity":{"Label":"LOW"},"Resources":{"Id":"x"}}]`,
			want: map[string]int{"FAIL": 1, "LOW": 1},
		},
		{
			name: "numeric severity label",
			data: `[{"Compliance":{"Status":"FAILED"},"Severity":{"Label":4}}]`,
			want: map[string]int{"FAIL": 1},
		},
		{
			name: "numeric compliance status",
			data: `[{"Compliance":{"Status":1},"Severity":{"Label":"MEDIUM"}}]`,
			want: map[string]int{"FAIL": 1, "MEDIUM": 1},
		},
		{
			name: "compliance not an object",
			data: `[{"Compliance":"PASSED","Severity":{"Label":"CRITICAL"}}]`,
			want: map[string]int{"FAIL": 1, "CRITICAL": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseASFFReport([]byte(tt.data), Options{})
			if !result.OK() {
				t.Fatalf("unexpected failure: %+v", result.Failure)
			}
			assertCounts(t, result.Success.KeywordCounts, tt.want)

			if len(result.Success.Findings) != 1 {
				t.Fatalf("expected 1 finding, got %d", len(result.Success.Findings))
			}
			if len(result.Success.Warnings) == 0 {
				t.Error("expected a warning for the odd-typed field")
			}
		})
	}
}

func TestParseASFFReportPartialFinding(t *testing.T) {
	data := []byte(`[{"Compliance":{"Status":"FAILED"},"Severity":{"Label":"critical"},"Region":1}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	f := result.Success.Findings[0]
	if f.Status != "FAIL" || f.Severity != "CRITICAL" {
		t.Errorf("expected FAIL/CRITICAL, got %+v", f)
	}
	if !strings.Contains(result.Success.Warnings[0], "details incomplete") {
		t.Errorf("unexpected warning: %s", result.Success.Warnings[0])
	}
}

func TestParseASFFReportFindings(t *testing.T) {
	data := []byte(`[{
		"GeneratorId": "prowler-iam_root_mfa_enabled",
		"Title": "Ensure MFA is enabled for the root account",
		"Description": "MFA is not enabled for root account.",
		"Severity": {"Label": "CRITICAL"},
		"Compliance": {"Status": "FAILED", "RelatedRequirements": ["CIS-1.5", "ISMS-P 2.5.3"]},
		"Resources": [{"Type": "AwsAccount", "Id": "arn:aws:iam::123456789012:root", "Region": "us-east-1"}],
		"Remediation": {"Recommendation": {"Text": "Enable MFA for root.", "Url": "https://docs.aws.amazon.com"}}
	}]`)

	result := ParseASFFReport(data, Options{})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if len(result.Success.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(result.Success.Findings))
	}

	f := result.Success.Findings[0]
	if f.Status != "FAIL" || f.Severity != "CRITICAL" {
		t.Errorf("unexpected status/severity: %+v", f)
	}
	if f.CheckID != "iam_root_mfa_enabled" || f.Service != "iam" {
		t.Errorf("unexpected check id/service: %+v", f)
	}
	if f.Region != "us-east-1" || f.ResourceID != "arn:aws:iam::123456789012:root" {
		t.Errorf("unexpected resource: %+v", f)
	}
	if f.Recommendation != "Enable MFA for root." || f.Compliance != "CIS-1.5, ISMS-P 2.5.3" {
		t.Errorf("unexpected remediation/compliance: %+v", f)
	}
}

func TestParseASFFReportPreview(t *testing.T) {
	data := []byte(`[` + strings.Repeat(`{"Severity":{"Label":"LOW"}},`, 40) + `{}]`)
	result := ParseASFFReport(data, Options{PreviewLength: 20})
	if !result.OK() {
		t.Fatalf("unexpected failure: %+v", result.Failure)
	}
	if result.Success.TextPreview != string(data[:20]) {
		t.Errorf("unexpected preview: %q", result.Success.TextPreview)
	}
}
