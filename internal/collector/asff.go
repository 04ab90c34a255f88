package collector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/securityhub/types"

	"github.com/ppiankov/prowlerhub/internal/models"
)

const (
	maxSampleKeys    = 5
	maxTopLevelKeys  = 10
	generatorPrefix  = "prowler-"
	serviceFieldName = "ServiceName"
)

// asffFinding holds the subset of an AWS Security Finding Format record
// that the report needs. Every field is optional.
type asffFinding struct {
	GeneratorID string `json:"GeneratorId"`
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Region      string `json:"Region"`
	Compliance  *struct {
		Status              types.ComplianceStatus `json:"Status"`
		RelatedRequirements []string               `json:"RelatedRequirements"`
	} `json:"Compliance"`
	Severity *struct {
		Label types.SeverityLabel `json:"Label"`
	} `json:"Severity"`
	Resources []struct {
		Type   string `json:"Type"`
		ID     string `json:"Id"`
		Region string `json:"Region"`
	} `json:"Resources"`
	ProductFields map[string]string `json:"ProductFields"`
	Remediation   *struct {
		Recommendation struct {
			Text string `json:"Text"`
			URL  string `json:"Url"`
		} `json:"Recommendation"`
	} `json:"Remediation"`
}

// complianceStatus returns the compliance status, or "" when absent
func (f *asffFinding) complianceStatus() string {
	if f.Compliance == nil {
		return ""
	}
	return string(f.Compliance.Status)
}

// severityLabel returns the uppercased severity label, or "" when absent
func (f *asffFinding) severityLabel() string {
	if f.Severity == nil {
		return ""
	}
	return normalizeLabel(string(f.Severity.Label))
}

func (f *asffFinding) outcome() string {
	return outcomeFor(f.complianceStatus())
}

// outcomeFor maps a compliance status onto the PASS/FAIL vocabulary.
// Only PASSED counts as a pass; everything else, including empty, fails.
func outcomeFor(status string) string {
	if normalizeLabel(status) == string(types.ComplianceStatusPassed) {
		return models.KeywordPass
	}
	return models.KeywordFail
}

func normalizeLabel(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// stringAt follows a path of object keys through raw and returns the string
// found there. Missing keys and values of any other type yield "".
func stringAt(raw json.RawMessage, path ...string) string {
	for _, key := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
		raw = obj[key]
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (f *asffFinding) toFinding() models.Finding {
	checkID := strings.TrimPrefix(f.GeneratorID, generatorPrefix)

	finding := models.Finding{
		Status:         f.outcome(),
		Severity:       f.severityLabel(),
		Service:        f.ProductFields[serviceFieldName],
		Region:         f.Region,
		CheckID:        checkID,
		CheckTitle:     f.Title,
		StatusExtended: f.Description,
	}
	if finding.Service == "" {
		if i := strings.Index(checkID, "_"); i > 0 {
			finding.Service = checkID[:i]
		}
	}
	if len(f.Resources) > 0 {
		finding.ResourceID = f.Resources[0].ID
		if finding.Region == "" {
			finding.Region = f.Resources[0].Region
		}
	}
	if f.Remediation != nil {
		finding.Recommendation = f.Remediation.Recommendation.Text
	}
	if f.Compliance != nil {
		finding.Compliance = strings.Join(f.Compliance.RelatedRequirements, ", ")
	}
	return finding
}

// ParseASFFReport parses a JSON document holding a list of ASFF findings.
// A top-level object is accepted and summarized by its keys.
func ParseASFFReport(data []byte, opts Options) models.ParseResult {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		var probe interface{}
		err := json.Unmarshal(trimmed, &probe)
		if err == nil {
			err = fmt.Errorf("invalid JSON document")
		}
		return models.Failed(models.KindMalformed, fmt.Sprintf("JSON parsing error: %v", err))
	}

	result := &models.ParseSuccess{
		FileType:    models.FileTypeASFF,
		TextPreview: truncateRunes(string(data), opts.previewLength()),
	}

	switch trimmed[0] {
	case '[':
		if err := parseFindingList(trimmed, result); err != nil {
			return models.Failed(models.KindMalformed, fmt.Sprintf("JSON analysis error: %v", err))
		}
	case '{':
		keys, err := objectKeys(trimmed, maxTopLevelKeys)
		if err != nil {
			return models.Failed(models.KindMalformed, fmt.Sprintf("JSON analysis error: %v", err))
		}
		result.DataType = "object"
		result.Keys = keys
	default:
		return models.Failed(models.KindMalformed,
			"JSON analysis error: expected a list of findings or an object at the top level")
	}

	return models.Succeeded(result)
}

// parseFindingList fills result from a top-level JSON array
func parseFindingList(data []byte, result *models.ParseSuccess) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}

	result.DataType = "list"
	result.ItemCount = len(items)
	result.KeywordCounts = models.NewKeywordCounts()
	result.Findings = make([]models.Finding, 0, len(items))

	if len(items) > 0 && isObject(items[0]) {
		keys, err := objectKeys(items[0], maxSampleKeys)
		if err != nil {
			return err
		}
		result.SampleKeys = keys
	}

	for i, item := range items {
		if !isObject(item) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("finding %d: not an object, skipped", i))
			continue
		}

		// Tallies read only these two paths; the full decode below may fail.
		outcome := outcomeFor(stringAt(item, "Compliance", "Status"))
		label := normalizeLabel(stringAt(item, "Severity", "Label"))

		result.KeywordCounts[outcome]++

		if models.IsSeverity(label) {
			result.KeywordCounts[label]++
		} else {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("finding %d: unrecognized severity label %q", i, label))
		}

		var f asffFinding
		if err := json.Unmarshal(item, &f); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("finding %d: details incomplete: %v", i, err))
			result.Findings = append(result.Findings, models.Finding{Status: outcome, Severity: label})
			continue
		}

		result.Findings = append(result.Findings, f.toFinding())
	}

	return nil
}

// objectKeys returns up to limit keys of a JSON object in document order
func objectKeys(data []byte, limit int) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	keys := make([]string, 0, limit)
	for dec.More() && len(keys) < limit {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
