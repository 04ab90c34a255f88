package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// filterState holds current active filters.
type filterState struct {
	Service     string
	Region      string
	MinSeverity string // uppercase severity keyword, "" for any
	FailOnly    bool
	SearchText  string
}

// active reports whether any filter narrows the findings.
func (f filterState) active() bool {
	return f != filterState{}
}

// describe renders the active filters for the footer, "" when none are set.
func (f filterState) describe() string {
	var parts []string
	if f.Service != "" {
		parts = append(parts, "Service: "+f.Service)
	}
	if f.Region != "" {
		parts = append(parts, "Region: "+f.Region)
	}
	if f.MinSeverity != "" {
		parts = append(parts, f.MinSeverity+"+")
	}
	if f.FailOnly {
		parts = append(parts, "Failing only")
	}
	if f.SearchText != "" {
		parts = append(parts, fmt.Sprintf("%q", f.SearchText))
	}
	return strings.Join(parts, "  ")
}

// nextSeverityThreshold steps the minimum severity through
// any -> CRITICAL -> HIGH -> MEDIUM -> LOW -> any.
func nextSeverityThreshold(current string) string {
	if current == "" {
		return models.SeverityKeywords[0]
	}
	for i, sev := range models.SeverityKeywords {
		if sev == current && i+1 < len(models.SeverityKeywords) {
			return models.SeverityKeywords[i+1]
		}
	}
	return ""
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortBySeverity sortField = iota
	sortByStatus
	sortByService
	sortByCheck
	sortByRegion
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 5

var severityPriority = map[string]int{
	"critical": 0, "high": 1, "medium": 2, "low": 3,
}

// statusPriority puts failing checks first.
var statusPriority = map[string]int{
	"fail": 0, "manual": 1, "pass": 2,
}

func priority(table map[string]int, value string) int {
	if p, ok := table[strings.ToLower(strings.TrimSpace(value))]; ok {
		return p
	}
	return len(table)
}

// applyFilters returns findings matching all active filters.
func applyFilters(findings []models.Finding, f filterState) []models.Finding {
	result := make([]models.Finding, 0, len(findings))
	searchLower := strings.ToLower(f.SearchText)

	for _, finding := range findings {
		if f.Service != "" && finding.Service != f.Service {
			continue
		}
		if f.Region != "" && finding.Region != f.Region {
			continue
		}
		if f.MinSeverity != "" &&
			priority(severityPriority, finding.Severity) > priority(severityPriority, f.MinSeverity) {
			continue
		}
		if f.FailOnly && !isFail(finding) {
			continue
		}
		if searchLower != "" && !matchesSearch(finding, searchLower) {
			continue
		}
		result = append(result, finding)
	}
	return result
}

func isFail(f models.Finding) bool {
	return strings.EqualFold(strings.TrimSpace(f.Status), models.KeywordFail)
}

func matchesSearch(f models.Finding, searchLower string) bool {
	for _, field := range []string{f.CheckID, f.CheckTitle, f.Service, f.Region, f.ResourceID, f.StatusExtended, f.Compliance} {
		if strings.Contains(strings.ToLower(field), searchLower) {
			return true
		}
	}
	return false
}

// sortFindings sorts a slice of findings in place by the given field.
func sortFindings(findings []models.Finding, field sortField) {
	sort.SliceStable(findings, func(i, j int) bool {
		switch field {
		case sortBySeverity:
			return priority(severityPriority, findings[i].Severity) < priority(severityPriority, findings[j].Severity)
		case sortByStatus:
			return priority(statusPriority, findings[i].Status) < priority(statusPriority, findings[j].Status)
		case sortByService:
			return findings[i].Service < findings[j].Service
		case sortByCheck:
			return findings[i].CheckID < findings[j].CheckID
		case sortByRegion:
			return findings[i].Region < findings[j].Region
		default:
			return false
		}
	})
}

// uniqueServices returns deduplicated, sorted service names.
func uniqueServices(findings []models.Finding) []string {
	return uniqueValues(findings, func(f models.Finding) string { return f.Service })
}

// uniqueRegions returns deduplicated, sorted regions.
func uniqueRegions(findings []models.Finding) []string {
	return uniqueValues(findings, func(f models.Finding) string { return f.Region })
}

func uniqueValues(findings []models.Finding, field func(models.Finding) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, f := range findings {
		v := field(f)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortBySeverity:
		return "severity"
	case sortByStatus:
		return "status"
	case sortByService:
		return "service"
	case sortByCheck:
		return "check"
	case sortByRegion:
		return "region"
	default:
		return "unknown"
	}
}
