package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// headerHeight is the number of terminal lines the header occupies.
const headerHeight = 5

// passRateBarWidth is the number of cells in the pass-rate bar.
const passRateBarWidth = 30

// findingStats summarizes the findings shown in the header.
type findingStats struct {
	Total      int
	Pass       int
	Fail       int
	PassRate   float64
	Grade      string
	BySeverity map[string]int // failing findings only
}

// computeStats tallies statuses and failing severities.
func computeStats(findings []models.Finding) findingStats {
	stats := findingStats{
		Total:      len(findings),
		BySeverity: make(map[string]int),
	}
	for _, f := range findings {
		switch strings.ToUpper(strings.TrimSpace(f.Status)) {
		case models.KeywordPass:
			stats.Pass++
		case models.KeywordFail:
			stats.Fail++
			if sev := strings.ToUpper(strings.TrimSpace(f.Severity)); models.IsSeverity(sev) {
				stats.BySeverity[sev]++
			}
		}
	}
	stats.Grade, stats.PassRate = models.CalculateGrade(stats.Pass, stats.Fail)
	return stats
}

// renderHeader produces the header string for a report's findings.
func renderHeader(file string, stats findingStats, width int) string {
	var b strings.Builder

	// Line 1: file and grade
	gradeText := gradeStyle(stats.Grade).Render(
		fmt.Sprintf("GRADE %s (%.1f%%)", stats.Grade, stats.PassRate),
	)
	b.WriteString(fmt.Sprintf("prowlerhub  %s  %s", file, gradeText))
	b.WriteString("\n")

	// Line 2: totals
	b.WriteString(fmt.Sprintf("Findings: %d  Pass: %d  Fail: %d",
		stats.Total, stats.Pass, stats.Fail))
	b.WriteString("\n")

	// Line 3: failing severity breakdown
	sevParts := make([]string, 0, len(models.SeverityKeywords))
	for _, sev := range models.SeverityKeywords {
		if count := stats.BySeverity[sev]; count > 0 {
			label := fmt.Sprintf("%s:%d", sev[:1], count)
			sevParts = append(sevParts, severityStyle(sev).Render(label))
		}
	}
	if len(sevParts) > 0 {
		b.WriteString("Failing: ")
		b.WriteString(strings.Join(sevParts, "  "))
	}
	b.WriteString("\n")

	// Line 4: pass-rate bar
	if stats.Pass+stats.Fail > 0 {
		b.WriteString("Pass rate: ")
		b.WriteString(renderBar(stats.PassRate, passRateBarWidth))
	}

	return styleHeader.Width(width).Render(b.String())
}

// renderBar draws a percentage as a filled/empty bar of the given width.
func renderBar(percent float64, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
