package tui

import (
	"fmt"
	"strings"

	"github.com/ppiankov/prowlerhub/internal/models"
)

// detailHeight is the fixed number of lines for the detail panel.
const detailHeight = 6

// renderDetail produces the detail view for a selected finding.
func renderDetail(f *models.Finding, width int) string {
	if f == nil {
		return styleDetailPanel.Width(width).Render("No finding selected")
	}

	var b strings.Builder

	status := statusStyle(f.Status).Render(strings.ToUpper(f.Status))
	sev := severityStyle(f.Severity).Render(severityLabel(f.Severity))
	b.WriteString(fmt.Sprintf("%s %s  %s / %s\n", status, sev, f.Service, f.CheckID))
	if f.CheckTitle != "" {
		b.WriteString(f.CheckTitle + "\n")
	}
	b.WriteString(fmt.Sprintf("Resource: %s  Region: %s\n", f.ResourceID, f.Region))

	if f.StatusExtended != "" {
		b.WriteString(fmt.Sprintf("Detail: %s\n", f.StatusExtended))
	}
	if f.Recommendation != "" {
		b.WriteString(fmt.Sprintf("Fix: %s\n", f.Recommendation))
	}
	if f.Compliance != "" {
		b.WriteString(fmt.Sprintf("Compliance: %s", f.Compliance))
	}

	return styleDetailPanel.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}
