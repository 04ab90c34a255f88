package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/prowlerhub/internal/models"
)

var tableColumns = []table.Column{
	{Title: "Status", Width: 7},
	{Title: "Severity", Width: 10},
	{Title: "Service", Width: 12},
	{Title: "Check", Width: 34},
	{Title: "Resource", Width: 30},
}

// buildRows converts findings to table rows.
func buildRows(findings []models.Finding) []table.Row {
	rows := make([]table.Row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, table.Row{
			strings.ToUpper(f.Status),
			severityLabel(f.Severity),
			truncate(f.Service, tableColumns[2].Width),
			truncate(f.CheckID, tableColumns[3].Width),
			truncate(f.ResourceID, tableColumns[4].Width),
		})
	}
	return rows
}

func severityLabel(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ToUpper(s)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-len(ellipsis)]) + ellipsis
}

// newTable creates a bubbles table with standard columns and styling.
func newTable(rows []table.Row, height int) table.Model {
	t := table.New(
		table.WithColumns(tableColumns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(colorAccent).
		Bold(false)
	t.SetStyles(s)

	return t
}
