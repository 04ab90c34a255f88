package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/prowlerhub/internal/models"
)

// Severity colors
var (
	colorCritical = lipgloss.Color("#FF0000")
	colorHigh     = lipgloss.Color("#FF8800")
	colorMedium   = lipgloss.Color("#FFFF00")
	colorLow      = lipgloss.Color("#00FF00")
	colorMuted    = lipgloss.Color("#888888")
	colorAccent   = lipgloss.Color("#7B68EE")
	colorBorder   = lipgloss.Color("#444444")
)

// Panel styles
var (
	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	styleDetailPanel = lipgloss.NewStyle().
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderTop(true).
				BorderForeground(colorBorder)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	styleSearchPrompt = lipgloss.NewStyle().
				Foreground(colorAccent).Bold(true)
)

// severityStyle returns the lipgloss style for a severity level.
func severityStyle(severity string) lipgloss.Style {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case models.KeywordCritical:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	case models.KeywordHigh:
		return lipgloss.NewStyle().Foreground(colorHigh).Bold(true)
	case models.KeywordMedium:
		return lipgloss.NewStyle().Foreground(colorMedium)
	case models.KeywordLow:
		return lipgloss.NewStyle().Foreground(colorLow)
	default:
		return lipgloss.NewStyle()
	}
}

// gradeStyle returns the lipgloss style for a letter grade.
func gradeStyle(grade string) lipgloss.Style {
	switch grade {
	case models.GradeA:
		return lipgloss.NewStyle().Foreground(colorLow).Bold(true)
	case models.GradeB:
		return lipgloss.NewStyle().Foreground(colorLow)
	case models.GradeC:
		return lipgloss.NewStyle().Foreground(colorMedium).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	}
}

// statusStyle colors a check status.
func statusStyle(status string) lipgloss.Style {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case models.KeywordPass:
		return lipgloss.NewStyle().Foreground(colorLow)
	case models.KeywordFail:
		return lipgloss.NewStyle().Foreground(colorCritical).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(colorMuted)
	}
}
