package tui

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/prowlerhub/internal/models"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modePick
)

// pickTarget is the finding field a picker narrows on.
type pickTarget int

const (
	pickService pickTarget = iota
	pickRegion
)

const defaultTableHeight = 15

const footerHelp = "q:quit  /:search  t:service  r:region  v:severity  f:failing  n/N:next fail  s:sort  c:copy  esc:clear"

// Model browses the findings of one report.
type Model struct {
	file     string
	findings []models.Finding // every finding, severity order
	stats    findingStats

	visible []models.Finding // findings left after filtering, in sort order
	filters filterState
	sortBy  sortField

	table  table.Model
	search textinput.Model
	mode   mode
	pick   picker
	target pickTarget

	width  int
	height int
	notice string // last action result; filters are described separately

	clipboard    string
	clipboardOut io.Writer // receives the OSC 52 sequence; nil disables it
}

// New builds the browser model. The caller's slice is not modified.
func New(file string, findings []models.Finding) Model {
	all := make([]models.Finding, len(findings))
	copy(all, findings)
	sortFindings(all, sortBySeverity)

	search := textinput.New()
	search.Placeholder = "check, resource, region..."
	search.CharLimit = 64

	return Model{
		file:     file,
		findings: all,
		stats:    computeStats(all),
		visible:  all,
		sortBy:   sortBySeverity,
		table:    newTable(buildRows(all), defaultTableHeight),
		search:   search,
		width:    80,
		height:   24,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modePick:
			return m.updatePicker(msg), nil
		}
		return m.updateNormal(msg)
	}

	var cmd tea.Cmd
	if m.mode == modeSearch {
		m.search, cmd = m.search.Update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.table.SetWidth(width)
	rows := height - headerHeight - detailHeight - 3
	if rows < 3 {
		rows = 3
	}
	m.table.SetHeight(rows)
}

// normalActions maps normal-mode keys to actions. Keys that match none of
// them move the table cursor.
var normalActions = []struct {
	binding key.Binding
	run     func(*Model) tea.Cmd
}{
	{keys.Quit, func(*Model) tea.Cmd { return tea.Quit }},
	{keys.Search, (*Model).startSearch},
	{keys.FilterService, func(m *Model) tea.Cmd { m.openPicker(pickService); return nil }},
	{keys.FilterRegion, func(m *Model) tea.Cmd { m.openPicker(pickRegion); return nil }},
	{keys.Severity, func(m *Model) tea.Cmd {
		m.filters.MinSeverity = nextSeverityThreshold(m.filters.MinSeverity)
		m.refresh()
		return nil
	}},
	{keys.FailOnly, func(m *Model) tea.Cmd {
		m.filters.FailOnly = !m.filters.FailOnly
		m.refresh()
		return nil
	}},
	{keys.NextFail, func(m *Model) tea.Cmd { m.jumpToFailing(1); return nil }},
	{keys.PrevFail, func(m *Model) tea.Cmd { m.jumpToFailing(-1); return nil }},
	{keys.Sort, func(m *Model) tea.Cmd {
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.refresh()
		m.notice = "Sort: " + sortFieldName(m.sortBy)
		return nil
	}},
	{keys.Copy, func(m *Model) tea.Cmd { m.copySelectedFinding(); return nil }},
	{keys.ClearFilter, func(m *Model) tea.Cmd {
		m.filters = filterState{}
		m.search.SetValue("")
		m.notice = ""
		m.refresh()
		return nil
	}},
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	for _, a := range normalActions {
		if key.Matches(msg, a.binding) {
			cmd := a.run(&m)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) startSearch() tea.Cmd {
	m.mode = modeSearch
	m.search.SetValue(m.filters.SearchText)
	m.search.Focus()
	return textinput.Blink
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filters.SearchText = strings.TrimSpace(m.search.Value())
		m.mode = modeNormal
		m.search.Blur()
		m.refresh()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeNormal
		m.search.Blur()
		m.search.SetValue(m.filters.SearchText)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) openPicker(target pickTarget) {
	m.target = target
	m.mode = modePick
	switch target {
	case pickRegion:
		m.pick = newPicker("Filter by region", uniqueRegions(m.findings), m.filters.Region)
	default:
		m.pick = newPicker("Filter by service", uniqueServices(m.findings), m.filters.Service)
	}
}

func (m Model) updatePicker(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		m.pick.move(-1)
	case "down", "j":
		m.pick.move(1)
	case "enter":
		switch m.target {
		case pickRegion:
			m.filters.Region = m.pick.value()
		default:
			m.filters.Service = m.pick.value()
		}
		m.mode = modeNormal
		m.refresh()
	case "esc":
		m.mode = modeNormal
	}
	return m
}

// refresh reapplies filters and sort order and keeps the cursor in range.
func (m *Model) refresh() {
	m.visible = applyFilters(m.findings, m.filters)
	sortFindings(m.visible, m.sortBy)
	m.table.SetRows(buildRows(m.visible))
	if n := len(m.visible); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
}

// jumpToFailing moves the cursor to the next failing finding in direction
// dir, wrapping around the visible list.
func (m *Model) jumpToFailing(dir int) {
	n := len(m.visible)
	start := m.table.Cursor()
	for step := 1; step <= n; step++ {
		i := ((start+dir*step)%n + n) % n
		if isFail(m.visible[i]) {
			m.table.SetCursor(i)
			m.notice = ""
			return
		}
	}
	m.notice = "No failing findings"
}

func (m *Model) selectedFinding() *models.Finding {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.visible) {
		return nil
	}
	return &m.visible[cursor]
}

// copySelectedFinding puts a one-line summary of the selected finding on
// the terminal clipboard with OSC 52.
func (m *Model) copySelectedFinding() {
	f := m.selectedFinding()
	if f == nil {
		m.notice = "Nothing to copy"
		return
	}
	text := fmt.Sprintf("[%s %s] %s %s: %s",
		strings.ToUpper(f.Status), severityLabel(f.Severity), f.Service, f.CheckID, f.ResourceID)
	if f.StatusExtended != "" {
		text += " -- " + f.StatusExtended
	}
	m.clipboard = text
	m.notice = "Copied!"
	if m.clipboardOut != nil {
		fmt.Fprintf(m.clipboardOut, "\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(renderHeader(m.file, m.stats, m.width))
	b.WriteString("\n")

	switch m.mode {
	case modeSearch:
		b.WriteString(styleSearchPrompt.Render("/ "))
		b.WriteString(m.search.View())
		b.WriteString("\n")
	case modePick:
		b.WriteString(m.pick.view())
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(renderDetail(m.selectedFinding(), m.width))
	b.WriteString("\n")
	b.WriteString(m.footer())

	return b.String()
}

func (m Model) footer() string {
	var status []string
	if m.notice != "" {
		status = append(status, m.notice)
	}
	if desc := m.filters.describe(); desc != "" {
		status = append(status, desc)
	}
	count := fmt.Sprintf("%d/%d findings", len(m.visible), len(m.findings))
	if m.filters.active() {
		count += fmt.Sprintf(" (%d failing)", computeStats(m.visible).Fail)
	}
	status = append(status, count)
	right := strings.Join(status, "  ")

	gap := m.width - lipgloss.Width(footerHelp) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return styleFooter.Render(footerHelp + strings.Repeat(" ", gap) + right)
}

// Run starts the browser on the alternate screen.
func Run(file string, findings []models.Finding) error {
	m := New(file, findings)
	m.clipboardOut = os.Stdout
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
