package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit          key.Binding
	Search        key.Binding
	FilterService key.Binding
	FilterRegion  key.Binding
	Severity      key.Binding
	FailOnly      key.Binding
	NextFail      key.Binding
	PrevFail      key.Binding
	Sort          key.Binding
	Copy          key.Binding
	ClearFilter   key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	FilterService: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "filter service"),
	),
	FilterRegion: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "filter region"),
	),
	Severity: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "minimum severity"),
	),
	FailOnly: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "failing only"),
	),
	NextFail: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next failing"),
	),
	PrevFail: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "previous failing"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle sort"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy"),
	),
	ClearFilter: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear"),
	),
}
