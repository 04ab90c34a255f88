package tui

import (
	"fmt"
	"strings"
)

// pickerAll is the first option of every picker and clears the filter.
const pickerAll = "All"

// picker is a single-choice list shown over the table when narrowing the
// findings to one service or region.
type picker struct {
	title   string
	options []string
	cursor  int
}

func newPicker(title string, values []string, current string) picker {
	p := picker{title: title, options: append([]string{pickerAll}, values...)}
	for i, v := range values {
		if v == current {
			p.cursor = i + 1
		}
	}
	return p
}

// move shifts the cursor by delta, clamped to the option list.
func (p *picker) move(delta int) {
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.options) {
		p.cursor = len(p.options) - 1
	}
}

// value returns the chosen filter value, "" for All.
func (p picker) value() string {
	if p.cursor <= 0 || p.cursor >= len(p.options) {
		return ""
	}
	return p.options[p.cursor]
}

func (p picker) view() string {
	var b strings.Builder
	b.WriteString(p.title + ":\n")
	for i, opt := range p.options {
		marker := "  "
		if i == p.cursor {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", marker, opt))
	}
	return b.String()
}
