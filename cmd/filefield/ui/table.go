package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders static rows as aligned columns, e.g. path history.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string

	// RightAlign marks numeric columns by index.
	RightAlign map[int]bool
}

// NewTable creates a table with the given title and headers.
func NewTable(title string, headers ...string) *Table {
	return &Table{Title: title, Headers: headers}
}

// AddRow adds a row. Cells beyond the header count are dropped.
func (t *Table) AddRow(cells ...string) {
	if len(cells) > len(t.Headers) {
		cells = cells[:len(t.Headers)]
	}
	t.Rows = append(t.Rows, cells)
}

// View renders the table. An empty table renders empty.
func (t *Table) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	header := styles.Label.Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	sep := styles.Muted.Render("│")

	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(styles.Title.UnsetMarginBottom().Render(t.Title))
		sb.WriteString("\n")
	}

	line := func(style lipgloss.Style, cells []string) {
		parts := make([]string, len(t.Headers))
		for i := range t.Headers {
			var v string
			if i < len(cells) {
				v = cells[i]
			}
			s := style.Width(widths[i] + 2)
			if t.RightAlign[i] {
				s = s.Align(lipgloss.Right)
			}
			parts[i] = s.Render(v)
		}
		sb.WriteString(strings.Join(parts, sep))
		sb.WriteString("\n")
	}

	line(header, t.Headers)

	total := len(t.Headers) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range t.Rows {
		line(cell, row)
	}
	return sb.String()
}
