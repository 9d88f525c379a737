package cli

import (
	"strings"

	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a bordered key/value or columnar table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box at least 40 cells wide.
func RenderTitle(title string) string {
	t := theme.Active
	width := max(lipgloss.Width(title)+4, 40)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary).Render(title))
}

// RenderTable renders t with the first column left-aligned and the rest
// right-aligned. Empty tables render as "".
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	th := theme.Active

	header := lipgloss.NewStyle().Bold(true).Foreground(th.Accent).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(th.TextPrimary).Padding(0, 1)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(th.TextDim)).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cell
			if row == table.HeaderRow {
				s = header
			}
			if col > 0 && row != table.HeaderRow {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	if len(t.Headers) > 0 {
		tbl = tbl.Headers(t.Headers...)
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(header.UnsetPadding().Render(t.Title))
		b.WriteString("\n")
	}
	b.WriteString(tbl.Render())
	b.WriteString("\n")
	return b.String()
}

// RenderError renders the page error line shown after a failed cycle.
func RenderError(msg string) string {
	return "  " + lipgloss.NewStyle().Bold(true).Foreground(theme.Active.Red).Render(msg)
}
