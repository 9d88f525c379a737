// Package components provides reusable terminal widgets: cards, line charts
// and the status bar.
package components

import (
	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tone colors a metric's detail line.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// Metric is one headline number shown in a MetricCard.
type Metric struct {
	Label  string
	Value  string
	Detail string // optional third line
	Tone   Tone
}

// Placeholder returns a metric with an em-dash value, shown before the
// first successful render.
func Placeholder(label string) Metric {
	return Metric{Label: label, Value: "—"}
}

// LayoutRow splits totalWidth into n widths summing to exactly totalWidth.
// Leading items take the remainder.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = totalWidth / n
		if i < totalWidth%n {
			widths[i]++
		}
	}
	return widths
}

// cardStyle is the rounded frame shared by every card. outerWidth includes
// the border.
func cardStyle(outerWidth int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Active.Border).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)
}

func toneColor(tone Tone) lipgloss.Color {
	switch tone {
	case TonePositive:
		return theme.Active.Green
	case ToneNegative:
		return theme.Active.Red
	default:
		return theme.Active.TextDim
	}
}

// MetricCard renders m in a card of the given outer width. The detail line
// is always reserved so cards in a row share one height.
func MetricCard(m Metric, outerWidth int) string {
	t := theme.Active

	content := lipgloss.NewStyle().Foreground(t.TextMuted).Render(m.Label) + "\n" +
		lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true).Render(m.Value) + "\n" +
		lipgloss.NewStyle().Foreground(toneColor(m.Tone)).Render(m.Detail)
	return cardStyle(outerWidth).Render(content)
}

// MetricCardRow lays metrics side by side across totalWidth.
func MetricCardRow(metrics []Metric, totalWidth int) string {
	if len(metrics) == 0 {
		return ""
	}
	widths := LayoutRow(totalWidth, len(metrics))
	rendered := make([]string, len(metrics))
	for i, m := range metrics {
		rendered[i] = MetricCard(m, widths[i])
	}
	return CardRow(rendered)
}

// ContentCard renders body under an optional bold title.
func ContentCard(title, body string, outerWidth int) string {
	content := body
	if title != "" {
		content = lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Bold(true).Render(title) + "\n" + body
	}
	return cardStyle(outerWidth).Render(content)
}

// CardRow joins rendered cards horizontally, top-aligned.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// CardInnerWidth is the usable text width of a card: border and padding
// take four cells.
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}
