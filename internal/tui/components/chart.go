package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/fireplot/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Series is one line of a LineChart.
type Series struct {
	Name   string
	Values []float64
	Color  lipgloss.Color
}

// Resample reduces values to at most n points by keeping each bucket's
// maximum. Shorter inputs are returned unchanged.
func Resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		lo := i * len(values) / n
		hi := max((i+1)*len(values)/n, lo+1)
		out[i] = values[lo]
		for _, v := range values[lo+1 : hi] {
			out[i] = math.Max(out[i], v)
		}
	}
	return out
}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3) // UTF-8 block chars are 3 bytes
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		buf.WriteRune(blocks[idx])
	}

	return style.Render(buf.String())
}

type cell struct {
	r      rune
	series int // -1 for empty
}

// LineChart renders series against a shared category axis. tickFmt formats
// y-axis tick values. Series drawn later paint over earlier ones.
func LineChart(series []Series, labels []string, tickFmt func(float64) string, width, height int, legend bool) string {
	n := len(labels)
	lo, hi, seen := 0.0, 0.0, false
	for _, s := range series {
		n = max(n, len(s.Values))
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if !seen {
				lo, hi, seen = v, v, true
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if n == 0 || !seen {
		return ""
	}
	if tickFmt == nil {
		tickFmt = formatChartLabel
	}
	if height < 3 {
		return Sparkline(series[0].Values, series[0].Color)
	}

	t := theme.Active

	// Y-axis always includes zero; compute tick step, floor and ceiling.
	lo = math.Min(lo, 0)
	hi = math.Max(hi, 0)
	if hi == lo {
		hi = lo + 1
	}
	tickStep := chartTickStep(hi - lo)
	maxIntervals := max(2, (height-1)/2)
	var floor, ceiling float64
	var numIntervals int
	for {
		floor = math.Floor(lo/tickStep) * tickStep
		ceiling = math.Ceil(hi/tickStep) * tickStep
		numIntervals = max(1, int(math.Round((ceiling-floor)/tickStep)))
		if numIntervals <= maxIntervals {
			break
		}
		tickStep *= 2
	}

	rowsPerTick := max(1, (height-1)/numIntervals)
	chartH := rowsPerTick*numIntervals + 1

	tickLabels := make(map[int]string, numIntervals+1)
	yLabelW := 4
	for i := 0; i <= numIntervals; i++ {
		lbl := tickFmt(floor + tickStep*float64(i))
		tickLabels[i*rowsPerTick] = lbl
		yLabelW = max(yLabelW, lipgloss.Width(lbl)+1)
	}

	chartW := max(5, width-yLabelW-1)

	grid := make([][]cell, chartH)
	for r := range grid {
		grid[r] = make([]cell, chartW)
		for c := range grid[r] {
			grid[r][c] = cell{r: ' ', series: -1}
		}
	}

	rowOf := func(v float64) int {
		r := int(math.Round((v - floor) / (ceiling - floor) * float64(chartH-1)))
		return max(0, min(r, chartH-1))
	}

	for si, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		prev := -1
		for c := 0; c < chartW; c++ {
			idx := sampleIndex(c, chartW, n)
			if idx >= len(s.Values) {
				break
			}
			v := s.Values[idx]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				prev = -1
				continue
			}
			row := rowOf(v)
			if prev >= 0 && abs(row-prev) > 1 {
				step := 1
				if row < prev {
					step = -1
				}
				for r := prev + step; r != row; r += step {
					grid[r][c] = cell{r: '│', series: si}
				}
			}
			grid[row][c] = cell{r: '•', series: si}
			prev = row
		}
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	seriesStyles := make([]lipgloss.Style, len(series))
	for i, s := range series {
		seriesStyles[i] = lipgloss.NewStyle().Foreground(s.Color)
	}

	var b strings.Builder

	if legend {
		b.WriteString(strings.Repeat(" ", yLabelW+1))
		for i, s := range series {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(seriesStyles[i].Render("━━"))
			b.WriteString(" ")
			b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(s.Name))
		}
		b.WriteString("\n")
	}

	for r := chartH - 1; r >= 0; r-- {
		label := tickLabels[r]
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		if label != "" {
			b.WriteString(axisStyle.Render("┤"))
		} else {
			b.WriteString(axisStyle.Render("│"))
		}

		// Group runs of cells with the same series to keep escape codes short.
		row := grid[r]
		for c := 0; c < len(row); {
			end := c + 1
			for end < len(row) && row[end].series == row[c].series {
				end++
			}
			var run strings.Builder
			for _, cl := range row[c:end] {
				run.WriteRune(cl.r)
			}
			if row[c].series < 0 {
				b.WriteString(run.String())
			} else {
				b.WriteString(seriesStyles[row[c].series].Render(run.String()))
			}
			c = end
		}
		b.WriteString("\n")
	}

	// X-axis line
	b.WriteString(strings.Repeat(" ", yLabelW))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", chartW)))

	if len(labels) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", yLabelW+1))
		b.WriteString(axisStyle.Render(axisLabels(labels, chartW)))
	}

	return b.String()
}

// axisLabels places the first, middle and last labels along the x-axis.
func axisLabels(labels []string, width int) string {
	buf := []rune(strings.Repeat(" ", width))
	place := func(pos int, lbl string) bool {
		r := []rune(lbl)
		if pos+len(r) > width {
			pos = width - len(r)
		}
		if pos < 0 {
			return false
		}
		for i := pos; i < pos+len(r); i++ {
			if buf[i] != ' ' || (i > 0 && i == pos && buf[i-1] != ' ') {
				return false
			}
		}
		copy(buf[pos:], r)
		return true
	}

	n := len(labels)
	place(0, labels[0])
	if n > 1 {
		last := []rune(labels[n-1])
		place(width-len(last), labels[n-1])
	}
	if n > 2 {
		mid := labels[n/2]
		place(width/2-len([]rune(mid))/2, mid)
	}
	return strings.TrimRight(string(buf), " ")
}

// sampleIndex maps a chart column onto a data index.
func sampleIndex(col, cols, n int) int {
	if n <= 1 || cols <= 1 {
		return 0
	}
	return col * (n - 1) / (cols - 1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return trimZero(fmt.Sprintf("%.1f", v/1e9)) + "B"
	case a >= 1e6:
		return trimZero(fmt.Sprintf("%.1f", v/1e6)) + "M"
	case a >= 1e3:
		return trimZero(fmt.Sprintf("%.1f", v/1e3)) + "k"
	case a >= 1 || a == 0:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func trimZero(s string) string {
	return strings.TrimSuffix(s, ".0")
}
