// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/fireplot/internal/chart"
	"github.com/theirongolddev/fireplot/internal/projection"
)

// FormatHorizon formats a month count as years and months.
// e.g., 245 -> "20y 5m", 12 -> "1y", 7 -> "7m"
func FormatHorizon(months float64) string {
	if months <= 0 || math.IsNaN(months) {
		return "0m"
	}

	total := int64(math.Round(months))
	years := total / 12
	rest := total % 12

	switch {
	case years > 0 && rest > 0:
		return fmt.Sprintf("%dy %dm", years, rest)
	case years > 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dm", rest)
	}
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a ratio as a percentage string.
func FormatPercent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

// Summary builds the key/value table printed under a rendered projection.
func Summary(p *projection.Projection) Table {
	n := p.Len()
	lastMonth := p.Months[n-1]
	principal := p.Principal[n-1]
	contributed := p.Contributions[n-1]

	peak, peakIdx := p.Principal[0], 0
	for i, v := range p.Principal {
		if v > peak {
			peak, peakIdx = v, i
		}
	}

	rows := [][]string{
		{"Data points", FormatNumber(int64(n))},
		{"Horizon", FormatHorizon(lastMonth)},
		{"Final principal", chart.FormatCurrencyFixed(principal)},
		{"Total contributions", chart.FormatCurrencyFixed(contributed)},
		{"Growth", chart.FormatCurrencyFixed(principal - contributed)},
	}
	if contributed != 0 {
		rows = append(rows, []string{"Growth / contributions", FormatPercent((principal - contributed) / contributed)})
	}
	rows = append(rows, []string{"Peak principal",
		chart.FormatCurrencyFixed(peak) + " (" + projection.MonthLabel(p.Months[peakIdx]) + ")"})

	if len(p.TakeHome) > 0 {
		maxTake := p.TakeHome[0]
		for _, v := range p.TakeHome {
			maxTake = math.Max(maxTake, v)
		}
		rows = append(rows, []string{"Peak monthly take-home", chart.FormatCurrencyFixed(maxTake)})
	}

	title := p.Title
	if title == "" {
		title = "Projection"
	}
	return Table{Title: title, Rows: rows}
}

// FormatDelta renders a currency change with an explicit sign, e.g. "+$12.50".
func FormatDelta(v float64) string {
	if v < 0 {
		return chart.FormatCurrencyFixed(v)
	}
	return "+" + chart.FormatCurrencyFixed(v)
}
