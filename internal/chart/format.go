package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a value as dollars with thousands separators and at
// most three fraction digits, e.g. 1000 -> "$1,000", 1234.5 -> "$1,234.5".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$" + fmt.Sprint(v)
	}
	rounded, _ := decimal.NewFromFloat(v).Round(3).Float64()
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return "$" + humanize.Commaf(rounded)
}

// FormatCurrencyFixed formats a value with exactly two decimals,
// e.g. 1010 -> "$1,010.00".
func FormatCurrencyFixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$" + fmt.Sprint(v)
	}
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	_, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return "$" + sign + humanize.Comma(d.IntPart()) + "." + frac
}

// AgeTitle renders a fractional age as "Age: {years} years, {months} months".
func AgeTitle(age float64) string {
	years := math.Floor(age)
	months := math.Round((age - years) * 12)
	return fmt.Sprintf("Age: %.0f years, %.0f months", years, months)
}

func humanizeValue(v float64) string {
	return strings.TrimPrefix(FormatCurrency(v), "$")
}
