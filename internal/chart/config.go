// Package chart builds line-chart configurations from validated projections.
// A Config mirrors the Chart.js line-chart shape so it can be serialized for
// a browser page, and it also carries everything the terminal and image
// canvases need to draw the same chart.
package chart

import (
	"encoding/json"

	"github.com/theirongolddev/fireplot/internal/projection"
)

// Value and title formats understood by the canvases.
const (
	FormatCurrencyTicks = "currency"
	FormatCurrency2dp   = "currency-2dp"

	TitleAge   = "age"
	TitleLabel = "label"
)

// Config is a line chart description.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data holds the category axis and series.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	// Ages carries the numeric age of every label for tooltip titles.
	Ages []float64 `json:"ages,omitempty"`
}

// Dataset is one plotted series.
type Dataset struct {
	Label            string    `json:"label"`
	Data             []float64 `json:"data"`
	BorderColor      string    `json:"borderColor"`
	BackgroundColor  string    `json:"backgroundColor"`
	Fill             bool      `json:"fill"`
	PointRadius      int       `json:"pointRadius"`
	PointHoverRadius int       `json:"pointHoverRadius"`
	PointHitRadius   int       `json:"pointHitRadius"`
}

// Options mirrors the subset of chart options the renderer sets.
type Options struct {
	Responsive          bool    `json:"responsive"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Scales              Scales  `json:"scales"`
	Plugins             Plugins `json:"plugins"`
}

// Scales holds both axes.
type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Axis is a titled axis with optional tick formatting.
type Axis struct {
	Title AxisTitle `json:"title"`
	Ticks *Ticks    `json:"ticks,omitempty"`
}

// AxisTitle is the axis caption.
type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

// Ticks selects the tick label format.
type Ticks struct {
	Format string `json:"format"`
}

// Plugins holds tooltip and legend settings.
type Plugins struct {
	Tooltip Tooltip `json:"tooltip"`
	Legend  Legend  `json:"legend"`
}

// Tooltip selects how tooltip values and titles are produced.
type Tooltip struct {
	ValueFormat string `json:"valueFormat"`
	TitleMode   string `json:"titleMode"`
}

// Legend controls legend visibility and placement.
type Legend struct {
	Display  bool   `json:"display"`
	Position string `json:"position,omitempty"`
}

// Series colors.
const (
	ColorPrincipal     = "blue"
	ColorContributions = "green"
	ColorTakeHome      = "orange"

	fillPrincipal     = "rgba(0, 0, 255, 0.1)"
	fillContributions = "rgba(0, 128, 0, 0.1)"
	fillTakeHome      = "rgba(255, 165, 0, 0.1)"
)

// Dataset labels that are not taken from the response.
const (
	LabelContributions = "Total Contributions"
	LabelTakeHome      = "Monthly Withdrawals + Pensions"
	labelPrincipal     = "Principal"
)

func lineDataset(label string, data []float64, border, fill string) Dataset {
	return Dataset{
		Label:            label,
		Data:             data,
		BorderColor:      border,
		BackgroundColor:  fill,
		PointRadius:      1,
		PointHoverRadius: 6,
		PointHitRadius:   10,
	}
}

func baseOptions(p *projection.Projection) Options {
	return Options{
		Responsive:          true,
		MaintainAspectRatio: false,
		Scales: Scales{
			X: Axis{Title: AxisTitle{Display: true, Text: p.XLabel}},
			Y: Axis{
				Title: AxisTitle{Display: true, Text: p.YLabel},
				Ticks: &Ticks{Format: FormatCurrencyTicks},
			},
		},
	}
}

// PrincipalChart plots principal and cumulative contributions against the
// month labels. Tooltip titles show the age reached at each point.
func PrincipalChart(p *projection.Projection, startAge float64) Config {
	points := p.Points(startAge)
	labels := make([]string, len(points))
	ages := make([]float64, len(points))
	for i, pt := range points {
		labels[i] = pt.Label
		ages[i] = pt.Age
	}

	title := p.Title
	if title == "" {
		title = labelPrincipal
	}

	opts := baseOptions(p)
	opts.Plugins = Plugins{
		Tooltip: Tooltip{ValueFormat: FormatCurrency2dp, TitleMode: TitleAge},
		Legend:  Legend{Display: false},
	}

	return Config{
		Type: "line",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				lineDataset(title, p.Principal, ColorPrincipal, fillPrincipal),
				lineDataset(LabelContributions, p.Contributions, ColorContributions, fillContributions),
			},
			Ages: ages,
		},
		Options: opts,
	}
}

// TakeHomeChart plots the monthly take-home series of a dual projection.
func TakeHomeChart(p *projection.Projection) Config {
	opts := baseOptions(p)
	opts.Plugins = Plugins{
		Tooltip: Tooltip{ValueFormat: FormatCurrency2dp, TitleMode: TitleLabel},
		Legend:  Legend{Display: true, Position: "top"},
	}

	return Config{
		Type: "line",
		Data: Data{
			Labels: p.Labels(),
			Datasets: []Dataset{
				lineDataset(LabelTakeHome, p.TakeHome, ColorTakeHome, fillTakeHome),
			},
		},
		Options: opts,
	}
}

// FormatTick renders a y-axis tick value.
func (c Config) FormatTick(v float64) string {
	if c.Options.Scales.Y.Ticks != nil && c.Options.Scales.Y.Ticks.Format == FormatCurrencyTicks {
		return FormatCurrency(v)
	}
	return humanizeValue(v)
}

// TooltipTitle returns the tooltip heading for the point at idx.
func (c Config) TooltipTitle(idx int) string {
	if idx < 0 || idx >= len(c.Data.Labels) {
		return ""
	}
	if c.Options.Plugins.Tooltip.TitleMode == TitleAge && idx < len(c.Data.Ages) {
		return AgeTitle(c.Data.Ages[idx])
	}
	return c.Data.Labels[idx]
}

// TooltipLabel returns "{dataset}: {value}" for one point of one series.
func (c Config) TooltipLabel(dataset, idx int) string {
	if dataset < 0 || dataset >= len(c.Data.Datasets) {
		return ""
	}
	ds := c.Data.Datasets[dataset]
	label := ds.Label
	if label != "" {
		label += ": "
	}
	if idx < 0 || idx >= len(ds.Data) {
		return label
	}
	v := ds.Data[idx]
	if c.Options.Plugins.Tooltip.ValueFormat == FormatCurrency2dp {
		return label + FormatCurrencyFixed(v)
	}
	return label + humanizeValue(v)
}

// JSON returns the indented Chart.js configuration.
func (c Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Extent returns the minimum and maximum across all series.
// ok is false when the chart has no data.
func (c Config) Extent() (lo, hi float64, ok bool) {
	for _, ds := range c.Data.Datasets {
		for _, v := range ds.Data {
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	return lo, hi, ok
}
