package chart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/fireplot/internal/projection"
)

func scenario(t *testing.T, variant projection.Variant, body string) *projection.Projection {
	t.Helper()
	resp, err := projection.Decode([]byte(body))
	require.NoError(t, err)
	p, err := projection.Validate(resp, variant)
	require.NoError(t, err)
	return p
}

const body = `{"months":[0,1,2],"years":[0,0.08,0.17],"principal":[1000,1010,1020],` +
	`"contributions":[1000,1000,1000],"takeHome":[0,0,2500],"title":"Projection","xLabel":"Months","yLabel":"Value"}`

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{1000, "$1,000"},
		{1234567, "$1,234,567"},
		{1234.5, "$1,234.5"},
		{0.12345, "$0.123"},
		{-2500, "$-2,500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.in), "FormatCurrency(%v)", tt.in)
	}
}

func TestFormatCurrencyFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1010, "$1,010.00"},
		{1234567.891, "$1,234,567.89"},
		{0.005, "$0.01"},
		{-1500.5, "$-1,500.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrencyFixed(tt.in), "FormatCurrencyFixed(%v)", tt.in)
	}
}

func TestAgeTitle(t *testing.T) {
	assert.Equal(t, "Age: 35 years, 0 months", AgeTitle(35))
	assert.Equal(t, "Age: 35 years, 6 months", AgeTitle(35.5))
	assert.Equal(t, "Age: 40 years, 1 months", AgeTitle(40.08))
}

func TestPrincipalChart(t *testing.T) {
	cfg := PrincipalChart(scenario(t, projection.Single, body), 35)

	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, []string{"Month 0", "Month 1", "Month 2"}, cfg.Data.Labels)
	require.Len(t, cfg.Data.Datasets, 2)

	principal := cfg.Data.Datasets[0]
	assert.Equal(t, "Projection", principal.Label)
	assert.Equal(t, []float64{1000, 1010, 1020}, principal.Data)
	assert.Equal(t, ColorPrincipal, principal.BorderColor)

	contrib := cfg.Data.Datasets[1]
	assert.Equal(t, LabelContributions, contrib.Label)
	assert.Equal(t, ColorContributions, contrib.BorderColor)
	assert.NotEqual(t, principal.BorderColor, contrib.BorderColor)

	assert.Equal(t, "Months", cfg.Options.Scales.X.Title.Text)
	assert.Equal(t, "Value", cfg.Options.Scales.Y.Title.Text)
	assert.False(t, cfg.Options.Plugins.Legend.Display)

	assert.Equal(t, "$1,000", cfg.FormatTick(1000))
	assert.Equal(t, "Projection: $1,010.00", cfg.TooltipLabel(0, 1))
	assert.Equal(t, "Total Contributions: $1,000.00", cfg.TooltipLabel(1, 2))
	assert.Equal(t, "Age: 35 years, 0 months", cfg.TooltipTitle(0))
	assert.Equal(t, "Age: 35 years, 2 months", cfg.TooltipTitle(2))
}

func TestPrincipalChartDefaultsTitle(t *testing.T) {
	p := scenario(t, projection.Single, `{"months":[0],"years":[0],"principal":[1],"contributions":[1]}`)
	cfg := PrincipalChart(p, 0)
	assert.Equal(t, "Principal", cfg.Data.Datasets[0].Label)
}

func TestTakeHomeChart(t *testing.T) {
	cfg := TakeHomeChart(scenario(t, projection.Dual, body))

	require.Len(t, cfg.Data.Datasets, 1)
	ds := cfg.Data.Datasets[0]
	assert.Equal(t, LabelTakeHome, ds.Label)
	assert.Equal(t, []float64{0, 0, 2500}, ds.Data)
	assert.Equal(t, ColorTakeHome, ds.BorderColor)

	assert.True(t, cfg.Options.Plugins.Legend.Display)
	assert.Equal(t, "top", cfg.Options.Plugins.Legend.Position)
	assert.Equal(t, "Month 2", cfg.TooltipTitle(2))
	assert.Equal(t, "$2,500", cfg.FormatTick(2500))
	assert.Equal(t, "Monthly Withdrawals + Pensions: $2,500.00", cfg.TooltipLabel(0, 2))
}

func TestTooltipOutOfRange(t *testing.T) {
	cfg := TakeHomeChart(scenario(t, projection.Dual, body))
	assert.Equal(t, "", cfg.TooltipTitle(9))
	assert.Equal(t, "", cfg.TooltipLabel(3, 0))
	assert.Equal(t, "Monthly Withdrawals + Pensions: ", cfg.TooltipLabel(0, 9))
}

func TestExtent(t *testing.T) {
	cfg := PrincipalChart(scenario(t, projection.Single, body), 0)
	lo, hi, ok := cfg.Extent()
	require.True(t, ok)
	assert.Equal(t, 1000.0, lo)
	assert.Equal(t, 1020.0, hi)

	_, _, ok = Config{}.Extent()
	assert.False(t, ok)
}

func TestJSONShape(t *testing.T) {
	cfg := PrincipalChart(scenario(t, projection.Single, body), 0)
	raw, err := cfg.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "line", decoded["type"])

	data := decoded["data"].(map[string]any)
	assert.Len(t, data["datasets"], 2)
	assert.Len(t, data["ages"], 3)

	opts := decoded["options"].(map[string]any)
	y := opts["scales"].(map[string]any)["y"].(map[string]any)
	assert.Equal(t, "currency", y["ticks"].(map[string]any)["format"])
}
