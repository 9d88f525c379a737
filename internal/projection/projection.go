// Package projection decodes and validates the time series returned by the
// /plot endpoint.
package projection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validation messages shown to the user verbatim.
const (
	MsgMalformed    = "Invalid data format received from server: missing or malformed arrays."
	MsgNoData       = "No data points generated. Please check input values."
	MsgInconsistent = "Data arrays have inconsistent lengths."
)

// Variant selects how many charts a projection is rendered into.
type Variant int

const (
	// Single renders principal and contributions into one chart.
	Single Variant = iota
	// Dual adds a second chart for take-home income.
	Dual
)

func (v Variant) String() string {
	if v == Dual {
		return "dual"
	}
	return "single"
}

// ParseVariant accepts "single" or "dual" (case-insensitive).
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "one", "1":
		return Single, nil
	case "dual", "two", "2":
		return Dual, nil
	}
	return Single, fmt.Errorf("unknown chart variant %q (want single or dual)", s)
}

// ValidationError reports a response that cannot be rendered.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Response is the raw /plot payload. Array fields stay as raw JSON so
// absent, null and non-array values can be told apart.
type Response struct {
	Months        json.RawMessage `json:"months"`
	Years         json.RawMessage `json:"years"`
	Principal     json.RawMessage `json:"principal"`
	Contributions json.RawMessage `json:"contributions"`
	TakeHome      json.RawMessage `json:"takeHome"`
	Title         string          `json:"title"`
	XLabel        string          `json:"xLabel"`
	YLabel        string          `json:"yLabel"`
}

// Decode parses a /plot body. Valid JSON that is not an object decodes to an
// empty Response so validation reports the missing arrays.
func Decode(body []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if json.Valid(body) {
			return &Response{}, nil
		}
		return nil, err
	}

	resp := &Response{
		Months:        fields["months"],
		Years:         fields["years"],
		Principal:     fields["principal"],
		Contributions: fields["contributions"],
		TakeHome:      fields["takeHome"],
	}
	// Display metadata is optional; a non-string value is treated as absent.
	_ = json.Unmarshal(fields["title"], &resp.Title)
	_ = json.Unmarshal(fields["xLabel"], &resp.XLabel)
	_ = json.Unmarshal(fields["yLabel"], &resp.YLabel)
	return resp, nil
}

// Projection is a validated response ready for charting.
type Projection struct {
	Months        []float64
	Years         []float64
	Principal     []float64
	Contributions []float64
	TakeHome      []float64 // nil unless validated for the dual variant
	Title         string
	XLabel        string
	YLabel        string
}

// Validate checks resp for the given variant. Only months, principal and
// contributions are checked for matching lengths; years and takeHome are
// only required to be arrays.
func Validate(resp *Response, variant Variant) (*Projection, error) {
	if resp == nil {
		return nil, &ValidationError{Msg: MsgMalformed}
	}

	required := []json.RawMessage{resp.Months, resp.Years, resp.Principal, resp.Contributions}
	if variant == Dual {
		required = append(required, resp.TakeHome)
	}
	series := make([][]float64, len(required))
	for i, raw := range required {
		s, ok := numberArray(raw)
		if !ok {
			return nil, &ValidationError{Msg: MsgMalformed}
		}
		series[i] = s
	}

	p := &Projection{
		Months:        series[0],
		Years:         series[1],
		Principal:     series[2],
		Contributions: series[3],
		Title:         resp.Title,
		XLabel:        resp.XLabel,
		YLabel:        resp.YLabel,
	}
	if variant == Dual {
		p.TakeHome = series[4]
	}

	if len(p.Months) == 0 || len(p.Principal) == 0 || len(p.Contributions) == 0 {
		return nil, &ValidationError{Msg: MsgNoData}
	}
	if len(p.Months) != len(p.Principal) || len(p.Months) != len(p.Contributions) {
		return nil, &ValidationError{Msg: MsgInconsistent}
	}
	return p, nil
}

// numberArray decodes a JSON array of numbers. null elements decode as 0.
func numberArray(raw json.RawMessage) ([]float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}
	var out []float64
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, false
	}
	if out == nil {
		out = []float64{}
	}
	return out, true
}

// Len returns the number of data points.
func (p *Projection) Len() int {
	return len(p.Months)
}

// Labels formats each month as "Month {n}".
func (p *Projection) Labels() []string {
	labels := make([]string, len(p.Months))
	for i, m := range p.Months {
		labels[i] = MonthLabel(m)
	}
	return labels
}

// MonthLabel formats a month index for the category axis.
func MonthLabel(month float64) string {
	return "Month " + strconv.FormatFloat(month, 'f', -1, 64)
}

// Point is one category-axis entry with its numeric age attached.
type Point struct {
	Label string  `json:"label"`
	Month float64 `json:"month"`
	Age   float64 `json:"age"`
}

// Points pairs every label with the age reached at that month. The age comes
// from years when it covers the index, otherwise from month/12.
func (p *Projection) Points(startAge float64) []Point {
	pts := make([]Point, len(p.Months))
	for i, m := range p.Months {
		elapsed := m / 12
		if i < len(p.Years) && !math.IsNaN(p.Years[i]) {
			elapsed = p.Years[i]
		}
		pts[i] = Point{Label: MonthLabel(m), Month: m, Age: startAge + elapsed}
	}
	return pts
}
