package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Spec describes one calculator field as presented to the user.
type Spec struct {
	Name    string
	Label   string
	Default string
	Integer bool
}

// Calculator lists the fields read by the /plot endpoint, in form order.
var Calculator = []Spec{
	{Name: "initialCapital", Label: "Initial capital ($)", Default: "100000"},
	{Name: "monthlyContribution", Label: "Monthly contribution ($)", Default: "1500"},
	{Name: "annualGrowthRate", Label: "Annual growth rate (%)", Default: "7"},
	{Name: "contributionYears", Label: "Contribution years", Default: "20", Integer: true},
	{Name: "currentAge", Label: "Current age", Default: "35", Integer: true},
	{Name: "drawDownAge", Label: "Draw-down age", Default: "55", Integer: true},
	{Name: "monthlyDrawAmount", Label: "Monthly draw amount ($)", Default: "4000"},
	{Name: "expectedDeathAge", Label: "Expected age at death", Default: "95", Integer: true},
	{Name: "monthlyPension", Label: "Monthly pension ($)", Default: "1800"},
	{Name: "expectedPensionAge", Label: "Pension start age", Default: "67", Integer: true},
}

// AgeField names the field holding the user's current age.
const AgeField = "currentAge"

// Defaults returns the calculator form filled with default values.
func Defaults() Input {
	in := Input{}
	for _, s := range Calculator {
		in.Set(s.Name, s.Default)
	}
	return in
}

// SpecFor returns the calculator spec of a field.
func SpecFor(name string) (Spec, bool) {
	for _, s := range Calculator {
		if s.Name == name {
			return s, true
		}
	}
	return Spec{}, false
}

// Check reports whether v is an acceptable value for the field. Empty values
// are allowed; the server decides what they mean.
func (s Spec) Check(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	if s.Integer {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("%s must be a whole number", s.Label)
		}
		return nil
	}
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		return fmt.Errorf("%s must be a number", s.Label)
	}
	return nil
}
