package tui

import (
	"github.com/theirongolddev/fireplot/internal/form"
	"github.com/theirongolddev/fireplot/internal/projection"

	"github.com/charmbracelet/huh"
)

// formValues holds the strings bound to the calculator form fields.
type formValues struct {
	fields  map[string]*string
	variant string
}

func newFormValues(in form.Input, variant projection.Variant) *formValues {
	v := &formValues{
		fields:  make(map[string]*string, len(form.Calculator)),
		variant: variant.String(),
	}
	for _, spec := range form.Calculator {
		val := spec.Default
		if cur, ok := in.Get(spec.Name); ok {
			val = cur
		}
		v.fields[spec.Name] = &val
	}
	return v
}

// apply copies the edited values onto in. Fields outside the calculator set
// are left alone.
func (v *formValues) apply(in form.Input) form.Input {
	out := in.Clone()
	for _, spec := range form.Calculator {
		if p, ok := v.fields[spec.Name]; ok {
			out.Set(spec.Name, *p)
		}
	}
	return out
}

func (v *formValues) parsedVariant() projection.Variant {
	pv, err := projection.ParseVariant(v.variant)
	if err != nil {
		return projection.Single
	}
	return pv
}

// newCalculatorForm builds the huh form for editing the calculator fields.
func newCalculatorForm(vals *formValues) *huh.Form {
	savings := make([]huh.Field, 0, 4)
	ages := make([]huh.Field, 0, 6)
	for _, spec := range form.Calculator {
		field := huh.NewInput().
			Key(spec.Name).
			Title(spec.Label).
			Value(vals.fields[spec.Name]).
			Validate(spec.Check)
		if spec.Integer {
			ages = append(ages, field)
		} else {
			savings = append(savings, field)
		}
	}

	chart := huh.NewSelect[string]().
		Title("Charts").
		Options(
			huh.NewOption("Principal and contributions", projection.Single.String()),
			huh.NewOption("Add monthly take-home", projection.Dual.String()),
		).
		Value(&vals.variant)
	ages = append(ages, chart)

	return huh.NewForm(
		huh.NewGroup(savings...).Title("Savings"),
		huh.NewGroup(ages...).Title("Timeline"),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}
