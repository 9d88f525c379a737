// Package form holds the calculator form: an ordered set of named fields that
// is read fresh on every submit and serialized into the /plot query string.
package form

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is a single named form value.
type Field struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Input is the set of calculator fields in form order.
type Input struct {
	fields []Field
}

// New returns an Input holding the given fields in order.
func New(fields ...Field) Input {
	in := Input{}
	for _, f := range fields {
		in.Set(f.Name, f.Value)
	}
	return in
}

// FromValues builds an Input from url.Values, sorted by field name.
// Only the first value of each key is kept.
func FromValues(v url.Values) Input {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	in := Input{}
	for _, k := range keys {
		in.Set(k, v.Get(k))
	}
	return in
}

// Set replaces the value of an existing field or appends a new one.
func (in *Input) Set(name, value string) {
	for i := range in.fields {
		if in.fields[i].Name == name {
			in.fields[i].Value = value
			return
		}
	}
	in.fields = append(in.fields, Field{Name: name, Value: value})
}

// Get returns the value of a field and whether it exists.
func (in Input) Get(name string) (string, bool) {
	for _, f := range in.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the fields in form order.
func (in Input) Fields() []Field {
	out := make([]Field, len(in.fields))
	copy(out, in.fields)
	return out
}

// Len returns the number of fields.
func (in Input) Len() int {
	return len(in.fields)
}

// Clone returns an independent copy.
func (in Input) Clone() Input {
	return Input{fields: in.Fields()}
}

// Merge returns a copy of in with every field of other applied on top.
func (in Input) Merge(other Input) Input {
	out := in.Clone()
	for _, f := range other.fields {
		out.Set(f.Name, f.Value)
	}
	return out
}

// Encode serializes every field into a URL query string in form order.
// Names and values are passed through verbatim apart from query escaping.
func (in Input) Encode() string {
	var b strings.Builder
	for i, f := range in.fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.Name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// ParseAssignment parses a "name=value" pair as given on the command line.
func ParseAssignment(s string) (Field, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Field{}, fmt.Errorf("invalid field assignment %q (want name=value)", s)
	}
	return Field{Name: name, Value: value}, nil
}

// LoadYAML reads a preset file. The document is either a mapping of field
// names to values (applied in document order) or a list of {name, value}
// entries.
func LoadYAML(path string) (Input, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-supplied on purpose
	if err != nil {
		return Input{}, fmt.Errorf("reading preset: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes preset data. See LoadYAML.
func ParseYAML(data []byte) (Input, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Input{}, fmt.Errorf("parsing preset: %w", err)
	}
	if len(doc.Content) == 0 {
		return Input{}, nil
	}

	root := doc.Content[0]
	in := Input{}
	switch root.Kind {
	case yaml.MappingNode:
		// Walk the node pairs directly; decoding into a map would lose order.
		for i := 0; i+1 < len(root.Content); i += 2 {
			var name, value string
			if err := root.Content[i].Decode(&name); err != nil {
				return Input{}, fmt.Errorf("parsing preset key: %w", err)
			}
			if err := root.Content[i+1].Decode(&value); err != nil {
				return Input{}, fmt.Errorf("parsing preset value for %s: %w", name, err)
			}
			in.Set(name, value)
		}
	case yaml.SequenceNode:
		var fields []Field
		if err := root.Decode(&fields); err != nil {
			return Input{}, fmt.Errorf("parsing preset list: %w", err)
		}
		for _, f := range fields {
			if f.Name == "" {
				return Input{}, fmt.Errorf("parsing preset list: entry without name")
			}
			in.Set(f.Name, f.Value)
		}
	default:
		return Input{}, fmt.Errorf("parsing preset: expected a mapping or a list")
	}
	return in, nil
}
