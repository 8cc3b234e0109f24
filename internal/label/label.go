// Package label renders suggestion rows into display text using text/template
// with the sprig function set.
package label

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultTemplate formats "house street, locality, postal code". The locality
// comes from cityname and falls back to name.
const DefaultTemplate = `{{ .num }} {{ .street }}, {{ .cityname | default .name }}, {{ .zipcode }}`

// noValue is what text/template prints for a missing map key.
const noValue = "<no value>"

// Formatter renders rows with a parsed template.
type Formatter struct {
	text string
	tmpl *template.Template
}

// New parses a label template.
func New(text string) (*Formatter, error) {
	if strings.TrimSpace(text) == "" {
		text = DefaultTemplate
	}
	tmpl, err := template.New("label").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid label template: %w", err)
	}
	return &Formatter{text: text, tmpl: tmpl}, nil
}

// Default returns a formatter using DefaultTemplate.
func Default() *Formatter {
	f, err := New(DefaultTemplate)
	if err != nil {
		panic(err)
	}
	return f
}

// Template returns the template source.
func (f *Formatter) Template() string {
	return f.text
}

// Label renders a row. Missing fields render as empty text; a template execution
// error falls back to the street field alone.
func (f *Formatter) Label(row map[string]any) string {
	var b strings.Builder
	if err := f.tmpl.Execute(&b, row); err != nil {
		return street(row)
	}
	out := strings.ReplaceAll(b.String(), noValue, "")
	return strings.TrimSpace(out)
}

func street(row map[string]any) string {
	if v, ok := row["street"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}
