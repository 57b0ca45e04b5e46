// Package template recognizes known receipt layouts and bank statement
// dialects from recognized text.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/spice-extract/internal/common"
)

// Kind distinguishes receipt layouts from statement dialects.
type Kind string

const (
	// KindReceipt is a store chain's receipt layout.
	KindReceipt Kind = "receipt"
	// KindStatement is a bank's statement dialect.
	KindStatement Kind = "statement"
)

// Template is a known source layout with OCR-tolerant recognition patterns.
type Template struct {
	Name        string
	Kind        Kind
	patterns    []*regexp.Regexp
	Specificity int
}

// New compiles a template. Patterns are case-insensitive unless they carry flags.
func New(name string, kind Kind, specificity int, patterns []string) (Template, error) {
	if strings.TrimSpace(name) == "" {
		return Template{}, fmt.Errorf("%w: template without name", common.ErrInvalidConfig)
	}
	if len(patterns) == 0 {
		return Template{}, fmt.Errorf("%w: template %q has no patterns", common.ErrInvalidConfig, name)
	}
	compiled, err := common.CompilePatterns(patterns)
	if err != nil {
		return Template{}, fmt.Errorf("template %q: %w", name, err)
	}
	return Template{Name: name, Kind: kind, Specificity: specificity, patterns: compiled}, nil
}

// Matches reports whether any recognition pattern occurs in text.
func (t Template) Matches(text string) bool {
	return common.MatchAny(t.patterns, text)
}

// MatchCount returns how many distinct patterns occur in text.
func (t Template) MatchCount(text string) int {
	n := 0
	for _, re := range t.patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// Set is an immutable list of templates ordered by specificity, most specific first.
type Set struct {
	templates []Template
}

// NewSet orders templates by descending specificity, then by name.
func NewSet(templates ...Template) *Set {
	sorted := make([]Template, len(templates))
	copy(sorted, templates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Specificity != sorted[j].Specificity {
			return sorted[i].Specificity > sorted[j].Specificity
		}
		return sorted[i].Name < sorted[j].Name
	})
	return &Set{templates: sorted}
}

// Templates returns the templates in evaluation order.
func (s *Set) Templates() []Template {
	out := make([]Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// Lookup finds a template by case-insensitive name.
func (s *Set) Lookup(name string) (Template, bool) {
	for _, t := range s.templates {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, true
		}
	}
	return Template{}, false
}

// Detect returns the most specific template that matches text.
func (s *Set) Detect(text string) (Template, bool) {
	for _, t := range s.templates {
		if t.Matches(text) {
			return t, true
		}
	}
	return Template{}, false
}

// Len returns the number of templates.
func (s *Set) Len() int {
	return len(s.templates)
}
