// Package dictionary holds the static recognition tables: receipt
// templates, statement dialects, known entities, category keywords, and
// the service and total vocabularies.
package dictionary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/extract"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/template"
)

// TemplateSpec describes a receipt layout or statement dialect.
type TemplateSpec struct {
	Name        string   `yaml:"name"`
	Patterns    []string `yaml:"patterns"`
	Specificity int      `yaml:"specificity"`
}

// EntitySpec is a known product of one template.
type EntitySpec struct {
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

// Dictionary is the uncompiled form, as written in Go or YAML.
type Dictionary struct {
	Entities        map[string][]EntitySpec `yaml:"entities"`
	Templates       []TemplateSpec          `yaml:"templates"`
	Dialects        []TemplateSpec          `yaml:"dialects"`
	Keywords        []model.CategoryRule    `yaml:"keywords"`
	ServiceKeywords []string                `yaml:"service_keywords"`
	TotalKeywords   []string                `yaml:"total_keywords"`
}

// Compiled is a validated dictionary ready for the pipeline. It is never
// mutated after Compile returns.
type Compiled struct {
	Templates *template.Set
	Dialects  *template.Set
	Entities  map[string][]extract.Entity
	Service   []*regexp.Regexp
	Totals    []*regexp.Regexp
	Rules     []model.CategoryRule
}

// Merge overlays o on d. Sections present in o replace d's; entities are
// replaced per template.
func (d Dictionary) Merge(o Dictionary) Dictionary {
	out := d
	if o.Templates != nil {
		out.Templates = o.Templates
	}
	if o.Dialects != nil {
		out.Dialects = o.Dialects
	}
	if o.Keywords != nil {
		out.Keywords = o.Keywords
	}
	if o.ServiceKeywords != nil {
		out.ServiceKeywords = o.ServiceKeywords
	}
	if o.TotalKeywords != nil {
		out.TotalKeywords = o.TotalKeywords
	}
	if o.Entities != nil {
		merged := make(map[string][]EntitySpec, len(d.Entities)+len(o.Entities))
		for k, v := range d.Entities {
			merged[k] = v
		}
		for k, v := range o.Entities {
			merged[k] = v
		}
		out.Entities = merged
	}
	return out
}

// LoadFile reads a YAML override and merges it over the defaults. An empty
// path or a missing file yields the defaults.
func LoadFile(path string) (Dictionary, error) {
	def := Default()
	if path == "" {
		return def, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return Dictionary{}, fmt.Errorf("failed to read dictionary: %w", err)
	}

	var override Dictionary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Dictionary{}, fmt.Errorf("%w: dictionary %s: %v", common.ErrInvalidConfig, path, err)
	}
	return def.Merge(override), nil
}

// Compile validates every table and compiles every pattern.
func (d Dictionary) Compile() (*Compiled, error) {
	receipts, err := compileTemplates(d.Templates, template.KindReceipt)
	if err != nil {
		return nil, err
	}
	dialects, err := compileTemplates(d.Dialects, template.KindStatement)
	if err != nil {
		return nil, err
	}

	entities := make(map[string][]extract.Entity, len(d.Entities))
	for tmpl, specs := range d.Entities {
		if _, ok := receipts.Lookup(tmpl); !ok {
			return nil, fmt.Errorf("%w: entities for unknown template %q", common.ErrInvalidConfig, tmpl)
		}
		for _, s := range specs {
			if strings.TrimSpace(s.Name) == "" || len(s.Patterns) == 0 {
				return nil, fmt.Errorf("%w: incomplete entity in template %q", common.ErrInvalidConfig, tmpl)
			}
			res, err := common.CompilePatterns(s.Patterns)
			if err != nil {
				return nil, fmt.Errorf("entity %q: %w", s.Name, err)
			}
			entities[tmpl] = append(entities[tmpl], extract.Entity{Name: s.Name, Category: s.Category, Patterns: res})
		}
	}

	for _, r := range d.Keywords {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: keyword rule without category", common.ErrInvalidConfig)
		}
		if r.Type != "" {
			if _, ok := model.ParseCategoryType(string(r.Type)); !ok {
				return nil, fmt.Errorf("%w: rule %q has type %q", common.ErrInvalidConfig, r.Name, r.Type)
			}
		}
	}

	service, err := common.CompilePatterns(d.ServiceKeywords)
	if err != nil {
		return nil, fmt.Errorf("service keywords: %w", err)
	}
	totals, err := common.CompilePatterns(d.TotalKeywords)
	if err != nil {
		return nil, fmt.Errorf("total keywords: %w", err)
	}

	rules := make([]model.CategoryRule, len(d.Keywords))
	copy(rules, d.Keywords)

	return &Compiled{
		Templates: receipts,
		Dialects:  dialects,
		Entities:  entities,
		Service:   service,
		Totals:    totals,
		Rules:     rules,
	}, nil
}

func compileTemplates(specs []TemplateSpec, kind template.Kind) (*template.Set, error) {
	seen := make(map[string]bool, len(specs))
	ts := make([]template.Template, 0, len(specs))
	for _, s := range specs {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate %s template %q", common.ErrInvalidConfig, kind, s.Name)
		}
		seen[key] = true
		t, err := template.New(s.Name, kind, s.Specificity, s.Patterns)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return template.NewSet(ts...), nil
}
