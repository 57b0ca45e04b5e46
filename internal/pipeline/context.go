// Package pipeline turns source documents into categorized transaction
// records.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-extract/internal/categorize"
	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/config"
	"github.com/Veraticus/spice-extract/internal/dictionary"
	"github.com/Veraticus/spice-extract/internal/extract"
	"github.com/Veraticus/spice-extract/internal/ocr"
	"github.com/Veraticus/spice-extract/internal/preprocess"
	"github.com/Veraticus/spice-extract/internal/reconcile"
	"github.com/Veraticus/spice-extract/internal/statement"
	"github.com/Veraticus/spice-extract/internal/template"
)

// Deps are the inputs of a Context.
type Deps struct {
	Dictionary *dictionary.Compiled
	// Engine recognizes images. Without one, image documents are not
	// recognized; every other kind still works.
	Engine     ocr.Engine
	Logger     *slog.Logger
	Models     categorize.ModelSet
	Profiles   []ocr.Profile
	Extraction config.ExtractionConfig
	Preprocess preprocess.Options
	OCRWorkers int
}

// Context is the immutable state shared by every Process call: compiled
// dictionaries, detectors, grammars, the categorizer, and its models.
// Retraining builds a new Context instead of changing this one.
type Context struct {
	dict        *dictionary.Compiled
	detector    *template.Detector
	extractor   *extract.Extractor
	receipts    *reconcile.Reconciler
	statements  *reconcile.Reconciler
	categorizer *categorize.Categorizer
	registry    *statement.Registry
	ocr         *ocr.Extractor
	logger      *slog.Logger
	deps        Deps
}

// NewContext validates deps and wires the components.
func NewContext(deps Deps) (*Context, error) {
	if deps.Dictionary == nil {
		return nil, fmt.Errorf("%w: dictionary", common.ErrMissingConfig)
	}
	ex := deps.Extraction
	if !ex.ItemMin.IsPositive() || ex.ItemMax.LessThan(ex.ItemMin) {
		return nil, fmt.Errorf("%w: item bounds [%s, %s]", common.ErrInvalidConfig, ex.ItemMin, ex.ItemMax)
	}
	if !ex.TotalMin.IsPositive() || ex.TotalMax.LessThan(ex.TotalMin) {
		return nil, fmt.Errorf("%w: total bounds [%s, %s]", common.ErrInvalidConfig, ex.TotalMin, ex.TotalMax)
	}
	if ex.MinNameLength < 1 {
		deps.Extraction.MinNameLength = 1
	}
	if deps.Preprocess == (preprocess.Options{}) {
		deps.Preprocess = preprocess.DefaultOptions()
	}
	if len(deps.Profiles) == 0 {
		deps.Profiles = ocr.DefaultProfiles()
	}
	logger := common.LoggerOrDefault(deps.Logger)
	d := deps.Dictionary

	c := &Context{
		dict:     d,
		deps:     deps,
		logger:   logger,
		detector: template.NewDetector(d.Templates, template.DefaultStrategies(), logger),
		extractor: extract.NewExtractor(
			extract.NewGrammar(extract.DefaultRules(), ex.ItemMin, ex.ItemMax),
			extract.NewServiceLines(d.Service),
			d.Entities,
			logger),
		receipts:    reconcile.ForReceipts(d.Totals, reconcile.Bounds{Min: ex.TotalMin, Max: ex.TotalMax}),
		statements:  reconcile.ForStatements(),
		categorizer: categorize.NewDefault(d.Rules, deps.Models, logger),
		registry:    statement.DefaultRegistry(d.Dialects, logger),
	}
	if deps.Engine != nil {
		c.ocr = ocr.NewExtractor(deps.Engine, deps.Profiles, deps.OCRWorkers, logger)
	}
	return c, nil
}

// WithModels returns a copy of c that categorizes with models.
func (c *Context) WithModels(models categorize.ModelSet) *Context {
	next := *c
	next.deps.Models = models
	next.categorizer = categorize.NewDefault(c.dict.Rules, models, c.logger)
	return &next
}

// Dictionary returns the compiled dictionary.
func (c *Context) Dictionary() *dictionary.Compiled { return c.dict }

// Registry returns the statement adapters.
func (c *Context) Registry() *statement.Registry { return c.registry }

// Categorizer returns the categorizer.
func (c *Context) Categorizer() *categorize.Categorizer { return c.categorizer }

// Models returns the classifier models in use.
func (c *Context) Models() categorize.ModelSet { return c.deps.Models }
