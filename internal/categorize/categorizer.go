// Package categorize assigns categories to extracted records through an
// ordered chain of layers: dictionary, keyword rules, trained classifier.
package categorize

import (
	"log/slog"
	"math"
	"strings"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// Layer names reported on records.
const (
	LayerDictionary = "dictionary"
	LayerKeyword    = "keyword"
	LayerClassifier = "classifier"
	LayerFallback   = "fallback"
)

// Input is what a layer sees for one record.
type Input struct {
	Text      string
	Direction model.Direction
	// Carried is a category already assigned by the known-entity dictionary.
	Carried string
}

// Result is a layer's verdict.
type Result struct {
	Distribution map[string]float64
	Category     string
	Layer        string
	Confidence   float64
}

// Layer is one step of the categorization chain.
type Layer interface {
	Name() string
	Categorize(in Input) (Result, bool)
}

// Categorizer runs layers in order; the first applicable layer wins.
type Categorizer struct {
	logger *slog.Logger
	layers []Layer
}

// New creates a categorizer from an ordered layer list.
func New(logger *slog.Logger, layers ...Layer) *Categorizer {
	return &Categorizer{layers: layers, logger: common.LoggerOrDefault(logger)}
}

// NewDefault builds the standard chain.
func NewDefault(rules []model.CategoryRule, models ModelSet, logger *slog.Logger) *Categorizer {
	return New(logger, DictionaryLayer{}, NewKeywordLayer(rules), ClassifierLayer{Models: models})
}

func fallback() Result {
	return Result{Category: model.OtherCategory, Confidence: 0, Layer: LayerFallback}
}

// Categorize never fails: blank text, inapplicable layers, and internal
// errors all degrade to Other with zero confidence.
func (c *Categorizer) Categorize(in Input) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Categorizer layer panicked", "panic", r, "text", in.Text)
			res = fallback()
		}
	}()

	if strings.TrimSpace(in.Text) == "" {
		return fallback()
	}

	for _, l := range c.layers {
		r, ok := l.Categorize(in)
		if !ok || r.Category == "" {
			continue
		}
		r.Layer = l.Name()
		r.Confidence = clamp(r.Confidence)
		return r
	}
	return fallback()
}

// Apply categorizes records in place and returns them.
func (c *Categorizer) Apply(records []model.ExtractedRecord) []model.ExtractedRecord {
	for i := range records {
		carried := ""
		if records[i].Layer == LayerDictionary {
			carried = records[i].Category
		}
		res := c.Categorize(Input{Text: records[i].Name, Direction: records[i].Direction, Carried: carried})
		records[i].Category = res.Category
		records[i].Confidence = res.Confidence
		records[i].Layer = res.Layer
	}
	return records
}

func clamp(f float64) float64 {
	switch {
	case f < 0 || math.IsNaN(f):
		return 0
	case f > 1:
		return 1
	}
	return f
}
