package categorize

import (
	"strings"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// KeywordConfidence is reported for keyword rule matches.
const KeywordConfidence = 0.7

// DictionaryLayer passes through a category carried from the known-entity pass.
type DictionaryLayer struct{}

// Name implements Layer.
func (DictionaryLayer) Name() string { return LayerDictionary }

// Categorize implements Layer.
func (DictionaryLayer) Categorize(in Input) (Result, bool) {
	if in.Carried == "" {
		return Result{}, false
	}
	return Result{Category: in.Carried, Confidence: 1.0}, true
}

// KeywordLayer applies ordered category rules; the first rule with a
// keyword contained in the folded text wins.
type KeywordLayer struct {
	rules []model.CategoryRule
}

// NewKeywordLayer folds rule keywords once so matching is a substring test.
func NewKeywordLayer(rules []model.CategoryRule) KeywordLayer {
	folded := make([]model.CategoryRule, 0, len(rules))
	for _, r := range rules {
		fr := model.CategoryRule{Name: r.Name, Type: r.Type}
		for _, p := range r.Patterns {
			if p = common.FoldName(p); p != "" {
				fr.Patterns = append(fr.Patterns, p)
			}
		}
		folded = append(folded, fr)
	}
	return KeywordLayer{rules: folded}
}

// Name implements Layer.
func (KeywordLayer) Name() string { return LayerKeyword }

// Categorize implements Layer.
func (k KeywordLayer) Categorize(in Input) (Result, bool) {
	text := common.FoldName(in.Text)
	for _, r := range k.rules {
		if !r.AppliesTo(in.Direction) {
			continue
		}
		for _, kw := range r.Patterns {
			if strings.Contains(text, kw) {
				return Result{Category: r.Name, Confidence: KeywordConfidence}, true
			}
		}
	}
	return Result{}, false
}

// ClassifierLayer asks the trained model for the record's direction.
type ClassifierLayer struct {
	Models ModelSet
}

// Name implements Layer.
func (ClassifierLayer) Name() string { return LayerClassifier }

// Categorize implements Layer.
func (c ClassifierLayer) Categorize(in Input) (Result, bool) {
	m := c.Models.For(in.Direction)
	if m == nil {
		return Result{}, false
	}
	p, ok := m.Predict(in.Text)
	if !ok {
		return Result{}, false
	}
	return Result{Category: p.Category, Confidence: p.Confidence, Distribution: p.Distribution}, true
}
