package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-extract/internal/model"
)

var testRules = []model.CategoryRule{
	{Name: "Groceries", Type: model.CategoryTypeExpense, Patterns: []string{"молоко", "хлеб", "milk"}},
	{Name: "Transport", Type: model.CategoryTypeExpense, Patterns: []string{"такси", "metro"}},
	{Name: "Salary", Type: model.CategoryTypeIncome, Patterns: []string{"зарплата", "salary"}},
}

type panicLayer struct{}

func (panicLayer) Name() string                     { return "panic" }
func (panicLayer) Categorize(Input) (Result, bool) { panic("boom") }

func TestCategorize(t *testing.T) {
	c := NewDefault(testRules, ModelSet{}, nil)

	tests := []struct {
		name       string
		in         Input
		category   string
		layer      string
		confidence float64
	}{
		{
			name:     "blank text falls back",
			in:       Input{Text: "   "},
			category: model.OtherCategory,
			layer:    LayerFallback,
		},
		{
			name:     "unknown text falls back",
			in:       Input{Text: "zzz qqq", Direction: model.DirectionExpense},
			category: model.OtherCategory,
			layer:    LayerFallback,
		},
		{
			name:       "keyword match is case insensitive",
			in:         Input{Text: "МОЛОКО 3.2% 1л", Direction: model.DirectionExpense},
			category:   "Groceries",
			layer:      LayerKeyword,
			confidence: KeywordConfidence,
		},
		{
			name:       "carried dictionary category wins over keywords",
			in:         Input{Text: "молоко", Direction: model.DirectionExpense, Carried: "Dairy"},
			category:   "Dairy",
			layer:      LayerDictionary,
			confidence: 1,
		},
		{
			name:     "income rule ignored for expense",
			in:       Input{Text: "salary march", Direction: model.DirectionExpense},
			category: model.OtherCategory,
			layer:    LayerFallback,
		},
		{
			name:       "income rule applies to income",
			in:         Input{Text: "Salary March", Direction: model.DirectionIncome},
			category:   "Salary",
			layer:      LayerKeyword,
			confidence: KeywordConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Categorize(tt.in)
			assert.Equal(t, tt.category, res.Category)
			assert.Equal(t, tt.layer, res.Layer)
			assert.InDelta(t, tt.confidence, res.Confidence, 1e-9)
		})
	}
}

func TestCategorizeRecoversFromPanickingLayer(t *testing.T) {
	c := New(nil, panicLayer{}, NewKeywordLayer(testRules))

	res := c.Categorize(Input{Text: "milk"})
	assert.Equal(t, model.OtherCategory, res.Category)
	assert.Equal(t, LayerFallback, res.Layer)
	assert.Zero(t, res.Confidence)
}

func TestApply(t *testing.T) {
	c := NewDefault(testRules, ModelSet{}, nil)
	records := []model.ExtractedRecord{
		{Name: "Молоко Простоквашино", Direction: model.DirectionExpense, Quantity: 1},
		{Name: "Сыр Ламбер", Category: "Cheese", Layer: LayerDictionary, Confidence: 1, Direction: model.DirectionExpense, Quantity: 1},
		{Name: "Пакет", Direction: model.DirectionExpense, Quantity: 1},
	}

	out := c.Apply(records)
	require.Len(t, out, 3)

	assert.Equal(t, "Groceries", out[0].Category)
	assert.Equal(t, LayerKeyword, out[0].Layer)

	assert.Equal(t, "Cheese", out[1].Category)
	assert.Equal(t, LayerDictionary, out[1].Layer)
	assert.InDelta(t, 1.0, out[1].Confidence, 1e-9)

	assert.Equal(t, model.OtherCategory, out[2].Category)
	assert.Zero(t, out[2].Confidence)
}

func TestClassifierLayerUsedAfterKeywords(t *testing.T) {
	m, err := Train(trainingSet())
	require.NoError(t, err)

	c := NewDefault(testRules, ModelSet{Expense: m}, nil)

	res := c.Categorize(Input{Text: "Uber ride", Direction: model.DirectionExpense})
	assert.Equal(t, "Transport", res.Category)
	assert.Equal(t, LayerClassifier, res.Layer)
	assert.Greater(t, res.Confidence, 0.5)
	assert.LessOrEqual(t, res.Confidence, 1.0)

	res = c.Categorize(Input{Text: "Uber ride", Direction: model.DirectionIncome})
	assert.Equal(t, model.OtherCategory, res.Category, "no income model")
}

func TestClamp(t *testing.T) {
	assert.Zero(t, clamp(-0.5))
	assert.InDelta(t, 1.0, clamp(1.5), 1e-9)
	assert.InDelta(t, 0.25, clamp(0.25), 1e-9)
}
