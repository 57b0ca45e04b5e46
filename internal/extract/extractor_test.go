package extract

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

func testService(t *testing.T) *ServiceLines {
	t.Helper()
	res, err := common.CompilePatterns([]string{`\bcard\b`, `\bvisa\b`, `\btotal\b`, `итог`, `кассир`, `ндс`})
	require.NoError(t, err)
	return NewServiceLines(res)
}

func testEntities() map[string][]Entity {
	return map[string][]Entity{
		"pyaterochka": {
			{Name: "Молоко", Category: "Dairy", Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)молоко`)}},
			{Name: "Хлеб", Category: "Bakery", Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)хлеб|батон`)}},
			{Name: "Сыр", Category: "Dairy", Patterns: []*regexp.Regexp{regexp.MustCompile(`(?i)сыр(?:$|[^\p{L}])`)}},
		},
	}
}

func namesAndAmounts(records []model.ExtractedRecord) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		out[r.Name] = r.Amount.StringFixed(2)
	}
	return out
}

func TestReceiptGenericScenario(t *testing.T) {
	ex := NewExtractor(testGrammar(), testService(t), testEntities(), nil)
	text := "SHOP\nPRODUCT A 10.00 -A\nPRODUCT B 5.00 x 2 = 10.00 -A\nTOTAL 20.00\nCARD PAYMENT VISA ****1234"

	records := ex.Receipt(text, "")
	require.Len(t, records, 2)
	assert.Equal(t, "PRODUCT A", records[0].Name)
	assert.Equal(t, "10.00", records[0].Amount.StringFixed(2))
	assert.Equal(t, "PRODUCT B", records[1].Name)
	assert.Equal(t, 2, records[1].Quantity)
	for _, r := range records {
		assert.Equal(t, model.SourceReceipt, r.SourceKind)
		assert.Equal(t, model.DirectionExpense, r.Direction)
		assert.Empty(t, r.Category)
	}
}

func TestReceiptServiceLineExcluded(t *testing.T) {
	ex := NewExtractor(testGrammar(), testService(t), nil, nil)
	records := ex.Receipt("TOTAL 45.20 -A\nCARD PAYMENT VISA ****1234 45.20", "")
	assert.Empty(t, records)
}

func TestReceiptKnownEntities(t *testing.T) {
	ex := NewExtractor(testGrammar(), testService(t), testEntities(), nil)
	text := "ПЯТЕРОЧКА\n" +
		"МОЛОКО ПРОСТОКВАШИНО 2.5% 89.90\n" +
		"БАТОН НАРЕЗНОЙ\n" +
		"45.00\n" +
		"ШОКОЛАД АЛЕНКА 79.99\n" +
		"ИТОГ 214.89"

	records := ex.Receipt(text, "pyaterochka")
	require.Len(t, records, 3)

	assert.Equal(t, "Молоко", records[0].Name)
	assert.Equal(t, "Dairy", records[0].Category)
	assert.Equal(t, 1.0, records[0].Confidence)
	assert.Equal(t, LayerDictionary, records[0].Layer)

	assert.Equal(t, "Хлеб", records[1].Name)
	assert.Equal(t, "45.00", records[1].Amount.StringFixed(2), "price taken from the next line")

	assert.Equal(t, "ШОКОЛАД АЛЕНКА", records[2].Name)
	assert.Empty(t, records[2].Layer)
}

func TestReceiptNeighbourWithNameIsNotStolen(t *testing.T) {
	ex := NewExtractor(testGrammar(), testService(t), testEntities(), nil)
	text := "СЫР РОССИЙСКИЙ\nКОЛБАСА 350.00"

	got := namesAndAmounts(ex.Receipt(text, "pyaterochka"))
	assert.Equal(t, map[string]string{"КОЛБАСА": "350.00"}, got)
}

func TestReceiptUnrecognizedSkipsDictionary(t *testing.T) {
	ex := NewExtractor(testGrammar(), testService(t), testEntities(), nil)
	records := ex.Receipt("МОЛОКО 89.90", "")
	require.Len(t, records, 1)
	assert.Equal(t, "МОЛОКО", records[0].Name)
	assert.Empty(t, records[0].Category)
}

func TestCleanName(t *testing.T) {
	g := testGrammar()
	tests := []struct {
		line string
		want string
	}{
		{"1. Молоко 3.2% 89.90", "Молоко 3.2%"},
		{"4607001234567 Сметана 20% 99.00", "Сметана 20%"},
		{"Йогурт скидка -10% 45.00", "Йогурт"},
		{"Вода 2 шт 60.00", "Вода"},
		{"*** 12.00", ""},
		{"12345 99.00", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			p, ok := g.Price(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, CleanName(tt.line, p))
		})
	}
}

func TestDateFromText(t *testing.T) {
	got, ok := DateFromText("КАССОВЫЙ ЧЕК\n01.06.2025 14:30\nИТОГ 10.00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = DateFromText("ИТОГ 10.00")
	assert.False(t, ok)
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines("A\n\n  B  \n")
	require.Len(t, lines, 2)
	assert.Equal(t, model.RawLine{Index: 2, Text: "B"}, lines[1])
}
