package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleResult(t *testing.T) *model.DocumentResult {
	return testutil.NewResult(t, "receipt.jpg").
		Record(model.ExtractedRecord{Name: "Молоко", Amount: decimal.RequireFromString("89.99"), Quantity: 1, Category: "Dairy", Confidence: 1, Direction: model.DirectionExpense}).
		Record(model.ExtractedRecord{Name: "Непонятное", Amount: decimal.RequireFromString("45"), Quantity: 2, Category: model.OtherCategory, Direction: model.DirectionExpense}).
		Total("134.99").
		Build()
}

func TestRenderResult(t *testing.T) {
	out := RenderResult(sampleResult(t))

	for _, want := range []string{"receipt.jpg", "pyaterochka", "2025-06-01", "134.99", "labeled", "Молоко", "89.99", "Dairy", "100%", "45.00", "Other"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "(generic)")
}

func TestRenderResultVariants(t *testing.T) {
	tests := []struct {
		mutate  func(*model.DocumentResult)
		name    string
		want    []string
		notWant []string
	}{
		{
			name:   "generic template",
			mutate: func(r *model.DocumentResult) { r.Recognized = false; r.Template = "generic" },
			want:   []string{"(generic)"},
		},
		{
			name:   "no records",
			mutate: func(r *model.DocumentResult) { r.Records = nil },
			want:   []string{"No line items found"},
		},
		{
			name:    "no date",
			mutate:  func(r *model.DocumentResult) { r.TransactionDate = time.Time{} },
			notWant: []string{"Date:"},
		},
		{
			name: "income statement row",
			mutate: func(r *model.DocumentResult) {
				r.SourceKind = model.SourceStatement
				r.Records = []model.ExtractedRecord{{Name: "Зарплата", Amount: decimal.NewFromInt(1000), Quantity: 1, Category: "Salary", Direction: model.DirectionIncome}}
			},
			want: []string{BankIcon, "+1000.00", "Salary"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleResult(t)
			tt.mutate(r)
			out := RenderResult(r)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}

	assert.Empty(t, RenderResult(nil))
}

func TestRenderPrediction(t *testing.T) {
	out := RenderPrediction("uber", model.ExtractedRecord{Category: "Transport", Confidence: 0.7, Layer: "keyword"})
	assert.Contains(t, out, "uber")
	assert.Contains(t, out, "Transport")
	assert.Contains(t, out, "70%, keyword")

	out = RenderPrediction("???", model.ExtractedRecord{Category: model.OtherCategory})
	assert.Contains(t, out, "none")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Молоко", truncate("Молоко", 10))
	assert.Equal(t, "Мол…", truncate("Молоко", 4))
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer

	single := NewProgress(&buf, 1, "Extracting")
	assert.False(t, single.Enabled())
	single.Step()
	single.Finish()
	assert.Empty(t, buf.String())

	batch := NewProgress(&buf, 3, "Extracting")
	assert.True(t, batch.Enabled())
	batch.Step()
	batch.Finish()
	assert.Contains(t, buf.String(), "Extracting")
}

func TestRenderList(t *testing.T) {
	out := RenderList("Receipts", []string{"pyaterochka", "magnit"})
	assert.Contains(t, out, "Receipts")
	assert.Contains(t, out, "• pyaterochka")
	assert.Contains(t, out, "• magnit")
}
