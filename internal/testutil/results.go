package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-extract/internal/model"
)

// ResultBuilder assembles DocumentResult fixtures. The total is the sum of
// the added records unless set explicitly.
//
//	result := testutil.NewResult(t, "june.csv").
//		Statement("csv/tinkoff").
//		Expense("Перекресток", "512.40", "Groceries").
//		Build()
type ResultBuilder struct {
	t      *testing.T
	total  *decimal.Decimal
	result model.DocumentResult
}

// NewResult starts a recognized receipt result named name.
func NewResult(t *testing.T, name string) *ResultBuilder {
	t.Helper()
	return &ResultBuilder{
		t: t,
		result: model.DocumentResult{
			ID:              model.DocumentID([]byte(name)),
			SourceName:      name,
			SourceKind:      model.SourceReceipt,
			Template:        "pyaterochka",
			Recognized:      true,
			TransactionDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			TotalStrategy:   "labeled",
		},
	}
}

// Statement marks the result as a bank statement read by the given adapter.
func (b *ResultBuilder) Statement(template string) *ResultBuilder {
	b.result.SourceKind = model.SourceStatement
	b.result.Template = template
	b.result.TotalStrategy = "items-sum"
	return b
}

// Generic marks the result as read without a known template.
func (b *ResultBuilder) Generic() *ResultBuilder {
	b.result.Template = "generic"
	b.result.Recognized = false
	return b
}

// On sets the transaction date; records added afterwards carry it too.
func (b *ResultBuilder) On(date time.Time) *ResultBuilder {
	b.result.TransactionDate = date
	return b
}

// Total overrides the computed total.
func (b *ResultBuilder) Total(amount string) *ResultBuilder {
	d := b.amount(amount)
	b.total = &d
	return b
}

// Expense adds an expense record.
func (b *ResultBuilder) Expense(name, amount, category string) *ResultBuilder {
	return b.add(name, amount, category, model.DirectionExpense)
}

// Income adds an income record.
func (b *ResultBuilder) Income(name, amount, category string) *ResultBuilder {
	return b.add(name, amount, category, model.DirectionIncome)
}

// Record adds a fully specified record as is.
func (b *ResultBuilder) Record(rec model.ExtractedRecord) *ResultBuilder {
	b.result.Records = append(b.result.Records, rec)
	return b
}

func (b *ResultBuilder) add(name, amount, category string, dir model.Direction) *ResultBuilder {
	kind := model.SourceReceipt
	if b.result.SourceKind == model.SourceStatement {
		kind = model.SourceStatement
	}
	return b.Record(model.ExtractedRecord{
		Name:       name,
		Amount:     b.amount(amount),
		Quantity:   1,
		Category:   category,
		Confidence: 0.7,
		SourceKind: kind,
		Direction:  dir,
		Date:       b.result.TransactionDate,
		Layer:      "keyword",
	})
}

func (b *ResultBuilder) amount(s string) decimal.Decimal {
	b.t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		b.t.Fatalf("bad fixture amount %q: %v", s, err)
	}
	return d
}

// Build returns the assembled result.
func (b *ResultBuilder) Build() *model.DocumentResult {
	out := b.result
	out.Records = append([]model.ExtractedRecord(nil), b.result.Records...)
	if b.total != nil {
		out.TotalAmount = *b.total
	} else {
		total := decimal.Zero
		for _, r := range out.Records {
			total = total.Add(r.Amount.Mul(decimal.NewFromInt(int64(r.Quantity))))
		}
		out.TotalAmount = total
	}
	return &out
}
