package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether money left or entered the account.
type Direction string

const (
	// DirectionExpense is money spent.
	DirectionExpense Direction = "expense"
	// DirectionIncome is money received.
	DirectionIncome Direction = "income"
)

// CategoryType returns the category type that matches the direction.
func (d Direction) CategoryType() CategoryType {
	if d == DirectionIncome {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// SourceKind records where an extracted record came from.
type SourceKind string

const (
	// SourceManual marks records entered by hand.
	SourceManual SourceKind = "manual"
	// SourceReceipt marks records read from a receipt.
	SourceReceipt SourceKind = "receipt"
	// SourceStatement marks records read from a bank statement.
	SourceStatement SourceKind = "statement"
)

// ExtractedRecord is one categorized line item or statement row.
type ExtractedRecord struct {
	Date       time.Time       `json:"date,omitzero"`
	Amount     decimal.Decimal `json:"amount"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	SourceKind SourceKind      `json:"source_kind"`
	Direction  Direction       `json:"direction"`
	Layer      string          `json:"layer,omitempty"`
	Confidence float64         `json:"confidence"`
	Quantity   int             `json:"quantity"`
}

// Valid reports whether the record is fit for output.
func (r ExtractedRecord) Valid() bool {
	if !r.Amount.IsPositive() {
		return false
	}
	if strings.TrimSpace(r.Name) == "" {
		return false
	}
	if r.Quantity < 1 {
		return false
	}
	return r.Confidence >= 0 && r.Confidence <= 1
}

// GenerateHash creates a stable key for duplicate detection of statement rows.
func (r ExtractedRecord) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s",
		r.Date.Format("2006-01-02"),
		r.Amount.StringFixed(2),
		strings.ToLower(strings.Join(strings.Fields(r.Name), " ")),
		r.Direction)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
