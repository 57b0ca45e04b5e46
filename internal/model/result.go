package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// documentNamespace seeds deterministic result identifiers.
var documentNamespace = uuid.MustParse("6b0f7c9e-3f64-4a55-9a2e-5d1c8f0b7e21")

// DocumentID derives a stable identifier from document content.
func DocumentID(data []byte) uuid.UUID {
	return uuid.NewSHA1(documentNamespace, data)
}

// DocumentResult is the output of one successful pipeline run.
type DocumentResult struct {
	TransactionDate time.Time         `json:"transaction_date,omitzero"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	SourceName      string            `json:"source_name"`
	Template        string            `json:"template"`
	TotalStrategy   string            `json:"total_strategy"`
	DiagnosticText  string            `json:"diagnostic_text,omitempty"`
	Records         []ExtractedRecord `json:"records"`
	ID              uuid.UUID         `json:"id"`
	SourceKind      SourceKind        `json:"source_kind"`
	Recognized      bool              `json:"recognized"`
}

// Usable reports whether the result carries anything worth persisting.
// A zero total means nothing was found, not a zero-amount purchase.
func (r *DocumentResult) Usable() bool {
	return r != nil && (len(r.Records) > 0 || r.TotalAmount.IsPositive())
}
