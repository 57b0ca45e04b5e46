package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is a single bank statement transaction as read by a format adapter.
// Amount is always non-negative; Direction carries the sign.
type StatementRow struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Direction   Direction
}

// NewStatementRow normalizes a signed amount. Negative amounts and rows
// explicitly marked as debits become expenses, everything else income.
func NewStatementRow(date time.Time, description string, amount decimal.Decimal, debit bool) StatementRow {
	dir := DirectionIncome
	if amount.IsNegative() || debit {
		dir = DirectionExpense
	}
	return StatementRow{
		Date:        date,
		Description: description,
		Amount:      amount.Abs(),
		Direction:   dir,
	}
}
