package statement

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// OFXAdapter reads OFX and QFX downloads. OFX carries explicit signs, so it
// needs no dialects.
type OFXAdapter struct {
	logger *slog.Logger
}

// NewOFXAdapter creates the OFX adapter.
func NewOFXAdapter(logger *slog.Logger) *OFXAdapter {
	return &OFXAdapter{logger: common.LoggerOrDefault(logger)}
}

// Format implements Adapter.
func (a *OFXAdapter) Format() Format { return FormatOFX }

// Dialect implements Adapter.
func (a *OFXAdapter) Dialect() Dialect { return DialectGeneric }

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n\ufeff")

	// SEVERITY must be INFO, WARN, or ERROR
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Parse implements Adapter.
func (a *OFXAdapter) Parse(ctx context.Context, doc model.SourceDocument) ([]model.StatementRow, error) {
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(doc.Bytes()))))
	if err != nil {
		return nil, fmt.Errorf("%w: ofx: %v", common.ErrUnreadableInput, err)
	}

	var rows []model.StatementRow
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			rows = append(rows, a.convert(stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			rows = append(rows, a.convert(stmt.BankTranList.Transactions)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.logger.Debug("Parsed OFX file",
		"rows", len(rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)
	return rows, nil
}

func (a *OFXAdapter) convert(txs []ofxgo.Transaction) []model.StatementRow {
	rows := make([]model.StatementRow, 0, len(txs))
	for _, tx := range txs {
		amt, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
		if err != nil || amt.IsZero() {
			a.logger.Debug("Skipping OFX transaction", "fitid", tx.FiTID, "amount", tx.TrnAmt.FloatString(2))
			continue
		}
		name := merchantName(tx)
		if name == "" {
			continue
		}
		rows = append(rows, model.NewStatementRow(tx.DtPosted.Time, name, amt, false))
	}
	return rows
}

var ofxPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// merchantName prefers PAYEE, then NAME, then MEMO when NAME says nothing.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || genericDescriptions[strings.ToUpper(name)]) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range ofxPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Drop a leading "MM/DD " posting date
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}
