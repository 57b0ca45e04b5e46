package statement

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/Veraticus/spice-extract/internal/money"
)

// PDFText extracts the text layer of a PDF, one line per text row.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		// The PDF reader panics on some malformed files.
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf: %v", common.ErrUnreadableInput, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", common.ErrUnreadableInput, err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			parts := make([]string, 0, len(row.Content))
			for _, w := range row.Content {
				parts = append(parts, w.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	return b.String(), nil
}

// PDFAdapter reads statement rows from PDF text with the dialect's line
// pattern. Layouts vary between statement periods, so results are
// best-effort.
type PDFAdapter struct {
	logger  *slog.Logger
	profile Profile
}

// NewPDFAdapter creates a PDF adapter for a dialect.
func NewPDFAdapter(p Profile, logger *slog.Logger) *PDFAdapter {
	return &PDFAdapter{profile: p, logger: common.LoggerOrDefault(logger)}
}

// Format implements Adapter.
func (a *PDFAdapter) Format() Format { return FormatPDF }

// Dialect implements Adapter.
func (a *PDFAdapter) Dialect() Dialect { return a.profile.Dialect }

// Parse implements Adapter.
func (a *PDFAdapter) Parse(ctx context.Context, doc model.SourceDocument) ([]model.StatementRow, error) {
	text, err := PDFText(doc.Bytes())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.ParseText(text), nil
}

// ParseText reads rows from already extracted statement text.
func (a *PDFAdapter) ParseText(text string) []model.StatementRow {
	var rows []model.StatementRow
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		m := a.profile.Line.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		date, ok := common.ParseDate(m[1])
		if !ok {
			a.logger.Debug("Skipping statement line with bad date", "line", line)
			continue
		}
		raw := strings.TrimSpace(m[3])
		amt, err := money.Parse(raw)
		if err != nil || amt.IsZero() {
			a.logger.Debug("Skipping statement line with bad amount", "line", line)
			continue
		}
		desc := strings.Join(strings.Fields(m[2]), " ")
		debit := a.profile.UnsignedIsDebit && !strings.HasPrefix(raw, "+")
		rows = append(rows, model.NewStatementRow(date, desc, amt, debit))
	}
	return rows
}
