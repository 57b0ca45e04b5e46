package statement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-extract/internal/common"
	"github.com/Veraticus/spice-extract/internal/model"
)

// TableReader turns file bytes into rows of cells.
type TableReader func(data []byte) ([][]string, error)

// headerSearchRows bounds how far down a sheet the header may sit; bank
// exports often open with account details.
const headerSearchRows = 30

// TableAdapter reads any tabular format with header detection.
type TableAdapter struct {
	read    TableReader
	logger  *slog.Logger
	format  Format
	profile Profile
}

// NewTableAdapter creates an adapter for a tabular format and dialect.
func NewTableAdapter(format Format, p Profile, read TableReader, logger *slog.Logger) *TableAdapter {
	return &TableAdapter{format: format, profile: p, read: read, logger: common.LoggerOrDefault(logger)}
}

// Format implements Adapter.
func (a *TableAdapter) Format() Format { return a.format }

// Dialect implements Adapter.
func (a *TableAdapter) Dialect() Dialect { return a.profile.Dialect }

// Parse implements Adapter.
func (a *TableAdapter) Parse(ctx context.Context, doc model.SourceDocument) ([]model.StatementRow, error) {
	table, err := a.read(doc.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrUnreadableInput, a.format, err)
	}
	return rowsFromTable(ctx, table, a.profile, a.logger)
}

func rowsFromTable(ctx context.Context, table [][]string, p Profile, logger *slog.Logger) ([]model.StatementRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cols, start := Positional(), 0
	for i := 0; i < len(table) && i < headerSearchRows; i++ {
		if c, ok := DetectColumns(table[i], p); ok {
			cols, start = c, i+1
			break
		}
	}
	if start == 0 {
		logger.Debug("No statement header found, using positional columns", "dialect", p.Dialect)
	}

	var rows []model.StatementRow
	skipped := 0
	for i := start; i < len(table); i++ {
		if i%256 == 255 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if blank(table[i]) {
			continue
		}
		row, err := cols.Row(table[i], p)
		if err != nil {
			skipped++
			logger.Debug("Skipping statement row", "row", i+1, "reason", err)
			continue
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		logger.Info("Skipped unreadable statement rows", "dialect", p.Dialect, "skipped", skipped, "parsed", len(rows))
	}
	return rows, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
