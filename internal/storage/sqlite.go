package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/spice-extract/internal/categorize"
	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const dateLayout = "2006-01-02"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStorage persists document results and their records.
type SQLiteStorage struct {
	db     *sql.DB
	logger *slog.Logger
	dbPath string
}

var _ categorize.ExampleSource = (*SQLiteStorage)(nil)

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string, logger *slog.Logger) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath, logger: logger}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// SaveDocumentResult writes a result and its records. Saving the same
// document again replaces the earlier copy.
func (s *SQLiteStorage) SaveDocumentResult(ctx context.Context, result *model.DocumentResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE document_id = ?`, result.ID.String()); err != nil {
		return fmt.Errorf("failed to clear previous records: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents
			(id, source_name, source_kind, template, recognized, transaction_date, total_amount, total_strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID.String(),
		result.SourceName,
		string(result.SourceKind),
		result.Template,
		result.Recognized,
		nullDate(result.TransactionDate),
		result.TotalAmount.StringFixed(2),
		result.TotalStrategy,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
			(document_id, position, name, amount, quantity, category, confidence, source_kind, direction, date, layer, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range result.Records {
		_, err := stmt.ExecContext(ctx,
			result.ID.String(),
			i,
			rec.Name,
			rec.Amount.StringFixed(2),
			rec.Quantity,
			rec.Category,
			rec.Confidence,
			string(rec.SourceKind),
			string(rec.Direction),
			nullDate(rec.Date),
			rec.Layer,
			rec.GenerateHash(),
		)
		if err != nil {
			return fmt.Errorf("failed to save record %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}

	s.logger.Debug("Saved document result",
		"id", result.ID,
		"source", result.SourceName,
		"records", len(result.Records))
	return nil
}

// GetDocument loads a saved result with its records.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id uuid.UUID) (*model.DocumentResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		result     model.DocumentResult
		kind       string
		date       sql.NullString
		total      string
		recognized bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT source_name, source_kind, template, recognized, transaction_date, total_amount, total_strategy
		FROM documents WHERE id = ?`, id.String()).
		Scan(&result.SourceName, &kind, &result.Template, &recognized, &date, &total, &result.TotalStrategy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	result.ID = id
	result.SourceKind = model.SourceKind(kind)
	result.Recognized = recognized
	if result.TransactionDate, err = parseNullDate(date); err != nil {
		return nil, err
	}
	if result.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("failed to parse total %q: %w", total, err)
	}

	records, err := s.GetRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Records = records
	return &result, nil
}

// GetRecords returns a document's records in extraction order.
func (s *SQLiteStorage) GetRecords(ctx context.Context, documentID uuid.UUID) ([]model.ExtractedRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, amount, quantity, category, confidence, source_kind, direction, date, layer
		FROM records WHERE document_id = ? ORDER BY position`, documentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ExtractedRecord
	for rows.Next() {
		var (
			rec       model.ExtractedRecord
			amount    string
			kind      string
			direction string
			date      sql.NullString
		)
		if err := rows.Scan(&rec.Name, &amount, &rec.Quantity, &rec.Category, &rec.Confidence,
			&kind, &direction, &date, &rec.Layer); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if rec.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
		}
		if rec.Date, err = parseNullDate(date); err != nil {
			return nil, err
		}
		rec.SourceKind = model.SourceKind(kind)
		rec.Direction = model.Direction(direction)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}

// HasStatementRow reports whether a statement row with the same hash was
// already saved under a different document.
func (s *SQLiteStorage) HasStatementRow(ctx context.Context, rec model.ExtractedRecord, exclude uuid.UUID) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM records
		WHERE hash = ? AND source_kind = ? AND document_id != ?`,
		rec.GenerateHash(), string(model.SourceStatement), exclude.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check statement row: %w", err)
	}
	return count > 0, nil
}

// LabeledExamples returns record names with a real category for the given
// type. Fallback categorizations carry no signal and are left out.
func (s *SQLiteStorage) LabeledExamples(ctx context.Context, typ model.CategoryType) ([]categorize.Example, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	direction := model.DirectionExpense
	if typ == model.CategoryTypeIncome {
		direction = model.DirectionIncome
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, category FROM records
		WHERE direction = ? AND category != '' AND category != ?
		ORDER BY document_id, position`,
		string(direction), model.OtherCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to query labeled records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var examples []categorize.Example
	for rows.Next() {
		var ex categorize.Example
		if err := rows.Scan(&ex.Text, &ex.Category); err != nil {
			return nil, fmt.Errorf("failed to scan labeled record: %w", err)
		}
		if strings.TrimSpace(ex.Text) == "" {
			continue
		}
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labeled records: %w", err)
	}

	s.logger.Debug("Loaded labeled examples", "type", typ, "count", len(examples))
	return examples, nil
}

func nullDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func parseNullDate(s sql.NullString) (time.Time, error) {
	if !s.Valid || s.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s.String, err)
	}
	return t, nil
}
