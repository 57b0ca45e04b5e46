// Package storage persists pipeline results and serves them back as training data.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-extract/internal/model"
	"github.com/google/uuid"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDocument  = errors.New("invalid document result")
	ErrInvalidRecord    = errors.New("invalid record")
	ErrDocumentNotFound = errors.New("document not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult checks a document result before it is written.
func validateResult(result *model.DocumentResult) error {
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}
	if result.ID == uuid.Nil {
		return fmt.Errorf("%w: missing ID", ErrInvalidDocument)
	}
	if !result.Usable() {
		return fmt.Errorf("%w: no records and no total", ErrInvalidDocument)
	}
	for i, rec := range result.Records {
		if err := validateRecord(rec); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateRecord rejects records that Valid would drop, plus uncategorized ones.
func validateRecord(rec model.ExtractedRecord) error {
	if !rec.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecord, rec.Name)
	}
	if strings.TrimSpace(rec.Category) == "" {
		return fmt.Errorf("%w: missing category for %q", ErrInvalidRecord, rec.Name)
	}
	return nil
}
