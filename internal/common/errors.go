// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Pipeline boundary errors.
	ErrNotRecognized      = errors.New("document not recognized")
	ErrUnreadableInput    = errors.New("unreadable input")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrNoTextCandidates   = errors.New("no text candidates")
	ErrNothingExtractable = errors.New("nothing extractable")

	// Classifier errors.
	ErrModelUnavailable         = errors.New("classifier model unavailable")
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// Storage errors.
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorCode classifies extraction failures for diagnostics.
type ErrorCode string

// Extraction error codes.
const (
	CodeDecode     ErrorCode = "DECODE"
	CodeOCR        ErrorCode = "OCR"
	CodeDetect     ErrorCode = "DETECT"
	CodeExtract    ErrorCode = "EXTRACT"
	CodeAdapter    ErrorCode = "ADAPTER"
	CodeClassifier ErrorCode = "CLASSIFIER"
)

// ExtractionError carries a code alongside the failing stage's cause.
type ExtractionError struct {
	Cause   error
	Code    ErrorCode
	Message string
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates a coded extraction error.
func NewExtractionError(code ErrorCode, message string, cause error) error {
	return &ExtractionError{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the extraction code carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return "", false
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
