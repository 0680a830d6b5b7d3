package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeExtractionFailure = "EXTRACTION_FAILURE"
	CodeConfig            = "CONFIG_ERROR"
	CodeDatabase          = "DB_ERROR"
	CodeExport            = "EXPORT_ERROR"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrExtraction   = errors.New("extraction failed")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotFound reports a document that cannot be opened. Fatal for the run.
func NotFound(path string, cause error) error {
	return NewAppError(CodeNotFound, fmt.Sprintf("file not found: %s", path), errors.Join(ErrNotFound, cause))
}

// ExtractionFailure wraps a decoding-layer error. Fatal for the run.
func ExtractionFailure(message string, cause error) error {
	return NewAppError(CodeExtractionFailure, message, errors.Join(ErrExtraction, cause))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsNotFound reports whether err is (or wraps) a NotFound error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsExtractionFailure reports whether err is (or wraps) an ExtractionFailure.
func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrExtraction)
}
