package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeFetch          ErrorType = "FETCH"
	ErrTypeExtraction     ErrorType = "EXTRACTION"
	ErrTypeMalformedField ErrorType = "MALFORMED_FIELD"
	ErrTypeOutOfRange     ErrorType = "OUT_OF_RANGE"
	ErrTypeEmptyResult    ErrorType = "EMPTY_RESULT"
	ErrTypeExport         ErrorType = "EXPORT"
	ErrTypeConfig         ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err (or anything it wraps) is an AppError of the
// given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewFetchError creates a network/HTTP-level error. Retryable by the
// caller, never retried internally.
func NewFetchError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFetch, message, cause)
}

// NewExtractionError creates a page-structure error: the document was
// fetched but the expected table or controls were not found.
func NewExtractionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExtraction, message, cause)
}

// NewMalformedFieldError creates a per-row field parsing error.
func NewMalformedFieldError(field, value string) *AppError {
	return NewAppError(ErrTypeMalformedField, fmt.Sprintf("field %q has unparseable value %q", field, value), nil).
		WithContext("field", field).
		WithContext("value", value)
}

// NewMissingFieldError creates a per-row error for an absent required field.
func NewMissingFieldError(field string) *AppError {
	return NewAppError(ErrTypeMalformedField, fmt.Sprintf("required field %q is missing", field), nil).
		WithContext("field", field)
}

// NewOutOfRangeError creates an error for a parsed value outside its
// allowed domain.
func NewOutOfRangeError(field string, value interface{}) *AppError {
	return NewAppError(ErrTypeOutOfRange, fmt.Sprintf("field %q value %v is out of range", field, value), nil).
		WithContext("field", field).
		WithContext("value", value)
}

// NewEmptyResultError creates an error for a scrape that yielded no
// usable rows.
func NewEmptyResultError(symbol string) *AppError {
	return NewAppError(ErrTypeEmptyResult, fmt.Sprintf("no usable rows for symbol %s", symbol), nil).
		WithContext("symbol", symbol)
}

// NewExportError creates a file export error
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
