// Package errors provides structured error types for imagehub.
//
// Every failure that crosses a stage boundary of a run carries a [Code]. The
// code tells the pipeline and the CLI how to react:
//
//   - FETCH_FAILED, STORE_FAILED: the run aborts
//   - HARVEST_FAILED: the record is dropped, the run continues
//   - DIMENSIONS_FAILED: the record keeps zero dimensions, the run continues
//   - INVALID_*: configuration or input is rejected before any network call
//
// Usage:
//
//	err := errors.Wrap(errors.ErrCodeHarvestFailed, cause, "harvest %s", dataID)
//	if errors.Is(err, errors.ErrCodeHarvestFailed) {
//	    // drop the record
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidURL      Code = "INVALID_URL"
	ErrCodeInvalidLanguage Code = "INVALID_LANGUAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Run stage errors
	ErrCodeFetchFailed      Code = "FETCH_FAILED"
	ErrCodeResourceFailed   Code = "RESOURCE_FAILED"
	ErrCodeHarvestFailed    Code = "HARVEST_FAILED"
	ErrCodeDimensionsFailed Code = "DIMENSIONS_FAILED"
	ErrCodeStoreFailed      Code = "STORE_FAILED"

	// Upstream errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeProtocol Code = "PROTOCOL_ERROR"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Fatal reports whether err must abort a run.
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeResourceFailed, ErrCodeHarvestFailed, ErrCodeDimensionsFailed:
		return false
	}
	return err != nil
}

// UserMessage returns the message without the code prefix for *Error values
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
