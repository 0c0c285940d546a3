// Package errors provides structured error types for the Streamnet application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Configuration and input validation failures
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// Configuration errors (reserved column names, unsupported calc types,
// missing columns, non-numeric values) are fatal and surface immediately;
// the pipeline never skips an offending segment and continues.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidCalcType, "unsupported calc type: %s", kind)
//	if errors.Is(err, errors.ErrCodeInvalidCalcType) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePoolFailure, origErr, "worker %d", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors (fatal at setup, before any traversal work)
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeReservedColumn  Code = "RESERVED_COLUMN"
	ErrCodeMissingColumn   Code = "MISSING_COLUMN"
	ErrCodeInvalidCalcType Code = "INVALID_CALC_TYPE"
	ErrCodeNonNumeric      Code = "NON_NUMERIC_VALUE"
	ErrCodeDuplicateID     Code = "DUPLICATE_ID"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSegmentNotFound Code = "SEGMENT_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Aggregation errors
	ErrCodePoolFailure Code = "POOL_FAILURE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsConfiguration reports whether err is a configuration error: one that
// should have been caught at setup time (reserved names, unsupported calc
// types, missing columns, non-numeric input, duplicate ids).
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeReservedColumn, ErrCodeMissingColumn, ErrCodeInvalidCalcType,
		ErrCodeNonNumeric, ErrCodeDuplicateID, ErrCodeInvalidInput:
		return true
	}
	return false
}
