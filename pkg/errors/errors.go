// Package errors provides structured error types for netdiag.
//
// Every failure of the CSV-to-topology pipeline carries a machine-readable
// code and, where it stems from a specific input row, the row index, the
// canonical field name and the offending cell value. This lets the CLI point
// the user at the exact spreadsheet cell and lets the HTTP API map failures
// to status codes.
//
// # Error Codes
//
//   - INPUT: the input file is missing, unreadable or has no header row
//   - SCHEMA: a row violates the mandatory field pairing rules
//   - INTEGRITY: duplicate names detected while assembling the topology
//   - TOOL_NOT_FOUND: an external diagram tool is not installed
//   - INVALID_FORMAT: an unknown output format, renderer or option
//   - INTERNAL: unexpected failures (encoding, renderer initialization)
//
// # Usage
//
//	err := errors.AtRow(errors.ErrCodeSchema, 4, "role", "Firewall", "unrecognized role")
//	if errors.Is(err, errors.ErrCodeSchema) {
//	    // Bad spreadsheet row
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInput, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeInput     Code = "INPUT"
	ErrCodeSchema    Code = "SCHEMA"
	ErrCodeIntegrity Code = "INTEGRITY"

	ErrCodeToolNotFound  Code = "TOOL_NOT_FOUND"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	ErrCodeInternal Code = "INTERNAL"
)

// Error is a structured error with a code, optional row context and cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Row     int    // 1-based input row index, 0 when not row-specific
	Field   string // Canonical field name, if any
	Value   string // Offending cell value, if any
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.describe()
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Location describes where in the input the error occurred, e.g.
// `row 4, role="Firewall"`. It is empty for errors that are not row-specific.
func (e *Error) Location() string {
	var parts []string
	if e.Row > 0 {
		parts = append(parts, fmt.Sprintf("row %d", e.Row))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("%s=%q", e.Field, e.Value))
	}
	return strings.Join(parts, ", ")
}

func (e *Error) describe() string {
	if loc := e.Location(); loc != "" {
		return loc + ": " + e.Message
	}
	return e.Message
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

// AtRow creates a new Error pinned to an input row, field and cell value.
func AtRow(code Code, row int, field, value, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Row:     row,
		Field:   field,
		Value:   value,
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

// RowOf returns the input row an error points at, or 0.
func RowOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Row
	}
	return 0
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the located message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.describe()
	}
	return err.Error()
}
