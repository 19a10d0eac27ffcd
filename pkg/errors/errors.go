// Package errors provides structured error types for cardgraph.
//
// Every failure in the graph core is recoverable and carries a
// machine-readable code so the editor UI, the CLI and the HTTP service can
// decide how to surface it without string matching.
//
// # Error Codes
//
//   - NOT_FOUND: a node or connection id does not exist
//   - SELF_LOOP, CYCLE_REJECTED: structural connection errors
//   - INVALID_*: malformed input (documents, expressions, options)
//   - UNKNOWN_*, TYPE_MISMATCH: expression evaluation errors
//   - LAYOUT_FAILED, INTERNAL_ERROR: unexpected internal failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "node %q", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidExpression, jsonErr, "parse condition")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeSelfLoop Code = "SELF_LOOP"
	ErrCodeCycle    Code = "CYCLE_REJECTED"

	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidOption    Code = "INVALID_OPTION"
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"

	// Expression errors
	ErrCodeInvalidExpression Code = "INVALID_EXPRESSION"
	ErrCodeUnknownOperator   Code = "UNKNOWN_OPERATOR"
	ErrCodeTypeMismatch      Code = "TYPE_MISMATCH"

	// Layout errors
	ErrCodeUnknownAlgorithm Code = "UNKNOWN_ALGORITHM"
	ErrCodeLayoutFailed     Code = "LAYOUT_FAILED"

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

// HTTPStatus maps an error code to the status the HTTP service answers with.
// Structural and expression errors are the caller's fault; everything else
// is reported as an internal failure.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeNotFound:
		return 404
	case ErrCodeSelfLoop, ErrCodeCycle:
		return 409
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidOption, ErrCodeInvalidReference,
		ErrCodeInvalidExpression, ErrCodeUnknownOperator, ErrCodeTypeMismatch, ErrCodeUnknownAlgorithm:
		return 400
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
