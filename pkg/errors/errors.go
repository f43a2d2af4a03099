// Package errors provides structured error types for flowlayout.
//
// Every failure that reaches a user (CLI output, HTTP response body) carries
// a machine-readable [Code] next to a human-readable message. Library code
// wraps lower-level errors with [Wrap] so the original cause stays reachable
// through errors.Is and errors.As.
//
// # Error Codes
//
// Codes follow a coarse naming convention:
//   - INVALID_*: the input document or request could not be accepted
//   - *_NOT_FOUND: a referenced task, node or history entry does not exist
//   - INTERNAL_*: unexpected failures (storage, encoding)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSchema, "task %d is missing the id field", n)
//	if errors.Is(err, errors.ErrCodeInvalidSchema) {
//	    // show the message next to the editor
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidJSON, jsonErr, "invalid JSON")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidJSON      Code = "INVALID_JSON"
	ErrCodeInvalidYAML      Code = "INVALID_YAML"
	ErrCodeInvalidSchema    Code = "INVALID_SCHEMA"
	ErrCodeInvalidTaskID    Code = "INVALID_TASK_ID"
	ErrCodeDuplicateTaskID  Code = "DUPLICATE_TASK_ID"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidEdge      Code = "INVALID_EDGE"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeTaskNotFound  Code = "TASK_NOT_FOUND"
	ErrCodeEntryNotFound Code = "ENTRY_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeStorage     Code = "STORAGE_ERROR"
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
// For *Error types, returns the message without the code prefix. A wrapped
// cause is appended when it adds detail (for example the JSON syntax error).
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil && (e.Code == ErrCodeInvalidJSON || e.Code == ErrCodeInvalidYAML) {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// IsValidation reports whether err was caused by unacceptable user input
// rather than by a failure inside flowlayout.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidJSON, ErrCodeInvalidYAML, ErrCodeInvalidSchema,
		ErrCodeInvalidTaskID, ErrCodeDuplicateTaskID, ErrCodeInvalidDirection,
		ErrCodeInvalidFormat, ErrCodeInvalidEdge:
		return true
	}
	return false
}

// IsNotFound reports whether err refers to a missing task, entry or file.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeTaskNotFound, ErrCodeEntryNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}
