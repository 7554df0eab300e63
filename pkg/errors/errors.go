// Package errors provides structured error types for fusiongraph.
//
// Every failure that leaves a library package carries a machine-readable
// [Code] and a human-readable message, so the CLI can print a single line
// while tests and callers can branch on the code:
//
//	_, err := client.ModelHierarchy(ctx, key, opts)
//	if errors.Is(err, errors.ErrCodeHubNotFound) {
//	    // the hub name did not resolve
//	}
//
// # Error Codes
//
// Codes follow a coarse naming convention:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: lookup failures, one code per lookup level
//   - NETWORK_ERROR, UNAUTHORIZED, GRAPHQL_ERROR, MALFORMED_RESPONSE: remote failures
//   - CYCLE_DETECTED, UNRESOLVED_NODE: hierarchy assembly failures
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Lookup errors, one per level of the hub/project/component key
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeHubNotFound       Code = "HUB_NOT_FOUND"
	ErrCodeProjectNotFound   Code = "PROJECT_NOT_FOUND"
	ErrCodeComponentNotFound Code = "COMPONENT_NOT_FOUND"

	// Remote errors
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeTimeout           Code = "TIMEOUT"
	ErrCodeRateLimited       Code = "RATE_LIMITED"
	ErrCodeGraphQL           Code = "GRAPHQL_ERROR"
	ErrCodeMalformedResponse Code = "MALFORMED_RESPONSE"
	ErrCodeProcessingFailed  Code = "PROCESSING_FAILED"

	// Authentication errors
	ErrCodeUnauthorized       Code = "UNAUTHORIZED"
	ErrCodeMissingCredentials Code = "MISSING_CREDENTIALS"

	// Hierarchy assembly errors
	ErrCodeCycle          Code = "CYCLE_DETECTED"
	ErrCodeUnresolvedNode Code = "UNRESOLVED_NODE"

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
// Only the outermost *Error in the chain is consulted, so a wrapping error
// with a more specific code shadows the codes of its causes.
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
