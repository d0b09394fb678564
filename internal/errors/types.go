// Package errors classifies RemoteAPI failures into the model failure kinds
// and into retry categories for the per-photo executor.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/photostream/photostream/model"
)

// ErrorCategory determines how errors should be handled by retry logic.
type ErrorCategory int

const (
	// Recoverable errors may be retried with exponential backoff.
	// Examples: 500 Internal Server Error, network timeouts, connection failures.
	Recoverable ErrorCategory = iota

	// Irrecoverable errors fail immediately without retry.
	// Examples: 401 Unauthorized, 403 Forbidden, 404 Not Found, 400 Bad Request.
	Irrecoverable
)

// String returns a human-readable representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Recoverable:
		return "Recoverable"
	case Irrecoverable:
		return "Irrecoverable"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// ClassifiedError wraps a RemoteAPI failure with its HTTP status, the server
// supplied message and its retry category.
type ClassifiedError struct {
	Category   ErrorCategory
	StatusCode int    // 0 for transport failures
	Message    string // server "message" field, if any
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	msg := e.Underlying.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] HTTP %d: %s", e.Category, e.StatusCode, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Category, msg)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// Is matches the model failure kind implied by the status code.
func (e *ClassifiedError) Is(target error) bool {
	return target == e.Sentinel()
}

// Sentinel returns the model failure kind for this error.
func (e *ClassifiedError) Sentinel() error {
	switch {
	case e.StatusCode == 0:
		return model.ErrNetwork
	case e.StatusCode == 401 || e.StatusCode == 403:
		return model.ErrUnauthorized
	case e.StatusCode == 404:
		return model.ErrNotFound
	case e.StatusCode == 400 || e.StatusCode == 422:
		return model.ErrValidation
	case e.StatusCode == 408 || e.StatusCode == 429:
		return model.ErrNetwork
	default:
		return model.ErrServer
	}
}

// IsIrrecoverable returns true if the error should not be retried.
func IsIrrecoverable(err error) bool {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified.Category == Irrecoverable
	}
	return false
}

// IsRecoverable returns true only for classified errors marked Recoverable.
// Unclassified errors (local validation, context cancellation) are not retried.
func IsRecoverable(err error) bool {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified.Category == Recoverable
	}
	return false
}
