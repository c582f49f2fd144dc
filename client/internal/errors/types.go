// Package errors classifies failures reported while talking to the GeoServer
// REST API so callers can tell transient faults from rejected requests.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory says whether repeating the same request could succeed.
type ErrorCategory int

const (
	// Recoverable failures may succeed later: 5xx, 408, 429, network faults.
	Recoverable ErrorCategory = iota

	// Irrecoverable failures will not change on repeat: 400, 401, 403, 404...
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

// ClassifiedError describes a failed REST call.
type ClassifiedError struct {
	Category   ErrorCategory
	Method     string
	URL        string
	StatusCode int    // 0 for network-level failures
	Body       string // response body, if any
	Underlying error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s %s: HTTP %d: %v", e.Category, e.Method, e.URL, e.StatusCode, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s %s: %v", e.Category, e.Method, e.URL, e.Underlying)
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *ClassifiedError) Unwrap() error {
	return e.Underlying
}

// IsIrrecoverable reports whether err carries an Irrecoverable classification.
func IsIrrecoverable(err error) bool {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.Category == Irrecoverable
	}
	return false
}

// StatusCode extracts the HTTP status from err, or 0 when there is none.
func StatusCode(err error) int {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce.StatusCode
	}
	return 0
}
