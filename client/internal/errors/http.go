package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// categorize maps an HTTP status code to a category.
func categorize(statusCode int) ErrorCategory {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		return Recoverable
	}
}

// NewHTTPError builds a classified error for a non-2xx response.
// GeoServer puts the reason in the plain-text body, so it is folded into the
// message when short enough to be useful.
func NewHTTPError(method, url string, statusCode int, body string) *ClassifiedError {
	reason := http.StatusText(statusCode)
	if msg := strings.TrimSpace(body); msg != "" && len(msg) <= 256 {
		reason = msg
	}
	return &ClassifiedError{
		Category:   categorize(statusCode),
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Body:       body,
		Underlying: fmt.Errorf("%s", reason),
	}
}

// NewNetworkError builds a classified error for a request that never produced
// a response. These are always Recoverable.
func NewNetworkError(method, url string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Method:     method,
		URL:        url,
		Underlying: fmt.Errorf("network error: %w", err),
	}
}
