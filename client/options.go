package client

// Functional options for New.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
//
// Options only record settings; New applies them once every option has run,
// so their order does not matter.
type Option func(*Client) error

// WithHTTPTimeout sets the underlying http.Client Timeout.
//
// Prefer per-request context deadlines where possible; this timeout bounds
// the whole exchange including connection setup and reading the response.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.timeout = d
		return nil
	}
}

// WithHTTPClient replaces the http.Client used for all requests. The client
// is copied; timeout and debug settings never modify hc itself.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.http = hc
		return nil
	}
}

// WithDebugLogging logs every request and response at debug level when
// enabled is true. Bodies are included; the Authorization header is not.
// An explicit setting overrides GEOSERVER_DEBUG and DEBUG.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		c.debugSet = true
		return nil
	}
}

// WithLogger sets the logger used for debug output. Defaults to the global
// zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithLegacyWorkspacePath addresses workspace styles the way earlier releases
// did: the workspace path segment carries the style name and existence checks
// ignore the workspace. Unlike those releases, the segment is percent-encoded
// like every other name, so names with spaces or reserved characters produce
// different bytes on the wire. Only use it against servers that depend on
// that layout.
func WithLegacyWorkspacePath() Option {
	return func(c *Client) error {
		c.legacy = true
		return nil
	}
}
