// Package rest is the base GeoServer REST client. It owns connection handling
// and basic-auth credentials and exposes the verb-level primitives the style
// operations are built from.
package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dcfaria/GeoServer/client/internal/errors"
	"github.com/dcfaria/GeoServer/client/internal/types"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Observer is notified after every round trip. statusCode is 0 when no
// response was received.
type Observer func(method string, statusCode int, elapsed time.Duration)

// Config configures a Client.
type Config struct {
	Connection types.Connection
	HTTPClient *http.Client // nil selects a client with a 30s timeout
	UserAgent  string
	Logger     zerolog.Logger
	Observer   Observer
}

// Client issues authenticated requests against a single GeoServer.
// It is safe for concurrent use.
type Client struct {
	baseURL  string
	rc       *resty.Client
	log      zerolog.Logger
	observer Observer
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	rc := resty.NewWithClient(hc).
		SetBasicAuth(cfg.Connection.Username, cfg.Connection.Password).
		SetLogger(restyLogger{cfg.Logger}).
		// GeoServer is routinely reached over plain http inside a cluster.
		SetDisableWarn(true)
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.Connection.BaseURL, "/"),
		rc:       rc,
		log:      cfg.Logger,
		observer: cfg.Observer,
	}
}

// BaseURL returns the GeoServer root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Exists reports whether a style is registered. An empty workspace queries
// the global styles. 200 means present, 404 absent; anything else is an error.
func (c *Client) Exists(ctx context.Context, workspace, name string) (bool, error) {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/rest")
	if workspace != "" {
		b.WriteString("/workspaces/")
		b.WriteString(types.EscapeName(workspace))
	}
	b.WriteString("/styles/")
	b.WriteString(types.EscapeName(name))
	b.WriteString(".json")
	url := b.String()

	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, errors.NewHTTPError(http.MethodGet, url, resp.StatusCode(), resp.String())
	}
}

// Get returns the response body of a successful GET.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	return c.send(ctx, http.MethodGet, url, nil)
}

// Post sends body with the given content type and returns the response body.
// A non-2xx status or a transport failure yields an error and no body.
func (c *Client) Post(ctx context.Context, url, body, contentType string) (string, error) {
	return c.send(ctx, http.MethodPost, url, withBody(body, contentType))
}

// Put behaves like Post with the PUT verb.
func (c *Client) Put(ctx context.Context, url, body, contentType string) (string, error) {
	return c.send(ctx, http.MethodPut, url, withBody(body, contentType))
}

// Delete issues a DELETE and succeeds only on a 2xx response.
func (c *Client) Delete(ctx context.Context, url string) error {
	_, err := c.send(ctx, http.MethodDelete, url, nil)
	return err
}

func withBody(body, contentType string) func(*resty.Request) {
	return func(r *resty.Request) {
		r.SetHeader("Content-Type", contentType).SetBody(body)
	}
}

func (c *Client) send(ctx context.Context, method, url string, prepare func(*resty.Request)) (string, error) {
	resp, err := c.do(ctx, method, url, prepare)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", errors.NewHTTPError(method, url, resp.StatusCode(), resp.String())
	}
	return string(resp.Body()), nil
}

func (c *Client) do(ctx context.Context, method, url string, prepare func(*resty.Request)) (*resty.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewNetworkError(method, url, err)
	}
	requestID := uuid.NewString()
	req := c.rc.R().SetContext(ctx).SetHeader(RequestIDHeader, requestID)
	if prepare != nil {
		prepare(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, url)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(method, 0, elapsed)
		c.log.Debug().Err(err).Str("method", method).Str("url", url).Str("request_id", requestID).Dur("elapsed", elapsed).Msg("geoserver request failed")
		return nil, errors.NewNetworkError(method, url, err)
	}
	c.observe(method, resp.StatusCode(), elapsed)
	c.log.Debug().Str("method", method).Str("url", url).Str("request_id", requestID).Int("status_code", resp.StatusCode()).Dur("elapsed", elapsed).Msg("geoserver request")
	return resp, nil
}

func (c *Client) observe(method string, statusCode int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer(method, statusCode, elapsed)
	}
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
