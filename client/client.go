package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dcfaria/GeoServer/client/internal/api"
	"github.com/dcfaria/GeoServer/client/internal/rest"
	"github.com/dcfaria/GeoServer/client/internal/types"
)

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

// Client manages CSS styles on one GeoServer through its REST API.
// It holds no mutable state besides the connection pool and is safe for
// concurrent use.
type Client struct {
	conn     types.Connection
	http     *http.Client
	rest     *rest.Client
	endpoint api.Endpoint
	log      zerolog.Logger

	timeout   time.Duration
	debug     bool
	debugSet  bool // WithDebugLogging was given; env no longer decides
	legacy    bool
	userAgent string

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the GeoServer rooted at baseURL
// (e.g. http://localhost:8080/geoserver), authenticating with basic auth.
func New(baseURL, username, password string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid geoserver url %q: %w", baseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid geoserver url %q: expected http(s)://host[/path]", baseURL)
	}
	if username == "" {
		return nil, fmt.Errorf("username cannot be empty")
	}

	c := &Client{
		conn: types.Connection{
			BaseURL:  strings.TrimRight(baseURL, "/"),
			Username: username,
			Password: password,
		},
		http: &http.Client{Timeout: 30 * time.Second},
		log:  log.Logger,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	// Auto-enable debug via env variable unless the caller decided.
	if !c.debugSet && debugLoggingRequested() {
		c.debug = true
	}

	// Work on a copy so an injected client is never modified.
	hc := *c.http
	c.http = &hc
	if c.timeout > 0 {
		c.http.Timeout = c.timeout
	}
	if c.debug {
		c.http.Transport = &debugTransport{base: c.http.Transport, log: c.log}
	}

	c.rest = rest.New(rest.Config{
		Connection: c.conn,
		HTTPClient: c.http,
		UserAgent:  c.userAgent,
		Logger:     c.log,
		Observer:   observeRequest,
	})
	c.endpoint = api.Endpoint{
		BaseURL:             c.conn.BaseURL,
		LegacyWorkspacePath: c.legacy,
		Log:                 c.log,
	}
	return c, nil
}

// BaseURL returns the GeoServer root the client talks to.
func (c *Client) BaseURL() string { return c.conn.BaseURL }

// Close releases idle connections. Safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

// --------------------------------------------------------------------
// Style operations - delegated to internal/api
// --------------------------------------------------------------------

// PublishCSSStyle uploads body as a new CSS style called name. An empty
// workspace publishes a global style.
//
// It fails with ErrValidation for an empty name or body, ErrConflict when the
// style already exists and ErrOperation when GeoServer gives no response.
// The boolean is true when GeoServer answered with an empty body.
func (c *Client) PublishCSSStyle(ctx context.Context, body, name, workspace string) (bool, error) {
	ok, err := api.PublishCSSStyle(ctx, c.rest, c.rest, c.endpoint, types.CSSStyleRequest{Body: body, Name: name, Workspace: workspace})
	recordOperation("publish", ok, err)
	return ok, err
}

// UpdateCSSStyle replaces the CSS of the existing style name.
// Errors and result mirror PublishCSSStyle, with ErrConflict meaning the
// style does not exist.
func (c *Client) UpdateCSSStyle(ctx context.Context, body, name, workspace string) (bool, error) {
	ok, err := api.UpdateCSSStyle(ctx, c.rest, c.rest, c.endpoint, types.CSSStyleRequest{Body: body, Name: name, Workspace: workspace})
	recordOperation("update", ok, err)
	return ok, err
}

// RemoveStyle deletes the style name. recurse clears references from layers;
// purge deletes the style file on the server. A rejected delete, typically
// because a layer still uses the style, is reported as ErrOperation.
func (c *Client) RemoveStyle(ctx context.Context, name, workspace string, recurse, purge bool) (bool, error) {
	ok, err := api.RemoveStyle(ctx, c.rest, c.rest, c.endpoint, types.RemoveStyleRequest{
		Name:      name,
		Workspace: workspace,
		Recurse:   recurse,
		Purge:     purge,
	})
	recordOperation("remove", ok, err)
	return ok, err
}

// StyleExists reports whether a global style called name exists.
func (c *Client) StyleExists(ctx context.Context, name string) (bool, error) {
	return c.StyleExistsInWorkspace(ctx, "", name)
}

// StyleExistsInWorkspace reports whether workspace holds a style called name.
func (c *Client) StyleExistsInWorkspace(ctx context.Context, workspace, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, types.NewStyleError(types.KindValidation, "exists", name, workspace, "style name is empty", nil)
	}
	ok, err := c.rest.Exists(ctx, workspace, name)
	recordOperation("exists", true, err)
	return ok, err
}

// ListStyles returns the styles of workspace, or the global styles when
// workspace is empty.
func (c *Client) ListStyles(ctx context.Context, workspace string) ([]StyleRef, error) {
	refs, err := api.ListStyles(ctx, c.rest, c.endpoint, workspace)
	recordOperation("list", true, err)
	return refs, err
}

// GetCSSStyle returns the CSS source of style name.
func (c *Client) GetCSSStyle(ctx context.Context, name, workspace string) (string, error) {
	body, err := api.GetCSSStyle(ctx, c.rest, c.rest, c.endpoint, name, workspace)
	recordOperation("get", true, err)
	return body, err
}
