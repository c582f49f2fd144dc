package api

import (
	"context"

	"github.com/rs/zerolog"
)

// StyleExistenceChecker answers whether a style is registered. An empty
// workspace means the global styles collection.
type StyleExistenceChecker interface {
	Exists(ctx context.Context, workspace, name string) (bool, error)
}

// HTTPVerbExecutor issues authenticated requests against absolute URLs.
// Post, Put and Get return the response body; a missing response is an error.
type HTTPVerbExecutor interface {
	Get(ctx context.Context, url string) (string, error)
	Post(ctx context.Context, url, body, contentType string) (string, error)
	Put(ctx context.Context, url, body, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Backend bundles both capabilities; the base REST client satisfies it.
type Backend interface {
	StyleExistenceChecker
	HTTPVerbExecutor
}

// Endpoint fixes where and how requests are addressed.
type Endpoint struct {
	BaseURL string

	// LegacyWorkspacePath reproduces the historical URL layout in which the
	// workspace segment is filled with the style name and the existence
	// check ignores the workspace. The segment is still percent-encoded.
	LegacyWorkspacePath bool

	Log zerolog.Logger
}
