// Package config loads GeoServer connection settings for the gsstyle tools.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/dcfaria/GeoServer/client"
)

// Prefix is prepended to every environment variable name.
const Prefix = "GEOSERVER"

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the connection settings shared by the CLI and the MCP server.
// Variables are read with the GEOSERVER_ prefix, e.g. GEOSERVER_URL,
// GEOSERVER_LEGACY_WORKSPACE_PATH. Field names are split on case instead of
// carrying envconfig tags, which would also match unprefixed names like USER.
type Config struct {
	URL      string `default:"http://localhost:8080/geoserver"`
	User     string `default:"admin"`
	Password string `default:"geoserver"`

	Timeout             time.Duration `split_words:"true" default:"30s"`
	LegacyWorkspacePath bool          `split_words:"true" default:"false"`
	Debug               bool          `default:"false"`

	Environment Environment `default:"development"`
	LogLevel    string      `split_words:"true" default:"info"`

	// MCP server
	MCPAddr         string        `envconfig:"MCP_ADDR" default:":11546"`
	MCPTransport    string        `envconfig:"MCP_TRANSPORT" default:"auto"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// ResolveDefaults normalises and validates the loaded values.
func (c *Config) ResolveDefaults() error {
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("unsupported GEOSERVER_URL: %q", c.URL)
	}
	if c.User == "" {
		return fmt.Errorf("GEOSERVER_USER cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("GEOSERVER_TIMEOUT must be > 0, got %s", c.Timeout)
	}

	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported GEOSERVER_ENVIRONMENT: %s", c.Environment)
	}

	c.MCPTransport = strings.ToLower(c.MCPTransport)
	switch c.MCPTransport {
	case "auto", "stdio", "http":
	default:
		return fmt.Errorf("unsupported GEOSERVER_MCP_TRANSPORT: %s", c.MCPTransport)
	}
	return nil
}

// New creates a new Config by parsing environment variables.
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses environment variables without validating the result. Callers
// that layer overrides on top (CLI flags) call ResolveDefaults afterwards.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// NewForTesting returns a config pointing at url with default credentials.
func NewForTesting(url string) *Config {
	return &Config{
		URL:             url,
		User:            "admin",
		Password:        "geoserver",
		Timeout:         5 * time.Second,
		Environment:     EnvTesting,
		LogLevel:        "debug",
		MCPAddr:         ":0",
		MCPTransport:    "stdio",
		ShutdownTimeout: time.Second,
	}
}

// Log writes a one-line summary of the configuration. The password is never
// logged.
func (c *Config) Log(l zerolog.Logger) {
	l.Info().
		Str("url", c.URL).
		Str("user", c.User).
		Bool("password_present", c.Password != "").
		Dur("timeout", c.Timeout).
		Bool("legacy_workspace_path", c.LegacyWorkspacePath).
		Str("environment", string(c.Environment)).
		Msg("Configuration loaded")
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions(l zerolog.Logger) []client.Option {
	opts := []client.Option{
		client.WithHTTPTimeout(c.Timeout),
		client.WithLogger(l),
		client.WithUserAgent("gsstyle"),
	}
	if c.LegacyWorkspacePath {
		opts = append(opts, client.WithLegacyWorkspacePath())
	}
	// Request dumps include style bodies; keep them out of production logs.
	// Always explicit so the client's own GEOSERVER_DEBUG/DEBUG lookup never
	// overrides this decision.
	opts = append(opts, client.WithDebugLogging(c.Debug && !c.IsProduction()))
	return opts
}

// NewClient builds a style client from the configuration.
func (c *Config) NewClient(l zerolog.Logger) (*client.Client, error) {
	return client.New(c.URL, c.User, c.Password, c.ClientOptions(l)...)
}
