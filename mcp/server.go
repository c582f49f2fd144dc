// Package mcp serves the GeoServer style tools over the Model Context Protocol.
package mcp

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dcfaria/GeoServer/client"
	"github.com/dcfaria/GeoServer/internal/config"
	"github.com/dcfaria/GeoServer/internal/logger"
	"github.com/dcfaria/GeoServer/mcp/internal/handlers"
)

const (
	ServerName    = "gsstyle-mcp"
	ServerVersion = "0.1.0"
)

func newLogger(w io.Writer, level string) zerolog.Logger {
	return logger.New(w, ServerName, logger.ParseLevel(level)).With().Caller().Logger()
}

type toolRegisterer interface {
	RegisterTools(s *server.MCPServer) error
}

// NewServer builds the MCP server with every style tool registered.
func NewServer(c *client.Client) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
	)
	for _, h := range []toolRegisterer{handlers.NewStyleHandler(c)} {
		if err := h.RegisterTools(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewHTTPHandler wraps s in the streamable HTTP transport mounted at /mcp.
func NewHTTPHandler(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithHeartbeatInterval(30*time.Second),
	)
}

// RunMCPServer loads the configuration from the environment and serves until
// stdin closes (stdio) or a termination signal arrives (HTTP).
func RunMCPServer() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	// stdout belongs to the stdio transport; log to stderr.
	l := newLogger(os.Stderr, cfg.LogLevel)
	log.Logger = l
	cfg.Log(l)

	styleClient, err := cfg.NewClient(l)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Failed to create client")
		return err
	}
	defer func() { _ = styleClient.Close() }()

	s, err := NewServer(styleClient)
	if err != nil {
		return err
	}

	if shouldUseStdio(cfg.MCPTransport) {
		log.Info().Msg("Starting GeoServer style MCP server (stdio transport)")
		return server.ServeStdio(s)
	}
	return serveHTTP(cfg, s)
}

func serveHTTP(cfg *config.Config, s *server.MCPServer) error {
	log.Info().Str("addr", cfg.MCPAddr).Msg("Starting GeoServer style MCP server (Streamable HTTP)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	streamSrv := NewHTTPHandler(s)
	srv := &http.Server{
		Addr:              cfg.MCPAddr,
		Handler:           streamSrv,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0, // SSE streams stay open
		IdleTimeout:       120 * time.Second,
	}

	shutdownComplete := make(chan struct{})
	go func() {
		defer close(shutdownComplete)

		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}
		if err := streamSrv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error during MCP server shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	<-shutdownComplete
	log.Info().Msg("MCP server shutdown complete")
	return nil
}

// shouldUseStdio picks the transport: explicit settings win, otherwise stdio
// is used when stdin is not a terminal (launched by another process).
func shouldUseStdio(transport string) bool {
	switch transport {
	case "stdio":
		return true
	case "http":
		return false
	}
	if fileInfo, err := os.Stdin.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) == 0
	}
	return false
}
