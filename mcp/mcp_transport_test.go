package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"net/http/httptest"
	"testing"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcfaria/GeoServer/client"
	"github.com/dcfaria/GeoServer/internal/gstest"
)

var expectedTools = []string{
	"publish_css_style", "update_css_style", "remove_style",
	"style_exists", "list_styles", "get_css_style",
}

func initialize(ctx context.Context, t *testing.T, c *mcpclient.Client) {
	t.Helper()
	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: "2024-11-05",
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo:      mcp.Implementation{Name: "test-client", Version: "1.0.0"},
		},
	})
	require.NoError(t, err)
}

func newMCPServerForTest(t *testing.T) *gstest.Server {
	t.Helper()
	gs := gstest.New()
	t.Cleanup(gs.Close)
	return gs
}

func TestMCPServerTransports(t *testing.T) {
	gs := newMCPServerForTest(t)
	sdk, err := client.New(gs.URL, gstest.DefaultUsername, gstest.DefaultPassword)
	require.NoError(t, err)
	s, err := NewServer(sdk)
	require.NoError(t, err)

	t.Run("InProcessTransport", func(t *testing.T) {
		tr := transport.NewInProcessTransport(s)
		require.NoError(t, tr.Start(context.Background()))
		defer tr.Close()

		c := mcpclient.NewClient(tr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		initialize(ctx, t, c)

		tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		require.NoError(t, err)
		names := make([]string, 0, len(tools.Tools))
		for _, tool := range tools.Tools {
			names = append(names, tool.Name)
		}
		assert.ElementsMatch(t, expectedTools, names)

		req := mcp.CallToolRequest{}
		req.Params.Name = "publish_css_style"
		req.Params.Arguments = map[string]any{"name": "lakes", "body": "* { fill: blue; }"}
		res, err := c.CallTool(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.IsError)

		body, ok := gs.Style("", "lakes")
		assert.True(t, ok)
		assert.Equal(t, "* { fill: blue; }", body)
	})

	t.Run("HTTPTransport", func(t *testing.T) {
		httpSrv := httptest.NewServer(NewHTTPHandler(s))
		defer httpSrv.Close()

		tr, err := transport.NewStreamableHTTP(httpSrv.URL + "/mcp")
		require.NoError(t, err)
		require.NoError(t, tr.Start(context.Background()))
		defer tr.Close()

		c := mcpclient.NewClient(tr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		initialize(ctx, t, c)

		tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
		require.NoError(t, err)
		assert.Len(t, tools.Tools, len(expectedTools))
	})
}

func TestNewLogger_TagsService(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &line))
	assert.Equal(t, ServerName, line["service"])
	assert.Contains(t, line, "caller")
}

func TestShouldUseStdio(t *testing.T) {
	assert.True(t, shouldUseStdio("stdio"))
	assert.False(t, shouldUseStdio("http"))
}
