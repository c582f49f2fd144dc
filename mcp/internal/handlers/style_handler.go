package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/dcfaria/GeoServer/client"
)

// StyleHandler exposes the GeoServer CSS style operations as MCP tools.
type StyleHandler struct {
	client *client.Client
}

func NewStyleHandler(c *client.Client) *StyleHandler { return &StyleHandler{client: c} }

func (sh *StyleHandler) RegisterTools(s *server.MCPServer) error {
	publish := mcp.NewTool("publish_css_style",
		mcp.WithDescription("Publish a new CSS style; fails if a style with that name already exists"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Style name")),
		mcp.WithString("body", mcp.Required(), mcp.Description("GeoCSS document")),
		mcp.WithString("workspace", mcp.Description("Workspace; omit for a global style")),
	)
	update := mcp.NewTool("update_css_style",
		mcp.WithDescription("Replace the CSS body of an existing style"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Style name")),
		mcp.WithString("body", mcp.Required(), mcp.Description("GeoCSS document")),
		mcp.WithString("workspace", mcp.Description("Workspace; omit for a global style")),
	)
	remove := mcp.NewTool("remove_style",
		mcp.WithDescription("Remove a style"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Style name")),
		mcp.WithString("workspace", mcp.Description("Workspace; omit for a global style")),
		mcp.WithBoolean("recurse", mcp.Description("Also remove layer references to the style")),
		mcp.WithBoolean("purge", mcp.Description("Delete the underlying style file")),
	)
	exists := mcp.NewTool("style_exists",
		mcp.WithDescription("Check whether a style exists"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Style name")),
		mcp.WithString("workspace", mcp.Description("Workspace; omit for a global style")),
	)
	list := mcp.NewTool("list_styles",
		mcp.WithDescription("List style names"),
		mcp.WithString("workspace", mcp.Description("Workspace; omit for global styles")),
	)
	get := mcp.NewTool("get_css_style",
		mcp.WithDescription("Fetch the CSS body of a style"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Style name")),
		mcp.WithString("workspace", mcp.Description("Workspace; omit for a global style")),
	)

	s.AddTool(publish, sh.handlePublish)
	s.AddTool(update, sh.handleUpdate)
	s.AddTool(remove, sh.handleRemove)
	s.AddTool(exists, sh.handleExists)
	s.AddTool(list, sh.handleList)
	s.AddTool(get, sh.handleGet)
	return nil
}

type mutationResult struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace,omitempty"`
	Success   bool   `json:"success"`
}

func textJSON(v any) *mcp.CallToolResult {
	b, _ := json.Marshal(v)
	return mcp.NewToolResultText(string(b))
}

func (sh *StyleHandler) handlePublish(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.RequireString("name")
	body, _ := req.RequireString("body")
	ws := req.GetString("workspace", "")

	log.Debug().Str("style", name).Str("workspace", ws).Int("bytes", len(body)).Msg("publish_css_style invoked")

	start := time.Now()
	ok, err := sh.client.PublishCSSStyle(ctx, body, name, ws)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("publish_css_style failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to publish style: %v", err)), nil
	}
	return textJSON(mutationResult{Name: name, Workspace: ws, Success: ok}), nil
}

func (sh *StyleHandler) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.RequireString("name")
	body, _ := req.RequireString("body")
	ws := req.GetString("workspace", "")

	log.Debug().Str("style", name).Str("workspace", ws).Int("bytes", len(body)).Msg("update_css_style invoked")

	start := time.Now()
	ok, err := sh.client.UpdateCSSStyle(ctx, body, name, ws)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("update_css_style failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to update style: %v", err)), nil
	}
	return textJSON(mutationResult{Name: name, Workspace: ws, Success: ok}), nil
}

func (sh *StyleHandler) handleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.RequireString("name")
	ws := req.GetString("workspace", "")
	recurse := req.GetBool("recurse", false)
	purge := req.GetBool("purge", false)

	log.Debug().Str("style", name).Str("workspace", ws).Bool("recurse", recurse).Bool("purge", purge).Msg("remove_style invoked")

	start := time.Now()
	ok, err := sh.client.RemoveStyle(ctx, name, ws, recurse, purge)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("remove_style failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove style: %v", err)), nil
	}
	return textJSON(mutationResult{Name: name, Workspace: ws, Success: ok}), nil
}

func (sh *StyleHandler) handleExists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.RequireString("name")
	ws := req.GetString("workspace", "")

	var (
		found bool
		err   error
	)
	if ws == "" {
		found, err = sh.client.StyleExists(ctx, name)
	} else {
		found, err = sh.client.StyleExistsInWorkspace(ctx, ws, name)
	}
	if err != nil {
		log.Error().Err(err).Str("style", name).Msg("style_exists failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to check style: %v", err)), nil
	}
	return textJSON(map[string]any{"name": name, "workspace": ws, "exists": found}), nil
}

func (sh *StyleHandler) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ws := req.GetString("workspace", "")

	refs, err := sh.client.ListStyles(ctx, ws)
	if err != nil {
		log.Error().Err(err).Str("workspace", ws).Msg("list_styles failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list styles: %v", err)), nil
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return textJSON(map[string]any{"workspace": ws, "styles": names}), nil
}

func (sh *StyleHandler) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := req.RequireString("name")
	ws := req.GetString("workspace", "")

	css, err := sh.client.GetCSSStyle(ctx, name, ws)
	if err != nil {
		log.Error().Err(err).Str("style", name).Msg("get_css_style failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get style: %v", err)), nil
	}
	return mcp.NewToolResultText(css), nil
}
