package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dcfaria/GeoServer/client/internal/types"
)

const (
	opPublish = "publish"
	opUpdate  = "update"
	opRemove  = "remove"
	opGet     = "get"
	opList    = "list"
)

// --------------------------------------------------------------------
// URL builders
// --------------------------------------------------------------------

// stylesRoot returns {base}/rest[/workspaces/{ws}]/styles.
func (e Endpoint) stylesRoot(workspace, name string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(e.BaseURL, "/"))
	b.WriteString("/rest")
	if workspace != "" {
		segment := workspace
		if e.LegacyWorkspacePath {
			segment = name
		}
		b.WriteString("/workspaces/")
		b.WriteString(types.EscapeName(segment))
	}
	b.WriteString("/styles")
	return b.String()
}

// PublishURL is the POST target for a new raw CSS style.
func (e Endpoint) PublishURL(workspace, name string) string {
	return e.stylesRoot(workspace, name) + "?name=" + types.EscapeName(name) + "&raw=true"
}

// UpdateURL is the PUT target replacing a style's CSS.
func (e Endpoint) UpdateURL(workspace, name string) string {
	return e.cssURL(workspace, name) + "?raw=true"
}

// RemoveURL is the DELETE target for a style.
func (e Endpoint) RemoveURL(workspace, name string, recurse, purge bool) string {
	return e.cssURL(workspace, name) + fmt.Sprintf("?purge=%t&recurse=%t", purge, recurse)
}

// ListURL is the GET target listing styles. Read paths always address the
// workspace itself, legacy layout or not.
func (e Endpoint) ListURL(workspace string) string {
	return e.current().stylesRoot(workspace, "") + ".json"
}

// CSSURL is the GET target returning a style's CSS source.
func (e Endpoint) CSSURL(workspace, name string) string {
	return e.current().cssURL(workspace, name)
}

func (e Endpoint) current() Endpoint {
	e.LegacyWorkspacePath = false
	return e
}

func (e Endpoint) cssURL(workspace, name string) string {
	return e.stylesRoot(workspace, name) + "/" + types.EscapeName(name) + ".css"
}

// existenceScope picks the workspace the existence check runs against.
func (e Endpoint) existenceScope(workspace string) string {
	if e.LegacyWorkspacePath {
		return ""
	}
	return workspace
}

// --------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------

// PublishCSSStyle uploads a new style. It returns true when GeoServer answers
// with an empty body and false when the body is non-empty.
func PublishCSSStyle(ctx context.Context, checker StyleExistenceChecker, exec HTTPVerbExecutor, ep Endpoint, req types.CSSStyleRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := req.Validate(); err != nil {
		return false, types.NewStyleError(types.KindValidation, opPublish, req.Name, req.Workspace, "invalid request", err)
	}
	exists, err := checker.Exists(ctx, ep.existenceScope(req.Workspace), req.Name)
	if err != nil {
		return false, types.NewStyleError(types.KindOperation, opPublish, req.Name, req.Workspace, "existence check failed", err)
	}
	if exists {
		return false, types.NewStyleError(types.KindConflict, opPublish, req.Name, req.Workspace,
			fmt.Sprintf("style with name %s already exists", req.Name), nil)
	}

	url := ep.PublishURL(req.Workspace, req.Name)
	start := time.Now()
	result, err := exec.Post(ctx, url, req.Body, types.MIMEGeoCSS)
	ep.Log.Debug().Str("style", req.Name).Str("workspace", req.Workspace).Str("url", url).Dur("elapsed", time.Since(start)).Msg("publish new style")
	if err != nil {
		return false, types.NewStyleError(types.KindOperation, opPublish, req.Name, req.Workspace, "style not uploaded", err)
	}
	return result == "", nil
}

// UpdateCSSStyle replaces the CSS of an existing style. Result semantics
// match PublishCSSStyle.
func UpdateCSSStyle(ctx context.Context, checker StyleExistenceChecker, exec HTTPVerbExecutor, ep Endpoint, req types.CSSStyleRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := req.Validate(); err != nil {
		return false, types.NewStyleError(types.KindValidation, opUpdate, req.Name, req.Workspace, "invalid request", err)
	}
	if err := requireExisting(ctx, checker, ep, opUpdate, req.Name, req.Workspace); err != nil {
		return false, err
	}

	url := ep.UpdateURL(req.Workspace, req.Name)
	start := time.Now()
	result, err := exec.Put(ctx, url, req.Body, types.MIMEGeoCSS)
	ep.Log.Debug().Str("style", req.Name).Str("workspace", req.Workspace).Str("url", url).Dur("elapsed", time.Since(start)).Msg("updating style")
	if err != nil {
		return false, types.NewStyleError(types.KindOperation, opUpdate, req.Name, req.Workspace, "style not updated", err)
	}
	return result == "", nil
}

// RemoveStyle deletes an existing style. It returns true on success; a
// rejected delete is reported as an operation error since the usual cause is
// a layer still referencing the style.
func RemoveStyle(ctx context.Context, checker StyleExistenceChecker, exec HTTPVerbExecutor, ep Endpoint, req types.RemoveStyleRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := req.Validate(); err != nil {
		return false, types.NewStyleError(types.KindValidation, opRemove, req.Name, req.Workspace, "invalid request", err)
	}
	if err := requireExisting(ctx, checker, ep, opRemove, req.Name, req.Workspace); err != nil {
		return false, err
	}

	url := ep.RemoveURL(req.Workspace, req.Name, req.Recurse, req.Purge)
	start := time.Now()
	err := exec.Delete(ctx, url)
	ep.Log.Debug().Str("style", req.Name).Str("workspace", req.Workspace).Str("url", url).Dur("elapsed", time.Since(start)).Msg("removing style")
	if err != nil {
		return false, types.NewStyleError(types.KindOperation, opRemove, req.Name, req.Workspace,
			"style not deleted, check whether it is assigned to a layer", err)
	}
	return true, nil
}

// ListStyles returns the styles of a workspace, or the global ones when
// workspace is empty.
func ListStyles(ctx context.Context, exec HTTPVerbExecutor, ep Endpoint, workspace string) ([]types.StyleRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := ep.ListURL(workspace)
	body, err := exec.Get(ctx, url)
	if err != nil {
		return nil, types.NewStyleError(types.KindOperation, opList, "", workspace, "styles not listed", err)
	}
	var lr types.ListStylesResponse
	if err := json.Unmarshal([]byte(body), &lr); err != nil {
		return nil, types.NewStyleError(types.KindOperation, opList, "", workspace, "decode styles listing", err)
	}
	refs, err := lr.Refs()
	if err != nil {
		return nil, types.NewStyleError(types.KindOperation, opList, "", workspace, "decode styles listing", err)
	}
	return refs, nil
}

// GetCSSStyle fetches the CSS source of an existing style.
func GetCSSStyle(ctx context.Context, checker StyleExistenceChecker, exec HTTPVerbExecutor, ep Endpoint, name, workspace string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", types.NewStyleError(types.KindValidation, opGet, name, workspace, "style name is empty", nil)
	}
	if err := requireExisting(ctx, checker, ep.current(), opGet, name, workspace); err != nil {
		return "", err
	}
	body, err := exec.Get(ctx, ep.CSSURL(workspace, name))
	if err != nil {
		return "", types.NewStyleError(types.KindOperation, opGet, name, workspace, "style not fetched", err)
	}
	return body, nil
}

func requireExisting(ctx context.Context, checker StyleExistenceChecker, ep Endpoint, op, name, workspace string) error {
	exists, err := checker.Exists(ctx, ep.existenceScope(workspace), name)
	if err != nil {
		return types.NewStyleError(types.KindOperation, op, name, workspace, "existence check failed", err)
	}
	if !exists {
		return types.NewStyleError(types.KindConflict, op, name, workspace,
			fmt.Sprintf("style with name %s does not exist", name), nil)
	}
	return nil
}
