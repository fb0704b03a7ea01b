package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/storecheck/core"
	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
)

// inlineSource labels submissions that arrive as tool arguments.
const inlineSource = "mcp:validate_manifest"

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleValidateManifest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manifest := request.GetString("manifest", "")
	if manifest == "" {
		return mcp.NewToolResultError("manifest is required"), nil
	}

	files, err := parseFiles(request.GetArguments()["files"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid files: %v", err)), nil
	}

	sub, err := policy.NewSubmission(inlineSource, []byte(manifest), files)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}

	res := core.ValidateSubmission(h.context(ctx), h.baseCfg.Clone(), sub)
	return jsonResult(res)
}

func (h *toolHandler) handleValidatePath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	res, err := core.ValidatePath(h.context(ctx), h.baseCfg.Clone(), path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
	}
	return jsonResult(res)
}

func (h *toolHandler) handleGetRulebook(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.baseCfg.Rulebook)
}

// context attaches the store manager so tool calls share the CLI cache and history.
func (h *toolHandler) context(ctx context.Context) context.Context {
	if h.mgr == nil {
		return ctx
	}
	return core.WithStoreManager(ctx, h.mgr)
}

// parseFiles converts the optional files argument into a FileSet.
func parseFiles(raw any) (policy.FileSet, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var files policy.FileSet
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.Name == "" {
			return nil, errors.New("every file needs a name")
		}
		if f.Size < 0 {
			return nil, fmt.Errorf("file %q has a negative size", f.Name)
		}
	}
	return files, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
