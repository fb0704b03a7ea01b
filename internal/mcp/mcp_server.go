// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/storecheck/internal/contract"
)

// NewMCPServer initializes and configures the storecheck MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Storecheck Policy Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: validate_manifest ---
	s.AddTool(mcp.NewTool("validate_manifest",
		mcp.WithDescription("Validate a Chrome extension manifest against store policy and return the findings and compliance score."),
		mcp.WithString("manifest", mcp.Description("The manifest.json content as a JSON string."), mcp.Required()),
		mcp.WithArray("files",
			mcp.Description("Files in the package as objects with 'name' (relative path) and 'size' (bytes). Enables icon and size checks."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string"},
					"size": map[string]any{"type": "number"},
				},
			}),
		),
	), h.handleValidateManifest)

	// --- 2. Tool: validate_path ---
	s.AddTool(mcp.NewTool("validate_path",
		mcp.WithDescription("Validate an extension on disk: an unpacked directory, a manifest.json, a .zip or a .crx package."),
		mcp.WithString("path", mcp.Description("Path to the extension package."), mcp.Required()),
	), h.handleValidatePath)

	// --- 3. Tool: get_rulebook ---
	s.AddTool(mcp.NewTool("get_rulebook",
		mcp.WithDescription("Return the active policy rulebook: length limits, icon sizes, permission lists and severity penalties."),
	), h.handleGetRulebook)

	return s
}

// StartMCPServer starts the storecheck MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
