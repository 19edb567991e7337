package histo

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/sillage/kit"
)

// RegisterMCP registers the history tool on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server, opts ...kit.ToolOption) {
	type req struct {
		Limit int `json:"limit"`
	}

	tool := &mcp.Tool{
		Name:        "histo_recent",
		Description: "List pages visited today in the local Chrome browser, newest first",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer", "description": "Max entries to return (default 10)"},
			},
		},
	}

	endpoint := func(ctx context.Context, r any) (string, error) {
		p := r.(*req)
		entries, err := s.Recent(ctx, p.Limit)
		if err != nil {
			return "", err
		}
		return RenderEntries(entries), nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode, opts...)
}
