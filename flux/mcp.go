package flux

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/sillage/kit"
)

// RegisterMCP registers the feed tool on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server, opts ...kit.ToolOption) {
	type req struct {
		URL      string `json:"url"`
		MaxItems int    `json:"max_entries"`
	}

	tool := &mcp.Tool{
		Name:        "flux_fetch_feed",
		Description: "Fetch an RSS or Atom feed URL and list its entries",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"url"},
			"properties": map[string]any{
				"url":         map[string]any{"type": "string", "description": "Feed URL (http or https)"},
				"max_entries": map[string]any{"type": "integer", "description": "Max entries to render (default 10)"},
			},
		},
	}

	endpoint := func(ctx context.Context, r any) (string, error) {
		p := r.(*req)
		feed, err := s.FetchFeed(ctx, p.URL)
		if err != nil {
			return "", err
		}
		return s.Render(feed, p.MaxItems), nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		if p.URL == "" {
			return nil, fmt.Errorf("url is required")
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode, opts...)
}
