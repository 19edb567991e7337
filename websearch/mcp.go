package websearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/sillage/kit"
)

// RegisterMCP registers the search tool on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server, opts ...kit.ToolOption) {
	type req struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}

	tool := &mcp.Tool{
		Name:        "websearch_query",
		Description: "Run a Google web search and list the organic results",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"query"},
			"properties": map[string]any{
				"query":       map[string]any{"type": "string", "description": "Search terms"},
				"max_results": map[string]any{"type": "integer", "description": "Max results to return (default 10)"},
			},
		},
	}

	endpoint := func(ctx context.Context, r any) (string, error) {
		p := r.(*req)
		results, _, err := s.Search(ctx, p.Query, p.MaxResults)
		if err != nil {
			return "", err
		}
		return RenderResults(results), nil
	}

	decode := func(r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var p req
		if len(r.Params.Arguments) > 0 {
			if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
				return nil, err
			}
		}
		if p.Query == "" {
			return nil, fmt.Errorf("query is required")
		}
		return &kit.MCPDecodeResult{Request: &p}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode, opts...)
}
