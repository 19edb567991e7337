// Package kit provides the tool-transport glue: typed endpoints bridged onto
// an MCP server with a uniform response shape.
//
// Every tool responds with the same envelope — one text content block and a
// structuredContent carrying the identical string under "result". Endpoint
// failures degrade to textual error content in that same envelope, so the
// protocol layer never sees a structural error.
package kit

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/sillage/idgen"
)

// Endpoint executes a decoded tool request and returns the rendered text
// result. The returned string is what the caller sees, verbatim.
type Endpoint func(ctx context.Context, req any) (string, error)

// MCPDecodeResult holds the decoded request and an optional context enrichment.
type MCPDecodeResult struct {
	Request   any
	EnrichCtx func(context.Context) context.Context
}

// ToolCall describes one completed tool invocation, for recording.
type ToolCall struct {
	Tool       string
	RequestID  string
	DurationMS int64
	Success    bool
	ErrText    string
}

// CallRecorder receives a ToolCall after every invocation. Implementations
// must be best-effort: a failing recorder never affects the tool result.
type CallRecorder interface {
	RecordCall(ctx context.Context, call ToolCall)
}

// ToolOption configures RegisterMCPTool.
type ToolOption func(*toolConfig)

type toolConfig struct {
	recorder CallRecorder
	newID    idgen.Generator
}

// WithRecorder attaches a CallRecorder to the registered tool.
func WithRecorder(r CallRecorder) ToolOption {
	return func(c *toolConfig) { c.recorder = r }
}

// WithIDGenerator sets the request-ID generator. Default: idgen.Default.
func WithIDGenerator(gen idgen.Generator) ToolOption {
	return func(c *toolConfig) { c.newID = gen }
}

// TextResult builds the uniform tool response: one text block plus a
// structuredContent {"result": text} carrying the identical string.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: map[string]any{"result": text},
	}
}

// DecodeFunc extracts the typed request from MCP arguments.
type DecodeFunc func(*mcp.CallToolRequest) (*MCPDecodeResult, error)

// RegisterMCPTool registers an Endpoint as an MCP tool on the given server.
//
// Decode and endpoint errors both produce a normal result whose text is the
// error message. The handler never returns a non-nil error to the SDK.
func RegisterMCPTool(srv *mcp.Server, tool *mcp.Tool, endpoint Endpoint, decode DecodeFunc, opts ...ToolOption) {
	cfg := toolConfig{newID: idgen.Default}
	for _, o := range opts {
		o(&cfg)
	}
	srv.AddTool(tool, newHandler(tool.Name, endpoint, decode, cfg))
}

func newHandler(name string, endpoint Endpoint, decode DecodeFunc, cfg toolConfig) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = WithRequestID(ctx, cfg.newID())
		start := time.Now()

		decoded, err := decode(req)
		if err != nil {
			record(ctx, &cfg, name, start, err)
			return TextResult("invalid arguments: " + err.Error()), nil
		}
		if decoded.EnrichCtx != nil {
			ctx = decoded.EnrichCtx(ctx)
		}

		text, err := endpoint(ctx, decoded.Request)
		record(ctx, &cfg, name, start, err)
		if err != nil {
			return TextResult("Error: " + err.Error()), nil
		}
		return TextResult(text), nil
	}
}

func record(ctx context.Context, cfg *toolConfig, tool string, start time.Time, err error) {
	if cfg.recorder == nil {
		return
	}
	call := ToolCall{
		Tool:       tool,
		RequestID:  GetRequestID(ctx),
		DurationMS: time.Since(start).Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		call.ErrText = err.Error()
	}
	cfg.recorder.RecordCall(ctx, call)
}
