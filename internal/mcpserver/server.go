// Package mcpserver exposes the latest FOMC decision card to MCP clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fredgpt/server/internal/fomc"
	logx "github.com/fredgpt/server/pkg/logger"
)

const (
	Name    = "fomc-tools"
	Version = "v1.0.0"

	ToolLatestDecision = "get_latest_decision"
)

// DecisionSource is satisfied by *fomc.Store.
type DecisionSource interface {
	LatestPayload(ctx context.Context) (*fomc.Payload, error)
}

// New builds an MCP server with the decision tool registered.
func New(source DecisionSource) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)

	server.AddTool(&mcp.Tool{
		Name:        ToolLatestDecision,
		Description: "Return the most recent FOMC decision with the previous meeting and a formatted card.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, latestDecisionHandler(source))

	return server
}

// Serve speaks MCP over stdin/stdout until the client disconnects or ctx ends.
func Serve(ctx context.Context, source DecisionSource) error {
	logx.Info().Str("tool", ToolLatestDecision).Msg("MCP server listening on stdio")
	return New(source).Run(ctx, &mcp.StdioTransport{})
}

func latestDecisionHandler(source DecisionSource) mcp.ToolHandler {
	return func(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := source.LatestPayload(ctx)
		if err != nil {
			logx.Error().Str("tool", ToolLatestDecision).Err(err).Msg("Latest decision lookup failed")
			return errorResult(fmt.Sprintf("Failed to fetch latest FOMC decision: %v", err)), nil
		}

		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode decision payload: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		}, nil
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
