package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/instrumentation"
	"github.com/attachehq/attache/internal/logging"
	"github.com/attachehq/attache/internal/server"
)

// ToolHandler is the mcp-go handler signature used across the tool
// packages.
type ToolHandler = mcpserver.ToolHandlerFunc

// Instrumented wraps a tool handler with invocation metrics and a
// structured log line per call.
func Instrumented(toolName string, sc *server.ServerContext, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := instrumentation.StatusSuccess
		if err != nil || (result != nil && result.IsError) {
			status = instrumentation.StatusError
		}

		if m := sc.Metrics(); m != nil {
			m.RecordToolInvocation(toolName, status, duration)
		}
		logging.WithTool(sc.Logger(), toolName).Info("tool call",
			logging.Status(status),
			"duration", duration,
		)
		return result, err
	}
}
