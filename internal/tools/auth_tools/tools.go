// Package auth_tools exposes the OAuth connection lifecycle to the
// agent: begin a flow, poll its status, inspect the connection.
package auth_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/google"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterAuthTools registers the authentication tools with the MCP
// server.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	startTool := mcp.NewTool("auth_google_start",
		mcp.WithDescription("Start the Google authorization flow. Returns a URL the user must open in a browser, plus a request_id for polling. The flow completes asynchronously; keep working and poll with auth_google_poll."),
	)
	s.AddTool(startTool, common.Instrumented("auth_google_start", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStart(ctx, sc)
	}))

	pollTool := mcp.NewTool("auth_google_poll",
		mcp.WithDescription("Check the status of a previously started authorization flow"),
		mcp.WithString("request_id",
			mcp.Required(),
			mcp.Description("The request_id returned by auth_google_start"),
		),
	)
	s.AddTool(pollTool, common.Instrumented("auth_google_poll", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePoll(ctx, request, sc)
	}))

	statusTool := mcp.NewTool("auth_google_status",
		mcp.WithDescription("Report whether a Google connection exists, its scopes and credential expiry"),
	)
	s.AddTool(statusTool, common.Instrumented("auth_google_status", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleStatus(ctx, sc)
	}))

	return nil
}

func handleStart(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	result, err := sc.Flows().Begin(ctx, google.ProviderName)
	if err != nil {
		if errors.Is(err, authflow.ErrNotConfigured) {
			return common.ResultError("google OAuth is not configured: %v", err)
		}
		return common.ResultError("failed to start authorization: %v", err)
	}
	return common.ResultOK(map[string]interface{}{
		"authorization_url": result.AuthorizationURL,
		"request_id":        result.RequestID,
		"expires_at":        result.ExpiresAt,
		"instructions":      fmt.Sprintf("Ask the user to open the URL and grant access, then poll auth_google_poll with request_id %s", result.RequestID),
	})
}

func handlePoll(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	requestID, err := common.RequiredStringArg(request.GetArguments(), "request_id")
	if err != nil {
		return common.ResultError("%v", err)
	}
	status, err := sc.Flows().PollStatus(ctx, requestID)
	if err != nil {
		return common.ResultError("failed to poll authorization status: %v", err)
	}
	return common.ResultOK(status)
}

func handleStatus(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	status, err := sc.Flows().Status(ctx, google.ProviderName)
	if err != nil {
		return common.ResultError("failed to read connection status: %v", err)
	}
	return common.ResultOK(status)
}
