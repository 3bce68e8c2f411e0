// Package approval_tools exposes the approval gate to the agent and
// its human operator: create a pending approval, resolve it, and list
// recent decisions.
package approval_tools

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/approval"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store/tables"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterApprovalTools registers the approval tools with the MCP
// server.
func RegisterApprovalTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	requestTool := mcp.NewTool("approval_request",
		mcp.WithDescription("Create a pending approval record for an action so a human can decide on it"),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Name of the action awaiting approval"),
		),
		mcp.WithObject("payload",
			mcp.Description("The exact payload the approval covers; recorded immutably"),
		),
	)
	s.AddTool(requestTool, common.Instrumented("approval_request", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRequest(ctx, request, sc)
	}))

	resolveTool := mcp.NewTool("approval_resolve",
		mcp.WithDescription("Approve or deny a pending action"),
		mcp.WithNumber("approval_id",
			mcp.Required(),
			mcp.Description("The approval identifier"),
		),
		mcp.WithString("decision",
			mcp.Required(),
			mcp.Description("Either 'approved' or 'denied'"),
		),
	)
	s.AddTool(resolveTool, common.Instrumented("approval_resolve", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleResolve(ctx, request, sc)
	}))

	listTool := mcp.NewTool("approval_list",
		mcp.WithDescription("List recent approvals, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of approvals to return (default: 50)"),
		),
	)
	s.AddTool(listTool, common.Instrumented("approval_list", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleList(ctx, request, sc)
	}))

	return nil
}

func handleRequest(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	action, err := common.RequiredStringArg(args, "action")
	if err != nil {
		return common.ResultError("%v", err)
	}
	payload := tables.MapStructure(common.ObjectArg(args, "payload"))

	decision, err := sc.Gate().EnsureApproval(ctx, action, payload, nil)
	if err != nil {
		return common.ResultError("failed to create approval: %v", err)
	}
	result := map[string]interface{}{
		"approval_id": decision.ApprovalID,
		"status":      "pending",
	}
	if err := sc.Recorder().Record(ctx, "approval_request", tables.MapStructure{"action": action}, result); err != nil {
		return common.ResultError("approval created but audit record failed: %v", err)
	}
	return common.ResultOK(result)
}

func handleResolve(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id := common.IntArg(args, "approval_id", 0)
	if id == 0 {
		return common.ResultError("'approval_id' field is required")
	}
	decision, err := common.RequiredStringArg(args, "decision")
	if err != nil {
		return common.ResultError("%v", err)
	}

	record, err := sc.Gate().Resolve(ctx, id, decision)
	if err != nil {
		switch {
		case errors.Is(err, approval.ErrInvalidDecision):
			return common.ResultError("invalid_decision: decision must be 'approved' or 'denied'")
		case errors.Is(err, approval.ErrNotFound):
			return common.ResultError("approval_not_found")
		}
		return common.ResultError("failed to resolve approval: %v", err)
	}

	payload := tables.MapStructure{"approval_id": id, "decision": decision}
	if err := sc.Recorder().Record(ctx, "approval_resolve", payload, common.AsMap(record)); err != nil {
		return common.ResultError("approval resolved but audit record failed: %v", err)
	}
	return common.ResultOK(record)
}

func handleList(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	limit := common.IntArg(request.GetArguments(), "limit", 50)
	if limit <= 0 {
		// uint64(-1) is a LIMIT sqlite rejects
		limit = 50
	}
	approvals, err := sc.Gate().Recent(ctx, uint64(limit))
	if err != nil {
		return common.ResultError("failed to list approvals: %v", err)
	}
	return common.ResultOK(map[string]interface{}{"approvals": approvals})
}
