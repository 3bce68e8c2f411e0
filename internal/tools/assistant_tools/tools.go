// Package assistant_tools exposes the assistant helpers: email
// summaries, meeting briefs, and generated reply drafts. None of
// these touch the account, so none of them are gated.
package assistant_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/assistant"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterAssistantTools registers the assistant tools with the MCP
// server.
func RegisterAssistantTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	summarizeTool := mcp.NewTool("summarize_email",
		mcp.WithDescription("Summarize an email and store the summary as an assistant note"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The message to summarize"),
		),
	)
	s.AddTool(summarizeTool, common.Instrumented("summarize_email", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSummarizeEmail(ctx, request, sc)
	}))

	briefTool := mcp.NewTool("meeting_brief",
		mcp.WithDescription("Prepare a meeting brief: attendees, recent mail with them, and talking points"),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The calendar event to prepare for"),
		),
	)
	s.AddTool(briefTool, common.Instrumented("meeting_brief", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleMeetingBrief(ctx, request, sc)
	}))

	composeTool := mcp.NewTool("compose_email_reply",
		mcp.WithDescription("Generate an email reply draft. Never sends anything; use the gated mail tools for that."),
		mcp.WithString("context",
			mcp.Required(),
			mcp.Description("What the reply should respond to"),
		),
		mcp.WithString("tone",
			mcp.Description("Desired tone (default: professional)"),
		),
	)
	s.AddTool(composeTool, common.Instrumented("compose_email_reply", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleComposeReply(request, sc)
	}))

	return nil
}

func handleSummarizeEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredStringArg(request.GetArguments(), "message_id")
	if err != nil {
		return common.ResultError("%v", err)
	}

	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ResultError("gmail unavailable: %v", err)
	}
	summary, err := assistant.SummarizeEmail(ctx, client, sc.Store(), messageID)
	if err != nil {
		return common.ResultError("failed to summarize email: %v", err)
	}
	return common.ResultOK(summary)
}

func handleMeetingBrief(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	eventID, err := common.RequiredStringArg(request.GetArguments(), "event_id")
	if err != nil {
		return common.ResultError("%v", err)
	}

	calClient, err := sc.CalendarClient(ctx)
	if err != nil {
		return common.ResultError("calendar unavailable: %v", err)
	}
	mailClient, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ResultError("gmail unavailable: %v", err)
	}
	brief, err := assistant.BuildMeetingBrief(calClient, mailClient, eventID)
	if err != nil {
		return common.ResultError("failed to build meeting brief: %v", err)
	}
	return common.ResultOK(brief)
}

func handleComposeReply(request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	contextText, err := common.RequiredStringArg(args, "context")
	if err != nil {
		return common.ResultError("%v", err)
	}
	draft := assistant.ComposeReply(contextText, common.StringArg(args, "tone"))
	return common.ResultOK(draft)
}
