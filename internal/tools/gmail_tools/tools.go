// Package gmail_tools exposes the mail tools. Reading and drafting
// are ungated; applying labels and sending require an approval.
package gmail_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/gmail"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store/tables"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterGmailTools registers all Gmail-related tools with the MCP
// server.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("gmail_search",
		mcp.WithDescription("Search Gmail messages and return metadata"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'in:inbox', 'from:user@example.com')"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("gmail_search", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(ctx, request, sc)
	}))

	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Return full email content, plain text preferred"),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The message identifier"),
		),
	)
	s.AddTool(getMessageTool, common.Instrumented("gmail_get_message", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetMessage(ctx, request, sc)
	}))

	getThreadTool := mcp.NewTool("gmail_get_thread",
		mcp.WithDescription("Return all messages in a thread"),
		mcp.WithString("thread_id",
			mcp.Required(),
			mcp.Description("The thread identifier"),
		),
	)
	s.AddTool(getThreadTool, common.Instrumented("gmail_get_thread", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetThread(ctx, request, sc)
	}))

	createDraftTool := mcp.NewTool("gmail_create_draft",
		mcp.WithDescription("Create an email draft. Drafts stay in the account; sending is a separate, approval-gated step."),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Optional thread to attach the draft to"),
		),
	)
	s.AddTool(createDraftTool, common.Instrumented("gmail_create_draft", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateDraft(ctx, request, sc)
	}))

	applyLabelsTool := mcp.NewTool("gmail_apply_labels",
		mcp.WithDescription("Apply labels to one or more messages (requires approval)"),
		mcp.WithArray("labels",
			mcp.Required(),
			mcp.Description("Label names or ids to apply"),
		),
		mcp.WithArray("message_ids",
			mcp.Description("Message ids to label"),
		),
		mcp.WithString("message_id",
			mcp.Description("Single message id to label (alternative to message_ids)"),
		),
		mcp.WithNumber("approval_id",
			mcp.Description("Approval identifier from a prior call"),
		),
	)
	s.AddTool(applyLabelsTool, common.Instrumented("gmail_apply_labels", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleApplyLabels(ctx, request, sc)
	}))

	sendEmailTool := mcp.NewTool("gmail_send_email",
		mcp.WithDescription("Send an email through Gmail (requires approval)"),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es), comma-separated"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body content"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es), comma-separated"),
		),
		mcp.WithString("bcc",
			mcp.Description("BCC email address(es), comma-separated"),
		),
		mcp.WithBoolean("is_html",
			mcp.Description("Whether the body is HTML (default: plain text)"),
		),
		mcp.WithNumber("approval_id",
			mcp.Description("Approval identifier from a prior call"),
		),
	)
	s.AddTool(sendEmailTool, common.Instrumented("gmail_send_email", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSendEmail(ctx, request, sc)
	}))

	return nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, err := common.RequiredStringArg(args, "query")
	if err != nil {
		return common.ResultError("%v", err)
	}
	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ResultError("gmail not connected: %v", err)
	}
	messages, err := client.Search(query, common.IntArg(args, "limit", 10))
	if err != nil {
		return common.ResultError("search failed: %v", err)
	}
	return common.ResultOK(map[string]interface{}{"messages": messages})
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	messageID, err := common.RequiredStringArg(request.GetArguments(), "message_id")
	if err != nil {
		return common.ResultError("%v", err)
	}
	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ResultError("gmail not connected: %v", err)
	}
	message, err := client.GetMessage(messageID)
	if err != nil {
		return common.ResultError("failed to get message: %v", err)
	}
	return common.ResultOK(message)
}

func handleGetThread(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	threadID, err := common.RequiredStringArg(request.GetArguments(), "thread_id")
	if err != nil {
		return common.ResultError("%v", err)
	}
	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ResultError("gmail not connected: %v", err)
	}
	thread, err := client.GetThread(threadID)
	if err != nil {
		return common.ResultError("failed to get thread: %v", err)
	}
	return common.ResultOK(thread)
}

func handleCreateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	to, err := common.RequiredStringArg(args, "to")
	if err != nil {
		return common.ResultError("%v", err)
	}
	subject, err := common.RequiredStringArg(args, "subject")
	if err != nil {
		return common.ResultError("%v", err)
	}
	body, err := common.RequiredStringArg(args, "body")
	if err != nil {
		return common.ResultError("%v", err)
	}
	threadID := common.StringArg(args, "thread_id")

	client, err := sc.GmailClient(ctx)
	if err != nil {
		return common.ResultError("gmail not connected: %v", err)
	}
	draft, err := client.CreateDraft(to, subject, body, threadID)
	if err != nil {
		return common.ResultError("failed to create draft: %v", err)
	}

	payload := tables.MapStructure{"to": to, "subject": subject, "thread_id": threadID}
	if err := sc.Recorder().Record(ctx, "gmail_create_draft", payload, common.AsMap(draft)); err != nil {
		return common.ResultError("draft created but audit record failed: %v", err)
	}
	return common.ResultOK(draft)
}

func handleApplyLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	labels := common.StringSliceArg(args, "labels")
	if len(labels) == 0 {
		return common.ResultError("'labels' field is required")
	}
	messageIDs := common.StringSliceArg(args, "message_ids")
	if len(messageIDs) == 0 {
		messageIDs = common.StringSliceArg(args, "message_id")
	}
	if len(messageIDs) == 0 {
		return common.ResultError("message_id or message_ids is required")
	}

	payload := tables.MapStructure{"message_ids": messageIDs, "labels": labels}
	return common.RunGated(ctx, sc, "gmail_apply_labels", payload, common.ApprovalIDArg(args), func() (interface{}, error) {
		client, err := sc.GmailClient(ctx)
		if err != nil {
			return nil, err
		}
		applied, err := client.ApplyLabels(messageIDs, labels)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"applied": applied}, nil
	})
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	to, err := common.RequiredStringArg(args, "to")
	if err != nil {
		return common.ResultError("%v", err)
	}
	subject, err := common.RequiredStringArg(args, "subject")
	if err != nil {
		return common.ResultError("%v", err)
	}
	body, err := common.RequiredStringArg(args, "body")
	if err != nil {
		return common.ResultError("%v", err)
	}
	msg := &gmail.EmailMessage{
		To:      gmail.SplitAddresses(to),
		Cc:      gmail.SplitAddresses(common.StringArg(args, "cc")),
		Bcc:     gmail.SplitAddresses(common.StringArg(args, "bcc")),
		Subject: subject,
		Body:    body,
		IsHTML:  common.BoolArg(args, "is_html"),
	}

	payload := tables.MapStructure{"to": to, "subject": subject, "is_html": msg.IsHTML}
	return common.RunGated(ctx, sc, "gmail_send_email", payload, common.ApprovalIDArg(args), func() (interface{}, error) {
		client, err := sc.GmailClient(ctx)
		if err != nil {
			return nil, err
		}
		messageID, err := client.SendEmail(msg)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"message_id": messageID}, nil
	})
}
