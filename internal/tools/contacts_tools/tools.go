// Package contacts_tools exposes the contact tools. Searching and
// reading are ungated; creating or updating a contact requires an
// approval.
package contacts_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store/tables"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterContactsTools registers all contact-related tools with the
// MCP server.
func RegisterContactsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("contacts_search",
		mcp.WithDescription("Search contacts by name, email, or company"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("contacts_search", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(ctx, request, sc)
	}))

	getTool := mcp.NewTool("contacts_get",
		mcp.WithDescription("Get one contact by resource name"),
		mcp.WithString("resource_name",
			mcp.Required(),
			mcp.Description("The contact resource name (people/c...)"),
		),
	)
	s.AddTool(getTool, common.Instrumented("contacts_get", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGet(ctx, request, sc)
	}))

	upsertTool := mcp.NewTool("contacts_create_or_update",
		mcp.WithDescription("Create a contact, or update the existing contact with the same email (requires approval)"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Contact display name"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Contact email address, used as the upsert key"),
		),
		mcp.WithString("company",
			mcp.Description("Contact organization"),
		),
		mcp.WithNumber("approval_id",
			mcp.Description("Approval identifier from a prior call"),
		),
	)
	s.AddTool(upsertTool, common.Instrumented("contacts_create_or_update", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateOrUpdate(ctx, request, sc)
	}))

	return nil
}

func handleSearch(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, err := common.RequiredStringArg(args, "query")
	if err != nil {
		return common.ResultError("%v", err)
	}
	client, err := sc.ContactsClient(ctx)
	if err != nil {
		return common.ResultError("contacts not connected: %v", err)
	}
	contacts, err := client.Search(query, common.IntArg(args, "limit", 10))
	if err != nil {
		return common.ResultError("search failed: %v", err)
	}
	return common.ResultOK(map[string]interface{}{"contacts": contacts})
}

func handleGet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	resourceName, err := common.RequiredStringArg(request.GetArguments(), "resource_name")
	if err != nil {
		return common.ResultError("%v", err)
	}
	client, err := sc.ContactsClient(ctx)
	if err != nil {
		return common.ResultError("contacts not connected: %v", err)
	}
	contact, err := client.Get(resourceName)
	if err != nil {
		return common.ResultError("failed to get contact: %v", err)
	}
	return common.ResultOK(contact)
}

func handleCreateOrUpdate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, err := common.RequiredStringArg(args, "name")
	if err != nil {
		return common.ResultError("%v", err)
	}
	email, err := common.RequiredStringArg(args, "email")
	if err != nil {
		return common.ResultError("%v", err)
	}
	company := common.StringArg(args, "company")

	payload := tables.MapStructure{"name": name, "email": email, "company": company}
	return common.RunGated(ctx, sc, "contacts_create_or_update", payload, common.ApprovalIDArg(args), func() (interface{}, error) {
		client, err := sc.ContactsClient(ctx)
		if err != nil {
			return nil, err
		}
		contact, err := client.CreateOrUpdate(name, email, company)
		if err != nil {
			return nil, err
		}
		// keep the local mirror behind assistant://contacts current
		if _, err := sc.Store().SaveContactRecord(ctx, name, email, company, nil); err != nil {
			return nil, err
		}
		return contact, nil
	})
}
