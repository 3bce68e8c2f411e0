// Package web_tools exposes the web research tools. Both are
// read-only and never touch connected accounts, so they run ungated.
package web_tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterWebTools registers the web search and fetch tools with the
// MCP server.
func RegisterWebTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	searchTool := mcp.NewTool("web_search",
		mcp.WithDescription("Search the web and return result titles, links, and snippets"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 5)"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("web_search", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSearch(request, sc)
	}))

	fetchTool := mcp.NewTool("web_fetch",
		mcp.WithDescription("Fetch a URL and return its readable text"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to fetch"),
		),
	)
	s.AddTool(fetchTool, common.Instrumented("web_fetch", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleFetch(request, sc)
	}))

	return nil
}

func handleSearch(request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query, err := common.RequiredStringArg(args, "query")
	if err != nil {
		return common.ResultError("%v", err)
	}
	results, err := sc.Web().Search(query, int(common.IntArg(args, "limit", 5)))
	if err != nil {
		return common.ResultError("search failed: %v", err)
	}
	return common.ResultOK(map[string]interface{}{"results": results})
}

func handleFetch(request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	pageURL, err := common.RequiredStringArg(request.GetArguments(), "url")
	if err != nil {
		return common.ResultError("%v", err)
	}
	page, err := sc.Web().Fetch(pageURL)
	if err != nil {
		return common.ResultError("fetch failed: %v", err)
	}
	return common.ResultOK(page)
}
