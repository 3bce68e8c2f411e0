// Package resources provides MCP resources for exposing server state.
// Resources are read-only data sources that MCP clients can fetch:
// connection status, recent approvals, and the audit trail.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/attachehq/attache/internal/server"
)

const recentLimit = 50

// RegisterStateResources registers the connection, approval, and audit
// resources.
func RegisterStateResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	connectionsResource := mcp.NewResource(
		"connections://status",
		"Connection Status",
		mcp.WithResourceDescription("Status of every provider connection, including token expiry"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(connectionsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConnections(ctx, request, sc)
	})

	approvalsResource := mcp.NewResource(
		"approvals://recent",
		"Recent Approvals",
		mcp.WithResourceDescription("Most recent approval requests and their outcomes"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(approvalsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleApprovals(ctx, request, sc)
	})

	auditResource := mcp.NewResource(
		"audit://recent",
		"Recent Audit Log",
		mcp.WithResourceDescription("Most recent executed actions, newest first"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(auditResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAudit(ctx, request, sc)
	})

	notesResource := mcp.NewResource(
		"assistant://notes",
		"Assistant Notes",
		mcp.WithResourceDescription("Summaries the assistant has produced and remembered"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(notesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleNotes(ctx, request, sc)
	})

	companiesResource := mcp.NewResource(
		"assistant://companies",
		"Known Companies",
		mcp.WithResourceDescription("Companies the assistant keeps local records of"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(companiesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCompanies(ctx, request, sc)
	})

	contactsResource := mcp.NewResource(
		"assistant://contacts",
		"Known Contacts",
		mcp.WithResourceDescription("The assistant's local mirror of contacts"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(contactsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleContactRecords(ctx, request, sc)
	})

	todayResource := mcp.NewResource(
		"calendar://today",
		"Today's Calendar",
		mcp.WithResourceDescription("Calendar events for the current day"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(todayResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendarToday(ctx, request, sc)
	})

	unreadResource := mcp.NewResource(
		"gmail://unread",
		"Unread Mail",
		mcp.WithResourceDescription("Metadata of recent unread inbox messages"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(unreadResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleGmailUnread(ctx, request, sc)
	})

	return nil
}

func handleConnections(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	statuses, err := sc.Flows().Statuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read connection status: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"connections": statuses})
}

func handleApprovals(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	approvals, err := sc.Gate().Recent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"approvals": approvals})
}

func handleAudit(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	entries, err := sc.Recorder().Recent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"entries": entries})
}

func handleNotes(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	notes, err := sc.Store().RecentNotes(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"notes": notes})
}

func handleCompanies(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	companies, err := sc.Store().Companies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"companies": companies})
}

func handleContactRecords(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	records, err := sc.Store().ContactRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact records: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"contacts": records})
}

func handleCalendarToday(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.CalendarClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("calendar unavailable: %w", err)
	}
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	events, err := client.ListEvents(
		dayStart.Format(time.RFC3339),
		dayStart.Add(24*time.Hour).Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's events: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"events": events})
}

func handleGmailUnread(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.GmailClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gmail unavailable: %w", err)
	}
	messages, err := client.Search("in:inbox is:unread", 10)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread mail: %w", err)
	}
	return jsonContents(request, map[string]interface{}{"messages": messages})
}

func jsonContents(request mcp.ReadResourceRequest, data interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
