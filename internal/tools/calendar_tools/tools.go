// Package calendar_tools exposes the calendar tools. Listing and slot
// finding are read-only; creating, updating, and cancelling events
// require an approval.
package calendar_tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gcalendar "google.golang.org/api/calendar/v3"

	"github.com/attachehq/attache/internal/calendar"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store/tables"
	"github.com/attachehq/attache/internal/tools/common"
)

// RegisterCalendarTools registers all Calendar-related tools with the
// MCP server.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events in a time window, ordered by start"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Window start in RFC 3339 (e.g., 2024-06-01T00:00:00Z)"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Window end in RFC 3339"),
		),
	)
	s.AddTool(listEventsTool, common.Instrumented("calendar_list_events", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListEvents(ctx, request, sc)
	}))

	findFreeSlotsTool := mcp.NewTool("calendar_find_free_slots",
		mcp.WithDescription("Find free slots of a given duration within a time window"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Window start in RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Window end in RFC 3339"),
		),
		mcp.WithNumber("duration_minutes",
			mcp.Required(),
			mcp.Description("Minimum slot length in minutes"),
		),
	)
	s.AddTool(findFreeSlotsTool, common.Instrumented("calendar_find_free_slots", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleFindFreeSlots(ctx, request, sc)
	}))

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a calendar event (requires approval). No attendee notifications are sent."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Event start in RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Event end in RFC 3339"),
		),
		mcp.WithArray("attendees",
			mcp.Description("Attendee email addresses"),
		),
		mcp.WithNumber("approval_id",
			mcp.Description("Approval identifier from a prior call"),
		),
	)
	s.AddTool(createEventTool, common.Instrumented("calendar_create_event", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateEvent(ctx, request, sc)
	}))

	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update fields of an existing event (requires approval)"),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The event identifier"),
		),
		mcp.WithString("title",
			mcp.Description("New event title"),
		),
		mcp.WithString("start",
			mcp.Description("New start in RFC 3339"),
		),
		mcp.WithString("end",
			mcp.Description("New end in RFC 3339"),
		),
		mcp.WithNumber("approval_id",
			mcp.Description("Approval identifier from a prior call"),
		),
	)
	s.AddTool(updateEventTool, common.Instrumented("calendar_update_event", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateEvent(ctx, request, sc)
	}))

	cancelEventTool := mcp.NewTool("calendar_cancel_event",
		mcp.WithDescription("Cancel a calendar event (requires approval). No attendee notifications are sent."),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The event identifier"),
		),
		mcp.WithNumber("approval_id",
			mcp.Description("Approval identifier from a prior call"),
		),
	)
	s.AddTool(cancelEventTool, common.Instrumented("calendar_cancel_event", sc, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCancelEvent(ctx, request, sc)
	}))

	return nil
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	start, err := common.RequiredStringArg(args, "start")
	if err != nil {
		return common.ResultError("%v", err)
	}
	end, err := common.RequiredStringArg(args, "end")
	if err != nil {
		return common.ResultError("%v", err)
	}
	client, err := sc.CalendarClient(ctx)
	if err != nil {
		return common.ResultError("calendar not connected: %v", err)
	}
	events, err := client.ListEvents(start, end)
	if err != nil {
		return common.ResultError("failed to list events: %v", err)
	}
	return common.ResultOK(map[string]interface{}{"events": events})
}

func handleFindFreeSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	start, err := common.RequiredStringArg(args, "start")
	if err != nil {
		return common.ResultError("%v", err)
	}
	end, err := common.RequiredStringArg(args, "end")
	if err != nil {
		return common.ResultError("%v", err)
	}
	minutes := common.IntArg(args, "duration_minutes", 0)
	if minutes <= 0 {
		return common.ResultError("'duration_minutes' must be positive")
	}
	client, err := sc.CalendarClient(ctx)
	if err != nil {
		return common.ResultError("calendar not connected: %v", err)
	}
	busy, err := client.BusyIntervals(start, end)
	if err != nil {
		return common.ResultError("failed to query free/busy: %v", err)
	}
	slots, err := calendar.FreeSlots(busy, start, end, time.Duration(minutes)*time.Minute)
	if err != nil {
		return common.ResultError("failed to compute free slots: %v", err)
	}
	return common.ResultOK(map[string]interface{}{"slots": slots})
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	title, err := common.RequiredStringArg(args, "title")
	if err != nil {
		return common.ResultError("%v", err)
	}
	start, err := common.RequiredStringArg(args, "start")
	if err != nil {
		return common.ResultError("%v", err)
	}
	end, err := common.RequiredStringArg(args, "end")
	if err != nil {
		return common.ResultError("%v", err)
	}
	attendees := common.StringSliceArg(args, "attendees")

	payload := tables.MapStructure{"title": title, "start": start, "end": end, "attendees": attendees}
	return common.RunGated(ctx, sc, "calendar_create_event", payload, common.ApprovalIDArg(args), func() (interface{}, error) {
		client, err := sc.CalendarClient(ctx)
		if err != nil {
			return nil, err
		}
		return client.CreateEvent(title, start, end, attendees)
	})
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	eventID, err := common.RequiredStringArg(args, "event_id")
	if err != nil {
		return common.ResultError("%v", err)
	}
	changes := &gcalendar.Event{}
	payload := tables.MapStructure{"event_id": eventID}
	if title := common.StringArg(args, "title"); title != "" {
		changes.Summary = title
		payload["title"] = title
	}
	if start := common.StringArg(args, "start"); start != "" {
		changes.Start = &gcalendar.EventDateTime{DateTime: start}
		payload["start"] = start
	}
	if end := common.StringArg(args, "end"); end != "" {
		changes.End = &gcalendar.EventDateTime{DateTime: end}
		payload["end"] = end
	}
	if changes.Summary == "" && changes.Start == nil && changes.End == nil {
		return common.ResultError("at least one of title, start, end is required")
	}

	return common.RunGated(ctx, sc, "calendar_update_event", payload, common.ApprovalIDArg(args), func() (interface{}, error) {
		client, err := sc.CalendarClient(ctx)
		if err != nil {
			return nil, err
		}
		return client.UpdateEvent(eventID, changes)
	})
}

func handleCancelEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	eventID, err := common.RequiredStringArg(args, "event_id")
	if err != nil {
		return common.ResultError("%v", err)
	}

	payload := tables.MapStructure{"event_id": eventID}
	return common.RunGated(ctx, sc, "calendar_cancel_event", payload, common.ApprovalIDArg(args), func() (interface{}, error) {
		client, err := sc.CalendarClient(ctx)
		if err != nil {
			return nil, err
		}
		if err := client.CancelEvent(eventID); err != nil {
			return nil, err
		}
		return map[string]interface{}{"event_id": eventID, "cancelled": true}, nil
	})
}
