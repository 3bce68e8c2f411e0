// Package prompts provides MCP prompt templates for common assistant
// workflows built on the mail, calendar, and contact tools.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterPrompts registers the workflow prompts with the MCP server.
func RegisterPrompts(s *mcpserver.MCPServer) error {
	triagePrompt := mcp.NewPrompt("inbox_triage",
		mcp.WithPromptDescription("Triage the inbox: summarize unread mail and propose labels"),
		mcp.WithArgument("max_messages",
			mcp.ArgumentDescription("How many recent messages to review (default: 20)"),
		),
	)
	s.AddPrompt(triagePrompt, handleInboxTriage)

	meetingPrompt := mcp.NewPrompt("meeting_prep",
		mcp.WithPromptDescription("Prepare for a meeting: gather the event, related mail, and attendee context"),
		mcp.WithArgument("event_id",
			mcp.ArgumentDescription("The calendar event to prepare for"),
			mcp.RequiredArgument(),
		),
	)
	s.AddPrompt(meetingPrompt, handleMeetingPrep)

	followupPrompt := mcp.NewPrompt("email_followup",
		mcp.WithPromptDescription("Draft a follow-up for a thread that has gone quiet"),
		mcp.WithArgument("thread_id",
			mcp.ArgumentDescription("The thread to follow up on"),
			mcp.RequiredArgument(),
		),
	)
	s.AddPrompt(followupPrompt, handleEmailFollowup)

	reviewPrompt := mcp.NewPrompt("weekly_review",
		mcp.WithPromptDescription("Review the past week: meetings held, mail handled, and what needs attention"),
	)
	s.AddPrompt(reviewPrompt, handleWeeklyReview)

	return nil
}

func handleInboxTriage(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	maxMessages := request.Params.Arguments["max_messages"]
	if maxMessages == "" {
		maxMessages = "20"
	}
	text := fmt.Sprintf(`Triage my inbox.

1. Use gmail_search with query "in:inbox is:unread" and limit %s.
2. For anything that needs a closer look, use gmail_get_message.
3. Group the messages: needs a reply, needs an action, informational, can be archived.
4. Propose labels for each group. Do not apply them yet; applying labels requires my approval.
5. Finish with a short summary of what needs my attention first.`, maxMessages)
	return promptResult("Inbox triage workflow", text), nil
}

func handleMeetingPrep(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	eventID := request.Params.Arguments["event_id"]
	if eventID == "" {
		return nil, fmt.Errorf("event_id argument is required")
	}
	text := fmt.Sprintf(`Prepare me for the meeting with event id %s.

1. Start with meeting_brief for the event to get attendees, recent mail, and talking points.
2. Use contacts_search on each attendee to find who they are and where they work.
3. Pull the relevant threads from the brief with gmail_get_thread.
4. If an attendee's company is unfamiliar, use web_search for a quick briefing.
5. Summarize: what the meeting is about, who is in the room, open threads with them, and suggested talking points.`, eventID)
	return promptResult("Meeting preparation workflow", text), nil
}

func handleEmailFollowup(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	threadID := request.Params.Arguments["thread_id"]
	if threadID == "" {
		return nil, fmt.Errorf("thread_id argument is required")
	}
	text := fmt.Sprintf(`Help me follow up on thread %s.

1. Use gmail_get_thread to read the full conversation.
2. Identify what was promised, by whom, and what has gone unanswered.
3. Draft a polite follow-up with gmail_create_draft on the same thread.
4. Show me the draft. Sending it requires my approval.`, threadID)
	return promptResult("Email follow-up workflow", text), nil
}

func handleWeeklyReview(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := `Run my weekly review.

1. Use calendar_list_events for the past seven days and summarize the meetings held.
2. Use gmail_search with query "in:inbox newer_than:7d" to see what arrived.
3. Flag threads that still need a reply and meetings that need follow-up notes.
4. Use calendar_list_events for the coming week and call out conflicts or missing preparation.
5. End with a prioritized list of what to handle first.`
	return promptResult("Weekly review workflow", text), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
