// Package assistant builds summaries and briefs on top of the mail
// and calendar clients, and keeps its own memory of what it produced.
package assistant

import (
	"context"
	"fmt"
	"strings"

	gcalendar "google.golang.org/api/calendar/v3"

	"github.com/attachehq/attache/internal/gmail"
	"github.com/attachehq/attache/internal/store/tables"
)

// summaryLimit caps the stored summary length in runes.
const summaryLimit = 400

// briefAttendeeLimit bounds how many attendees feed the mail query.
const briefAttendeeLimit = 3

// briefEmailLimit bounds how many recent messages a brief carries.
const briefEmailLimit = 5

// MailReader is the slice of the mail client the assistant reads
// through.
type MailReader interface {
	GetMessage(messageID string) (*gmail.Message, error)
	Search(query string, limit int64) ([]*gmail.MessageSummary, error)
}

// EventReader resolves calendar events by id.
type EventReader interface {
	GetEvent(eventID string) (*gcalendar.Event, error)
}

// NoteWriter persists assistant memory.
type NoteWriter interface {
	AddNote(ctx context.Context, source, summary string) (*tables.AssistantNoteTable, error)
}

// EmailSummary is the result of summarizing one message.
type EmailSummary struct {
	MessageID string `json:"message_id"`
	Summary   string `json:"summary"`
	NoteID    int64  `json:"note_id"`
}

// MeetingBrief is the prepared context for an upcoming event.
type MeetingBrief struct {
	EventID       string                  `json:"event_id"`
	Attendees     []string                `json:"attendees"`
	Purpose       string                  `json:"purpose,omitempty"`
	RecentEmails  []*gmail.MessageSummary `json:"recent_emails"`
	TalkingPoints []string                `json:"talking_points"`
}

// DraftEmail is a generated reply draft. Nothing here is ever sent;
// sending goes through the gated mail tools.
type DraftEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Tone    string `json:"tone,omitempty"`
}

// SummarizeEmail condenses one message and stores the summary as an
// assistant note.
func SummarizeEmail(ctx context.Context, mail MailReader, notes NoteWriter, messageID string) (*EmailSummary, error) {
	msg, err := mail.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	text := msg.Text
	if text == "" {
		text = msg.Snippet
	}
	summary := condense(text, summaryLimit)

	note, err := notes.AddNote(ctx, "gmail:"+messageID, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to store note: %w", err)
	}
	return &EmailSummary{
		MessageID: messageID,
		Summary:   summary,
		NoteID:    note.ID,
	}, nil
}

// BuildMeetingBrief gathers the event, recent mail with its attendees,
// and suggested talking points.
func BuildMeetingBrief(events EventReader, mail MailReader, eventID string) (*MeetingBrief, error) {
	event, err := events.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	var attendees []string
	for _, att := range event.Attendees {
		if att.Email != "" {
			attendees = append(attendees, att.Email)
		}
	}

	brief := &MeetingBrief{
		EventID:   eventID,
		Attendees: attendees,
		Purpose:   event.Summary,
	}
	if len(attendees) > 0 {
		// mail context is best-effort; the brief stands without it
		if recent, err := mail.Search(attendeeQuery(attendees), briefEmailLimit); err == nil {
			brief.RecentEmails = recent
		}
	}
	if event.Summary != "" {
		brief.TalkingPoints = append(brief.TalkingPoints, "Clarify outcomes for "+event.Summary)
	}
	if len(attendees) > 0 {
		brief.TalkingPoints = append(brief.TalkingPoints, "Align on next steps and ownership")
	}
	return brief, nil
}

// ComposeReply generates a reply draft in the given tone. It never
// touches the account.
func ComposeReply(contextText, tone string) *DraftEmail {
	if tone == "" {
		tone = "professional"
	}
	body := fmt.Sprintf("Thanks for the update.\n\n%s\n\nLet me know the next steps.\n",
		strings.TrimSpace(contextText))
	return &DraftEmail{Subject: "Re:", Body: body, Tone: tone}
}

func attendeeQuery(attendees []string) string {
	n := len(attendees)
	if n > briefAttendeeLimit {
		n = briefAttendeeLimit
	}
	parts := make([]string, 0, n)
	for _, email := range attendees[:n] {
		parts = append(parts, fmt.Sprintf("from:%s OR to:%s", email, email))
	}
	return strings.Join(parts, " OR ")
}

// condense collapses whitespace and truncates to limit runes.
func condense(text string, limit int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	runes := []rune(cleaned)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return cleaned
}
