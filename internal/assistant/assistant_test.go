package assistant

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcalendar "google.golang.org/api/calendar/v3"

	"github.com/attachehq/attache/internal/gmail"
	"github.com/attachehq/attache/internal/store"
)

type fakeMail struct {
	message    *gmail.Message
	messageErr error
	summaries  []*gmail.MessageSummary
	searchErr  error
	lastQuery  string
	lastLimit  int64
}

func (f *fakeMail) GetMessage(messageID string) (*gmail.Message, error) {
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return f.message, nil
}

func (f *fakeMail) Search(query string, limit int64) ([]*gmail.MessageSummary, error) {
	f.lastQuery = query
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.summaries, nil
}

type fakeEvents struct {
	event *gcalendar.Event
	err   error
}

func (f *fakeEvents) GetEvent(eventID string) (*gcalendar.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(nil, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.EnsureUsable())
	t.Cleanup(s.Close)
	return s
}

func TestSummarizeEmailStoresNote(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	mail := &fakeMail{message: &gmail.Message{
		ID:   "m1",
		Text: "  The quarterly numbers\n\n  look   fine.  ",
	}}

	summary, err := SummarizeEmail(ctx, mail, s, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", summary.MessageID)
	assert.Equal(t, "The quarterly numbers look fine.", summary.Summary)
	assert.Greater(t, summary.NoteID, int64(0))

	notes, err := s.RecentNotes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "gmail:m1", notes[0].Source)
	assert.Equal(t, summary.Summary, notes[0].Summary)
}

func TestSummarizeEmailFallsBackToSnippet(t *testing.T) {
	s := testStore(t)
	mail := &fakeMail{message: &gmail.Message{
		ID:      "m2",
		Snippet: "short snippet only",
	}}

	summary, err := SummarizeEmail(context.Background(), mail, s, "m2")
	require.NoError(t, err)
	assert.Equal(t, "short snippet only", summary.Summary)
}

func TestSummarizeEmailTruncatesLongBodies(t *testing.T) {
	s := testStore(t)
	mail := &fakeMail{message: &gmail.Message{
		ID:   "m3",
		Text: strings.Repeat("word ", 200),
	}}

	summary, err := SummarizeEmail(context.Background(), mail, s, "m3")
	require.NoError(t, err)
	assert.Len(t, []rune(summary.Summary), summaryLimit)
}

func TestBuildMeetingBrief(t *testing.T) {
	events := &fakeEvents{event: &gcalendar.Event{
		Summary: "Roadmap review",
		Attendees: []*gcalendar.EventAttendee{
			{Email: "a@example.com"},
			{DisplayName: "room booking"},
			{Email: "b@example.com"},
		},
	}}
	mail := &fakeMail{summaries: []*gmail.MessageSummary{
		{ID: "m1", Subject: "Roadmap draft"},
	}}

	brief, err := BuildMeetingBrief(events, mail, "ev1")
	require.NoError(t, err)
	assert.Equal(t, "ev1", brief.EventID)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, brief.Attendees)
	assert.Equal(t, "Roadmap review", brief.Purpose)
	require.Len(t, brief.RecentEmails, 1)
	assert.Equal(t, "Roadmap draft", brief.RecentEmails[0].Subject)

	assert.Equal(t, "from:a@example.com OR to:a@example.com OR from:b@example.com OR to:b@example.com", mail.lastQuery)
	assert.Equal(t, int64(briefEmailLimit), mail.lastLimit)
	assert.Equal(t, []string{
		"Clarify outcomes for Roadmap review",
		"Align on next steps and ownership",
	}, brief.TalkingPoints)
}

func TestBuildMeetingBriefMailFailureDegrades(t *testing.T) {
	events := &fakeEvents{event: &gcalendar.Event{
		Summary:   "1:1",
		Attendees: []*gcalendar.EventAttendee{{Email: "a@example.com"}},
	}}
	mail := &fakeMail{searchErr: assert.AnError}

	brief, err := BuildMeetingBrief(events, mail, "ev2")
	require.NoError(t, err)
	assert.Empty(t, brief.RecentEmails)
	assert.NotEmpty(t, brief.TalkingPoints)
}

func TestBuildMeetingBriefBoundsAttendeeQuery(t *testing.T) {
	attendees := make([]*gcalendar.EventAttendee, 0, 5)
	for _, email := range []string{"a@x", "b@x", "c@x", "d@x", "e@x"} {
		attendees = append(attendees, &gcalendar.EventAttendee{Email: email})
	}
	events := &fakeEvents{event: &gcalendar.Event{Attendees: attendees}}
	mail := &fakeMail{}

	brief, err := BuildMeetingBrief(events, mail, "ev3")
	require.NoError(t, err)
	assert.Len(t, brief.Attendees, 5)
	assert.Contains(t, mail.lastQuery, "from:c@x")
	assert.NotContains(t, mail.lastQuery, "from:d@x")
}

func TestBuildMeetingBriefEventFailure(t *testing.T) {
	events := &fakeEvents{err: assert.AnError}

	_, err := BuildMeetingBrief(events, &fakeMail{}, "missing")
	assert.Error(t, err)
}

func TestComposeReply(t *testing.T) {
	draft := ComposeReply("  We agreed to ship Friday.  ", "")
	assert.Equal(t, "Re:", draft.Subject)
	assert.Equal(t, "professional", draft.Tone)
	assert.Contains(t, draft.Body, "We agreed to ship Friday.")
	assert.True(t, strings.HasPrefix(draft.Body, "Thanks for the update.\n\n"))
	assert.True(t, strings.HasSuffix(draft.Body, "Let me know the next steps.\n"))

	casual := ComposeReply("sounds good", "casual")
	assert.Equal(t, "casual", casual.Tone)
}
