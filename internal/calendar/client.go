package calendar

import (
	"context"
	"fmt"
	"net/http"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// primaryCalendar is the calendar all operations target.
const primaryCalendar = "primary"

// Client wraps the Google Calendar service.
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client over an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ListEvents returns the events between start and end (RFC 3339),
// expanded to single instances, ordered by start time.
func (c *Client) ListEvents(start, end string) ([]*calendar.Event, error) {
	events, err := c.svc.Events.List(primaryCalendar).
		TimeMin(start).
		TimeMax(end).
		SingleEvents(true).
		OrderBy("startTime").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events.Items, nil
}

// BusyIntervals queries free/busy for the primary calendar within the
// window (RFC 3339 bounds).
func (c *Client) BusyIntervals(windowStart, windowEnd string) ([]*calendar.TimePeriod, error) {
	res, err := c.svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: windowStart,
		TimeMax: windowEnd,
		Items:   []*calendar.FreeBusyRequestItem{{Id: primaryCalendar}},
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query free/busy: %w", err)
	}
	cal, ok := res.Calendars[primaryCalendar]
	if !ok {
		return nil, nil
	}
	return cal.Busy, nil
}

// CreateEvent inserts an event without sending attendee notifications.
func (c *Client) CreateEvent(title, start, end string, attendees []string) (*calendar.Event, error) {
	event := &calendar.Event{
		Summary: title,
		Start:   &calendar.EventDateTime{DateTime: start},
		End:     &calendar.EventDateTime{DateTime: end},
	}
	for _, email := range attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}
	created, err := c.svc.Events.Insert(primaryCalendar, event).SendUpdates("none").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// UpdateEvent patches selected fields of an existing event.
func (c *Client) UpdateEvent(eventID string, changes *calendar.Event) (*calendar.Event, error) {
	updated, err := c.svc.Events.Patch(primaryCalendar, eventID, changes).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	return updated, nil
}

// CancelEvent deletes an event without sending attendee notifications.
func (c *Client) CancelEvent(eventID string) error {
	if err := c.svc.Events.Delete(primaryCalendar, eventID).SendUpdates("none").Do(); err != nil {
		return fmt.Errorf("failed to cancel event %s: %w", eventID, err)
	}
	return nil
}

// GetEvent fetches one event.
func (c *Client) GetEvent(eventID string) (*calendar.Event, error) {
	event, err := c.svc.Events.Get(primaryCalendar, eventID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", eventID, err)
	}
	return event, nil
}
