package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client wraps the Gmail Users service.
type Client struct {
	svc *gmail.UsersService
}

// NewClient creates a Gmail client over an authenticated HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Client{svc: svc.Users}, nil
}

// Search lists messages matching the query and returns their metadata.
func (c *Client) Search(query string, limit int64) ([]*MessageSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	res, err := c.svc.Messages.List("me").Q(query).MaxResults(limit).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	summaries := make([]*MessageSummary, 0, len(res.Messages))
	for _, m := range res.Messages {
		detail, err := c.svc.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject", "Date").
			Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get message %s: %w", m.Id, err)
		}
		summary := &MessageSummary{
			ID:       detail.Id,
			ThreadID: detail.ThreadId,
			Snippet:  detail.Snippet,
		}
		if detail.Payload != nil {
			summary.From = headerValue(detail.Payload.Headers, "From")
			summary.Subject = headerValue(detail.Payload.Headers, "Subject")
			summary.Date = headerValue(detail.Payload.Headers, "Date")
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetMessage returns the full content of one message, preferring the
// plain text part.
func (c *Client) GetMessage(messageID string) (*Message, error) {
	detail, err := c.svc.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	msg := &Message{
		ID:       detail.Id,
		ThreadID: detail.ThreadId,
		Snippet:  detail.Snippet,
	}
	if detail.Payload != nil {
		msg.Text, msg.HTML = extractBodies(detail.Payload)
	}
	return msg, nil
}

// GetThread retrieves a full thread with all its messages.
func (c *Client) GetThread(threadID string) (*gmail.Thread, error) {
	thread, err := c.svc.Threads.Get("me", threadID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return thread, nil
}

// CreateDraft creates a draft, optionally attached to an existing
// thread. Drafts are the pre-approval artifact: nothing leaves the
// account until a send is approved.
func (c *Client) CreateDraft(to, subject, body, threadID string) (*Draft, error) {
	raw := buildRawMessage(&EmailMessage{
		To:      SplitAddresses(to),
		Subject: subject,
		Body:    body,
	})
	message := &gmail.Message{Raw: raw}
	if threadID != "" {
		message.ThreadId = threadID
	}
	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{Message: message}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	d := &Draft{ID: draft.Id}
	if draft.Message != nil {
		d.MessageID = draft.Message.Id
		d.ThreadID = draft.Message.ThreadId
	}
	return d, nil
}

// SendEmail sends a message and returns its id.
func (c *Client) SendEmail(msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}
	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: buildRawMessage(msg)}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// ApplyLabels adds the given labels to each message. Label names are
// resolved to ids first; unknown values pass through untouched so the
// API reports them.
func (c *Client) ApplyLabels(messageIDs, labels []string) ([]*LabelResult, error) {
	labelIDs, err := c.resolveLabelIDs(labels)
	if err != nil {
		return nil, err
	}
	results := make([]*LabelResult, 0, len(messageIDs))
	for _, id := range messageIDs {
		modified, err := c.svc.Messages.Modify("me", id, &gmail.ModifyMessageRequest{
			AddLabelIds: labelIDs,
		}).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to label message %s: %w", id, err)
		}
		results = append(results, &LabelResult{ID: modified.Id, LabelIDs: modified.LabelIds})
	}
	return results, nil
}

func (c *Client) resolveLabelIDs(labels []string) ([]string, error) {
	if len(labels) == 0 {
		return labels, nil
	}
	existing, err := c.svc.Labels.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	nameToID := make(map[string]string, len(existing.Labels))
	idSet := make(map[string]bool, len(existing.Labels))
	for _, l := range existing.Labels {
		nameToID[l.Name] = l.Id
		idSet[l.Id] = true
	}
	resolved := make([]string, 0, len(labels))
	for _, label := range labels {
		switch {
		case idSet[label]:
			resolved = append(resolved, label)
		case nameToID[label] != "":
			resolved = append(resolved, nameToID[label])
		default:
			resolved = append(resolved, label)
		}
	}
	return resolved, nil
}

// buildRawMessage renders an RFC 2822 message and encodes it the way
// the Gmail API expects.
func buildRawMessage(msg *EmailMessage) string {
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(strings.Join(msg.To, ", "))
	b.WriteString("\r\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: ")
		b.WriteString(strings.Join(msg.Cc, ", "))
		b.WriteString("\r\n")
	}
	if len(msg.Bcc) > 0 {
		b.WriteString("Bcc: ")
		b.WriteString(strings.Join(msg.Bcc, ", "))
		b.WriteString("\r\n")
	}
	b.WriteString("Subject: ")
	b.WriteString(encodeRFC2047(msg.Subject))
	b.WriteString("\r\n")
	if msg.IsHTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n\r\n")
	b.WriteString(msg.Body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// encodeRFC2047 encodes a header value when it contains non-ASCII
// characters, e.g. umlauts in subjects.
func encodeRFC2047(value string) string {
	for _, r := range value {
		if r > 127 {
			return mime.QEncoding.Encode("UTF-8", value)
		}
	}
	return value
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBodies walks a message payload and returns the first plain
// text and HTML bodies found.
func extractBodies(part *gmail.MessagePart) (text, html string) {
	if part.Body != nil && part.Body.Data != "" {
		// the API returns URL-safe base64, usually without padding
		decoded, err := base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			decoded, err = base64.URLEncoding.DecodeString(part.Body.Data)
		}
		if err == nil {
			switch {
			case strings.HasPrefix(part.MimeType, "text/plain"):
				return string(decoded), ""
			case strings.HasPrefix(part.MimeType, "text/html"):
				return "", string(decoded)
			}
		}
	}
	for _, p := range part.Parts {
		t, h := extractBodies(p)
		if text == "" {
			text = t
		}
		if html == "" {
			html = h
		}
		if text != "" && html != "" {
			break
		}
	}
	return text, html
}

// SplitAddresses splits a comma-separated address list, dropping
// empty entries.
func SplitAddresses(addresses string) []string {
	if addresses == "" {
		return nil
	}
	parts := strings.Split(addresses, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
