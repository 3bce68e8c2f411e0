package gmail

// MessageSummary is the metadata view returned by Search.
type MessageSummary struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	From     string `json:"from,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Date     string `json:"date,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// Message is the full content view returned by GetMessage. Plain text
// is preferred; HTML is carried alongside when present.
type Message struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Snippet  string `json:"snippet,omitempty"`
	Text     string `json:"text,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// Draft identifies a created draft and its message.
type Draft struct {
	ID        string `json:"id"`
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// EmailMessage describes an outgoing email.
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool
}

// LabelResult reports the labels on one message after modification.
type LabelResult struct {
	ID       string   `json:"id"`
	LabelIDs []string `json:"label_ids"`
}
