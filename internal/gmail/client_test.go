package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	return string(decoded)
}

func TestBuildRawMessage(t *testing.T) {
	msg := &EmailMessage{
		To:      []string{"a@example.com", "b@example.com"},
		Cc:      []string{"c@example.com"},
		Subject: "Status update",
		Body:    "All green.",
	}

	decoded := decodeRaw(t, buildRawMessage(msg))
	assert.Contains(t, decoded, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, decoded, "Cc: c@example.com\r\n")
	assert.NotContains(t, decoded, "Bcc:")
	assert.Contains(t, decoded, "Subject: Status update\r\n")
	assert.Contains(t, decoded, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	assert.True(t, strings.HasSuffix(decoded, "\r\n\r\nAll green."))
}

func TestBuildRawMessageHTML(t *testing.T) {
	msg := &EmailMessage{
		To:      []string{"a@example.com"},
		Subject: "Report",
		Body:    "<p>done</p>",
		IsHTML:  true,
	}

	decoded := decodeRaw(t, buildRawMessage(msg))
	assert.Contains(t, decoded, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
}

func TestEncodeRFC2047(t *testing.T) {
	assert.Equal(t, "plain subject", encodeRFC2047("plain subject"))

	encoded := encodeRFC2047("Grüße aus Köln")
	assert.True(t, strings.HasPrefix(encoded, "=?UTF-8?"))
}

func TestExtractBodiesMultipart(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("plain body"))},
			},
			{
				MimeType: "text/html",
				Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("<p>html body</p>"))},
			},
		},
	}

	text, html := extractBodies(part)
	assert.Equal(t, "plain body", text)
	assert.Equal(t, "<p>html body</p>", html)
}

func TestExtractBodiesSinglePart(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: base64.RawURLEncoding.EncodeToString([]byte("hello"))},
	}

	text, html := extractBodies(part)
	assert.Equal(t, "hello", text)
	assert.Empty(t, html)
}

func TestExtractBodiesPaddedEncoding(t *testing.T) {
	part := &gmail.MessagePart{
		MimeType: "text/plain",
		Body:     &gmail.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("padded body"))},
	}

	text, _ := extractBodies(part)
	assert.Equal(t, "padded body", text)
}

func TestSplitAddresses(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "single address",
			input:    "a@example.com",
			expected: []string{"a@example.com"},
		},
		{
			name:     "comma separated with whitespace",
			input:    " a@example.com , b@example.com ,",
			expected: []string{"a@example.com", "b@example.com"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitAddresses(tt.input))
		})
	}
}
