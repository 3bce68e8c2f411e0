package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"WARN", slog.LevelWarn},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("below threshold")
	logger.Warn("at threshold")

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "at threshold")
}

func TestHelpersEmitSharedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := WithTool(WithProvider(New(&buf, "info"), "google"), "gmail_send_email")

	logger.Info("tool call",
		Operation("send"),
		Action("gmail_send_email"),
		Status("success"),
		Err(errors.New("boom")),
	)

	out := buf.String()
	assert.Contains(t, out, KeyProvider+"=google")
	assert.Contains(t, out, KeyTool+"=gmail_send_email")
	assert.Contains(t, out, KeyOperation+"=send")
	assert.Contains(t, out, KeyAction+"=gmail_send_email")
	assert.Contains(t, out, KeyStatus+"=success")
	assert.Contains(t, out, KeyError+"=boom")
}

func TestErrNilIsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	logger.Info("no failure", Err(nil))

	assert.NotContains(t, buf.String(), KeyError+"=")
}
