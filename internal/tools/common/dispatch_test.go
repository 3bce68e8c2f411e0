package common

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attachehq/attache/internal/approval"
	"github.com/attachehq/attache/internal/audit"
	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/config"
	"github.com/attachehq/attache/internal/server"
	"github.com/attachehq/attache/internal/store"
	"github.com/attachehq/attache/internal/store/tables"
)

func testContext(t *testing.T) (*server.ServerContext, *store.Store) {
	t.Helper()
	s, err := store.New(nil, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.EnsureUsable())
	t.Cleanup(s.Close)

	sc := server.NewServerContext(context.Background(), config.Settings{}, nil,
		s,
		approval.NewGate(nil, s),
		audit.NewRecorder(nil, s),
		authflow.NewManager(nil, s, 10*time.Minute),
		nil, nil)
	t.Cleanup(sc.Shutdown)
	return sc, s
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &body))
	return body
}

func TestRunGatedWithoutApprovalRefuses(t *testing.T) {
	sc, s := testContext(t)
	executed := false

	result, err := RunGated(context.Background(), sc, "gmail_send_email",
		tables.MapStructure{"to": "a@example.com"}, nil,
		func() (interface{}, error) {
			executed = true
			return nil, nil
		})
	require.NoError(t, err)
	assert.False(t, executed)

	body := decodeResult(t, result)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, approval.StatusRequired, body["status"])
	assert.Equal(t, "approval_required", body["error"])
	assert.NotNil(t, body["approval_id"])

	// refusals leave no audit trace
	entries, err := s.RecentAuditLog(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunGatedApprovedExecutesAndAudits(t *testing.T) {
	sc, s := testContext(t)
	ctx := context.Background()

	id, err := s.CreateApproval(ctx, "gmail_send_email", tables.MapStructure{"to": "a@example.com"})
	require.NoError(t, err)
	_, err = sc.Gate().Resolve(ctx, id, store.ApprovalApproved)
	require.NoError(t, err)

	result, err := RunGated(ctx, sc, "gmail_send_email",
		tables.MapStructure{"to": "a@example.com"}, &id,
		func() (interface{}, error) {
			return map[string]interface{}{"message_id": "m-1"}, nil
		})
	require.NoError(t, err)

	body := decodeResult(t, result)
	assert.Equal(t, true, body["ok"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "m-1", data["message_id"])

	entries, err := s.RecentAuditLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "gmail_send_email", entries[0].Action)
	assert.Equal(t, "m-1", entries[0].Result["message_id"])
}

func TestRunGatedDeniedStaysBlocked(t *testing.T) {
	sc, s := testContext(t)
	ctx := context.Background()

	id, err := s.CreateApproval(ctx, "calendar_cancel_event", tables.MapStructure{"event_id": "e-1"})
	require.NoError(t, err)
	_, err = sc.Gate().Resolve(ctx, id, store.ApprovalDenied)
	require.NoError(t, err)

	executed := false
	result, err := RunGated(ctx, sc, "calendar_cancel_event",
		tables.MapStructure{"event_id": "e-1"}, &id,
		func() (interface{}, error) {
			executed = true
			return nil, nil
		})
	require.NoError(t, err)
	assert.False(t, executed)

	body := decodeResult(t, result)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "approval_denied", body["status"])
}

func TestRunGatedActionFailure(t *testing.T) {
	sc, s := testContext(t)
	ctx := context.Background()

	id, err := s.CreateApproval(ctx, "gmail_send_email", tables.MapStructure{})
	require.NoError(t, err)
	_, err = sc.Gate().Resolve(ctx, id, store.ApprovalApproved)
	require.NoError(t, err)

	result, err := RunGated(ctx, sc, "gmail_send_email", tables.MapStructure{}, &id,
		func() (interface{}, error) {
			return nil, errors.New("smtp unreachable")
		})
	require.NoError(t, err)
	assert.True(t, result.IsError)

	// failed actions are not audited as executed
	entries, err := s.RecentAuditLog(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStringSliceArg(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected []string
	}{
		{
			name:     "single string",
			args:     map[string]interface{}{"labels": "urgent"},
			expected: []string{"urgent"},
		},
		{
			name:     "string array",
			args:     map[string]interface{}{"labels": []interface{}{"urgent", "work"}},
			expected: []string{"urgent", "work"},
		},
		{
			name:     "absent key",
			args:     map[string]interface{}{},
			expected: nil,
		},
		{
			name:     "non-string entries are dropped",
			args:     map[string]interface{}{"labels": []interface{}{"urgent", 42}},
			expected: []string{"urgent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StringSliceArg(tt.args, "labels"))
		})
	}
}

func TestApprovalIDArg(t *testing.T) {
	assert.Nil(t, ApprovalIDArg(map[string]interface{}{}))

	// JSON numbers arrive as float64
	id := ApprovalIDArg(map[string]interface{}{"approval_id": float64(7)})
	require.NotNil(t, id)
	assert.Equal(t, int64(7), *id)
}

func TestIntArgFallback(t *testing.T) {
	assert.Equal(t, int64(10), IntArg(map[string]interface{}{}, "limit", 10))
	assert.Equal(t, int64(3), IntArg(map[string]interface{}{"limit": float64(3)}, "limit", 10))
}

func TestAsMap(t *testing.T) {
	type record struct {
		ID string `json:"id"`
	}

	m := AsMap(&record{ID: "r-1"})
	assert.Equal(t, "r-1", m["id"])

	wrapped := AsMap([]string{"a", "b"})
	assert.Equal(t, []interface{}{"a", "b"}, wrapped["value"])

	assert.Empty(t, AsMap(nil))
}
