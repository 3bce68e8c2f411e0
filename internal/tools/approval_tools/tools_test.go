package approval_tools

import (
	"context"
	"encoding/json"
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

func testContext(t *testing.T) *server.ServerContext {
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
	return sc
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
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

func TestListClampsNonPositiveLimit(t *testing.T) {
	sc := testContext(t)
	ctx := context.Background()

	_, err := sc.Gate().EnsureApproval(ctx, "gmail_send_email",
		tables.MapStructure{"to": "a@example.com"}, nil)
	require.NoError(t, err)

	// zero and negative limits fall back to the default instead of
	// wrapping around in the uint64 conversion
	for _, limit := range []float64{0, -5} {
		result, err := handleList(ctx, callRequest(map[string]interface{}{"limit": limit}), sc)
		require.NoError(t, err)
		require.False(t, result.IsError)

		body := decodeResult(t, result)
		assert.Equal(t, true, body["ok"])
		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		approvals, ok := data["approvals"].([]interface{})
		require.True(t, ok)
		assert.Len(t, approvals, 1)
	}
}

func TestListHonorsExplicitLimit(t *testing.T) {
	sc := testContext(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := sc.Gate().EnsureApproval(ctx, "calendar_create_event",
			tables.MapStructure{"title": "sync"}, nil)
		require.NoError(t, err)
	}

	result, err := handleList(ctx, callRequest(map[string]interface{}{"limit": float64(2)}), sc)
	require.NoError(t, err)
	require.False(t, result.IsError)

	data := decodeResult(t, result)["data"].(map[string]interface{})
	approvals := data["approvals"].([]interface{})
	assert.Len(t, approvals, 2)
}
