package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attachehq/attache/internal/store/tables"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(nil, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.EnsureUsable())
	t.Cleanup(s.Close)
	return s
}

func TestSaveConnectionUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour).UTC()
	require.NoError(t, s.SaveConnection(ctx, "google", `{"access_token":"first"}`, []string{"scope.a"}, &expiry))
	require.NoError(t, s.SaveConnection(ctx, "google", `{"access_token":"second"}`, []string{"scope.a", "scope.b"}, nil))

	conn, err := s.ConnectionByProvider(ctx, "google")
	require.NoError(t, err)
	assert.Equal(t, `{"access_token":"second"}`, conn.Credential)
	assert.Equal(t, "scope.a,scope.b", conn.Scopes)
	assert.False(t, conn.Expiry.Valid)

	all, err := s.Connections(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConnectionByProviderNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.ConnectionByProvider(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizationRequestLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	expiresAt := time.Now().Add(10 * time.Minute)

	require.NoError(t, s.CreateAuthorizationRequest(ctx, "req-1", "google", "state-1", expiresAt))

	// the (provider, state) pair is unique
	err := s.CreateAuthorizationRequest(ctx, "req-2", "google", "state-1", expiresAt)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	byState, err := s.AuthorizationRequestByState(ctx, "google", "state-1")
	require.NoError(t, err)
	assert.Equal(t, "req-1", byState.ID)
	assert.Equal(t, AuthRequestPending, byState.Status)

	byID, err := s.AuthorizationRequestByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "state-1", byID.State)
}

func TestResolveAuthorizationRequestIsSingleUse(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAuthorizationRequest(ctx, "req-1", "google", "state-1", time.Now().Add(time.Minute)))

	ok, err := s.ResolveAuthorizationRequest(ctx, "req-1", AuthRequestApproved, "")
	require.NoError(t, err)
	assert.True(t, ok)

	// the transition away from pending only happens once
	ok, err = s.ResolveAuthorizationRequest(ctx, "req-1", AuthRequestError, "late callback")
	require.NoError(t, err)
	assert.False(t, ok)

	req, err := s.AuthorizationRequestByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, AuthRequestApproved, req.Status)
}

func TestResolveAuthorizationRequestStoresError(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateAuthorizationRequest(ctx, "req-1", "google", "state-1", time.Now().Add(time.Minute)))

	ok, err := s.ResolveAuthorizationRequest(ctx, "req-1", AuthRequestError, "exchange refused")
	require.NoError(t, err)
	assert.True(t, ok)

	req, err := s.AuthorizationRequestByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, AuthRequestError, req.Status)
	require.True(t, req.ErrorMessage.Valid)
	assert.Equal(t, "exchange refused", req.ErrorMessage.String)
}

func TestApprovalLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	payload := tables.MapStructure{"to": "a@example.com", "subject": "hello"}
	id, err := s.CreateApproval(ctx, "gmail_send_email", payload)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	rec, err := s.ApprovalByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ApprovalPending, rec.Status)
	assert.Equal(t, "gmail_send_email", rec.Action)
	assert.Equal(t, "a@example.com", rec.Payload["to"])
	assert.False(t, rec.ResolvedAt.Valid)

	resolved, err := s.ResolveApproval(ctx, id, ApprovalApproved)
	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, resolved.Status)
	assert.True(t, resolved.ResolvedAt.Valid)
	// resolution never touches the payload
	assert.Equal(t, "hello", resolved.Payload["subject"])
}

func TestResolveApprovalNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.ResolveApproval(context.Background(), 9999, ApprovalDenied)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentApprovalsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.CreateApproval(ctx, "calendar_create_event", tables.MapStructure{"title": "one"})
	require.NoError(t, err)
	second, err := s.CreateApproval(ctx, "calendar_create_event", tables.MapStructure{"title": "two"})
	require.NoError(t, err)

	recent, err := s.RecentApprovals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second, recent[0].ID)
	assert.Equal(t, first, recent[1].ID)
}

func TestAuditLogAppendAndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, action := range []string{"first", "second", "third"} {
		require.NoError(t, s.AppendAuditLog(ctx,
			action,
			tables.MapStructure{"action": action},
			tables.MapStructure{"ok": true},
		))
	}

	entries, err := s.RecentAuditLog(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Action)
	assert.Equal(t, "second", entries[1].Action)
	assert.Equal(t, true, entries[0].Result["ok"])
}
