package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/attachehq/attache/internal/approval"
	"github.com/attachehq/attache/internal/audit"
	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/config"
	"github.com/attachehq/attache/internal/store"
)

type stubProvider struct {
	exchangeErr error
}

func (p *stubProvider) Name() string     { return "google" }
func (p *stubProvider) Scopes() []string { return []string{"scope.a"} }
func (p *stubProvider) AuthorizationURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + state
}
func (p *stubProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access", Expiry: time.Now().Add(time.Hour)}, nil
}
func (p *stubProvider) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	return token, nil
}

func testServer(t *testing.T, p authflow.Provider) (*ServerContext, http.Handler, *store.Store) {
	t.Helper()
	s, err := store.New(nil, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.EnsureUsable())
	t.Cleanup(s.Close)

	flows := authflow.NewManager(nil, s, 10*time.Minute, p)
	sc := NewServerContext(context.Background(), config.Settings{},
		nil, s, approval.NewGate(nil, s), audit.NewRecorder(nil, s), flows, nil, nil)
	t.Cleanup(sc.Shutdown)

	return sc, NewHTTPServer(sc, "127.0.0.1:0").Handler(), s
}

func TestLivenessEndpoint(t *testing.T) {
	_, handler, _ := testServer(t, &stubProvider{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestReadinessEndpoint(t *testing.T) {
	_, handler, _ := testServer(t, &stubProvider{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Checks["store"])
}

func TestReadinessDuringShutdown(t *testing.T) {
	sc, handler, _ := testServer(t, &stubProvider{})
	sc.Shutdown()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCallbackRequiresCodeAndState(t *testing.T) {
	_, handler, _ := testServer(t, &stubProvider{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCallbackUnknownState(t *testing.T) {
	_, handler, _ := testServer(t, &stubProvider{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=abc&state=forged", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization failed")
}

func TestCallbackSuccess(t *testing.T) {
	sc, handler, s := testServer(t, &stubProvider{})
	ctx := context.Background()

	result, err := sc.Flows().Begin(ctx, "google")
	require.NoError(t, err)
	req, err := s.AuthorizationRequestByID(ctx, result.RequestID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/oauth/google/callback?code=abc&state="+req.State, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authorization complete")

	status, err := sc.Flows().PollStatus(ctx, result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, store.AuthRequestApproved, status.Status)
}

func TestCallbackExchangeFailureIsBadGateway(t *testing.T) {
	sc, handler, s := testServer(t, &stubProvider{exchangeErr: assert.AnError})
	ctx := context.Background()

	result, err := sc.Flows().Begin(ctx, "google")
	require.NoError(t, err)
	req, err := s.AuthorizationRequestByID(ctx, result.RequestID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/oauth/google/callback?code=abc&state="+req.State, nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
