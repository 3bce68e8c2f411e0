// Package authflow orchestrates the two-phase OAuth connection
// lifecycle: begin returns immediately with an authorization URL, the
// callback arrives later on a separate listener, and poll lets the
// agent check completion without blocking on human input.
package authflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/attachehq/attache/internal/logging"
	"github.com/attachehq/attache/internal/store"
)

// Provider is the opaque authorization-provider collaborator. It knows
// how to build an authorization URL and how to trade codes and refresh
// tokens for credentials; the wire protocol is its business.
type Provider interface {
	Name() string
	Scopes() []string
	AuthorizationURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// BeginResult is returned by Begin.
type BeginResult struct {
	AuthorizationURL string    `json:"authorization_url"`
	RequestID        string    `json:"request_id"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// RequestStatus is returned by PollStatus.
type RequestStatus struct {
	RequestID   string `json:"request_id"`
	Status      string `json:"status"`
	ErrorDetail string `json:"error_detail,omitempty"`
}

// StatusNotFound is reported by PollStatus for unknown request ids.
const StatusNotFound = "not_found"

// Manager drives authorization requests and connection credentials.
// It holds no state of its own beyond the store; every decision is
// derived fresh per call, so one Manager is shared by all callers.
type Manager struct {
	log       *slog.Logger
	store     *store.Store
	ttl       time.Duration
	now       func() time.Time
	providers map[string]Provider

	// serializes refresh-then-persist per provider so two concurrent
	// refreshes cannot overwrite each other's newer token
	refreshMu sync.Mutex
	refresh   map[string]*sync.Mutex
}

// NewManager creates a Manager over the given store and providers.
func NewManager(logger *slog.Logger, s *store.Store, ttl time.Duration, providers ...Provider) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	m := &Manager{
		log:       logger,
		store:     s,
		ttl:       ttl,
		now:       time.Now,
		providers: make(map[string]Provider, len(providers)),
		refresh:   make(map[string]*sync.Mutex),
	}
	for _, p := range providers {
		m.providers[p.Name()] = p
	}
	return m
}

// Begin starts an authorization flow for the provider. It persists a
// pending request with a deadline and returns the URL the human must
// visit; the agent keeps working and polls for completion.
func (m *Manager) Begin(ctx context.Context, provider string) (*BeginResult, error) {
	p, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, provider)
	}

	state, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	expiresAt := m.now().Add(m.ttl).UTC()

	if err := m.store.CreateAuthorizationRequest(ctx, requestID, provider, state, expiresAt); err != nil {
		return nil, fmt.Errorf("persisting authorization request: %w", err)
	}

	logging.WithProvider(m.log, provider).Info("authorization flow started",
		logging.Operation("begin"),
		"request_id", requestID,
		"expires_at", expiresAt,
	)
	return &BeginResult{
		AuthorizationURL: p.AuthorizationURL(state),
		RequestID:        requestID,
		ExpiresAt:        expiresAt,
	}, nil
}

// HandleCallback resolves the authorization request bound to the state
// token. The state is single-use: once a request left pending, a later
// callback with the same state fails with ErrInvalidState instead of
// re-running the exchange.
func (m *Manager) HandleCallback(ctx context.Context, provider, code, state string) (string, error) {
	p, ok := m.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, provider)
	}

	req, err := m.store.AuthorizationRequestByState(ctx, provider, state)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidState
		}
		return "", err
	}
	if req.Status != store.AuthRequestPending {
		return req.ID, ErrInvalidState
	}
	if m.now().After(req.ExpiresAt) {
		if _, err := m.store.ResolveAuthorizationRequest(ctx, req.ID, store.AuthRequestExpired, ""); err != nil {
			return req.ID, err
		}
		return req.ID, ErrStateExpired
	}

	token, err := p.Exchange(ctx, code)
	if err != nil {
		perr := &ProviderError{Op: "exchange", Err: err}
		// keep the failure reason on the row for diagnostics
		if _, rerr := m.store.ResolveAuthorizationRequest(ctx, req.ID, store.AuthRequestError, err.Error()); rerr != nil {
			return req.ID, rerr
		}
		logging.WithProvider(m.log, provider).Warn("token exchange failed",
			logging.Operation("callback"), "request_id", req.ID, logging.Err(err))
		return req.ID, perr
	}

	if err := m.persistToken(ctx, p, token); err != nil {
		return req.ID, err
	}
	ok, err = m.store.ResolveAuthorizationRequest(ctx, req.ID, store.AuthRequestApproved, "")
	if err != nil {
		return req.ID, err
	}
	if !ok {
		// a concurrent callback won the transition
		return req.ID, ErrInvalidState
	}

	logging.WithProvider(m.log, provider).Info("authorization flow completed",
		logging.Operation("callback"), "request_id", req.ID)
	return req.ID, nil
}

// PollStatus reports the current status of an authorization request,
// applying the same lazy expiry check as the callback path. Unknown
// ids are a soft not_found, not an error.
func (m *Manager) PollStatus(ctx context.Context, requestID string) (*RequestStatus, error) {
	req, err := m.store.AuthorizationRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &RequestStatus{RequestID: requestID, Status: StatusNotFound}, nil
		}
		return nil, err
	}

	status := req.Status
	if status == store.AuthRequestPending && m.now().After(req.ExpiresAt) {
		if _, err := m.store.ResolveAuthorizationRequest(ctx, req.ID, store.AuthRequestExpired, ""); err != nil {
			return nil, err
		}
		status = store.AuthRequestExpired
	}

	rs := &RequestStatus{RequestID: req.ID, Status: status}
	if req.ErrorMessage.Valid {
		rs.ErrorDetail = req.ErrorMessage.String
	}
	return rs, nil
}

// LiveCredential returns a usable credential for the provider,
// refreshing and persisting it first when the stored one has expired.
// Returns ErrNoConnection when the provider was never authorized.
func (m *Manager) LiveCredential(ctx context.Context, provider string) (*oauth2.Token, error) {
	p, ok := m.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, provider)
	}

	token, err := m.loadToken(ctx, provider)
	if err != nil {
		return nil, err
	}
	if tokenUsable(token, m.now()) {
		return token, nil
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: credential expired and no refresh token stored", ErrRefreshFailed)
	}

	mu := m.providerMutex(provider)
	mu.Lock()
	defer mu.Unlock()

	// another caller may have refreshed while we waited for the lock
	token, err = m.loadToken(ctx, provider)
	if err != nil {
		return nil, err
	}
	if tokenUsable(token, m.now()) {
		return token, nil
	}

	refreshed, err := p.Refresh(ctx, token)
	if err != nil {
		logging.WithProvider(m.log, provider).Warn("credential refresh failed",
			logging.Operation("refresh"), logging.Err(err))
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, &ProviderError{Op: "refresh", Err: err})
	}
	if refreshed.RefreshToken == "" {
		// providers may omit the refresh token on renewal
		refreshed.RefreshToken = token.RefreshToken
	}
	if err := m.persistToken(ctx, p, refreshed); err != nil {
		return nil, err
	}

	logging.WithProvider(m.log, provider).Info("credential refreshed",
		logging.Operation("refresh"), "expiry", refreshed.Expiry)
	return refreshed, nil
}

// ConnectionStatus describes the stored connection for a provider.
type ConnectionStatus struct {
	Provider  string     `json:"provider"`
	Connected bool       `json:"connected"`
	Scopes    []string   `json:"scopes,omitempty"`
	Expiry    *time.Time `json:"expiry,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Status reports whether a connection exists for the provider and its
// scope/expiry metadata. It never touches the network.
func (m *Manager) Status(ctx context.Context, provider string) (*ConnectionStatus, error) {
	conn, err := m.store.ConnectionByProvider(ctx, provider)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &ConnectionStatus{Provider: provider}, nil
		}
		return nil, err
	}
	cs := &ConnectionStatus{
		Provider:  provider,
		Connected: true,
		UpdatedAt: &conn.UpdatedAt,
	}
	if conn.Scopes != "" {
		cs.Scopes = strings.Split(conn.Scopes, ",")
	}
	if conn.Expiry.Valid {
		expiry := conn.Expiry.Time
		cs.Expiry = &expiry
	}
	return cs, nil
}

// Statuses reports the connection status of every registered
// provider, sorted by name.
func (m *Manager) Statuses(ctx context.Context) ([]*ConnectionStatus, error) {
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	statuses := make([]*ConnectionStatus, 0, len(names))
	for _, name := range names {
		cs, err := m.Status(ctx, name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, cs)
	}
	return statuses, nil
}

func (m *Manager) loadToken(ctx context.Context, provider string) (*oauth2.Token, error) {
	conn, err := m.store.ConnectionByProvider(ctx, provider)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoConnection, provider)
		}
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(conn.Credential), &token); err != nil {
		return nil, fmt.Errorf("malformed stored credential for %s: %w", provider, err)
	}
	return &token, nil
}

func (m *Manager) persistToken(ctx context.Context, p Provider, token *oauth2.Token) error {
	blob, err := json.Marshal(token)
	if err != nil {
		return err
	}
	var expiry *time.Time
	if !token.Expiry.IsZero() {
		e := token.Expiry.UTC()
		expiry = &e
	}
	return m.store.SaveConnection(ctx, p.Name(), string(blob), p.Scopes(), expiry)
}

func (m *Manager) providerMutex(provider string) *sync.Mutex {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()
	mu, ok := m.refresh[provider]
	if !ok {
		mu = &sync.Mutex{}
		m.refresh[provider] = mu
	}
	return mu
}

func tokenUsable(token *oauth2.Token, now time.Time) bool {
	if token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return true
	}
	// small skew so a token about to expire is not handed out
	return token.Expiry.After(now.Add(10 * time.Second))
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
