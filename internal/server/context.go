package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/attachehq/attache/internal/approval"
	"github.com/attachehq/attache/internal/audit"
	"github.com/attachehq/attache/internal/authflow"
	"github.com/attachehq/attache/internal/calendar"
	"github.com/attachehq/attache/internal/config"
	"github.com/attachehq/attache/internal/contacts"
	"github.com/attachehq/attache/internal/gmail"
	"github.com/attachehq/attache/internal/google"
	"github.com/attachehq/attache/internal/instrumentation"
	"github.com/attachehq/attache/internal/store"
	"github.com/attachehq/attache/internal/web"
)

// ServerContext carries the shared components for all tool handlers.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	settings config.Settings
	logger   *slog.Logger

	store    *store.Store
	gate     *approval.Gate
	recorder *audit.Recorder
	flows    *authflow.Manager
	provider *google.Provider
	web      *web.Client
	metrics  *instrumentation.Metrics

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext wires the shared components. provider may be nil
// when Google OAuth is not configured; tools then surface the
// configuration error instead of failing at startup.
func NewServerContext(
	ctx context.Context,
	settings config.Settings,
	logger *slog.Logger,
	s *store.Store,
	gate *approval.Gate,
	recorder *audit.Recorder,
	flows *authflow.Manager,
	provider *google.Provider,
	metrics *instrumentation.Metrics,
) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	if logger == nil {
		logger = slog.Default()
	}
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		settings: settings,
		logger:   logger,
		store:    s,
		gate:     gate,
		recorder: recorder,
		flows:    flows,
		provider: provider,
		web:      web.NewClient(settings.WebUserAgent, settings.WebTimeout),
		metrics:  metrics,
	}
}

// Context returns the server's shutdown-aware context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Settings returns the resolved runtime configuration.
func (sc *ServerContext) Settings() config.Settings {
	return sc.settings
}

// Logger returns the shared logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Store returns the durable store.
func (sc *ServerContext) Store() *store.Store {
	return sc.store
}

// Gate returns the approval gate.
func (sc *ServerContext) Gate() *approval.Gate {
	return sc.gate
}

// Recorder returns the audit recorder.
func (sc *ServerContext) Recorder() *audit.Recorder {
	return sc.recorder
}

// Flows returns the OAuth lifecycle manager.
func (sc *ServerContext) Flows() *authflow.Manager {
	return sc.flows
}

// Web returns the web search/fetch client.
func (sc *ServerContext) Web() *web.Client {
	return sc.web
}

// Metrics returns the metrics collectors; may be nil in tests.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// Shutdown cancels the server context. Tool handlers in flight see
// their contexts cancelled.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	sc.shutdown = true
	sc.mu.Unlock()
	sc.cancel()
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// GmailClient builds a Gmail client with a live credential. Clients
// are built per call so a refreshed credential is always picked up.
func (sc *ServerContext) GmailClient(ctx context.Context) (*gmail.Client, error) {
	httpClient, err := sc.googleHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return gmail.NewClient(ctx, httpClient)
}

// CalendarClient builds a Calendar client with a live credential.
func (sc *ServerContext) CalendarClient(ctx context.Context) (*calendar.Client, error) {
	httpClient, err := sc.googleHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.NewClient(ctx, httpClient)
}

// ContactsClient builds a People client with a live credential.
func (sc *ServerContext) ContactsClient(ctx context.Context) (*contacts.Client, error) {
	httpClient, err := sc.googleHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return contacts.NewClient(ctx, httpClient)
}

func (sc *ServerContext) googleHTTPClient(ctx context.Context) (*http.Client, error) {
	if sc.provider == nil {
		return nil, authflow.ErrNotConfigured
	}
	token, err := sc.flows.LiveCredential(ctx, google.ProviderName)
	if err != nil {
		return nil, err
	}
	return sc.provider.HTTPClient(ctx, token), nil
}
