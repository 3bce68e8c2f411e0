package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServer is the sidecar listener for the OAuth callback, health
// probes and Prometheus metrics. It runs alongside the MCP transport
// and shares its ServerContext.
type HTTPServer struct {
	sc         *ServerContext
	httpServer *http.Server
}

// NewHTTPServer builds the sidecar server on addr.
func NewHTTPServer(sc *ServerContext, addr string) *HTTPServer {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth/google/callback", sc.handleGoogleCallback)
	mux.HandleFunc("GET /healthz", sc.handleLiveness)
	mux.HandleFunc("GET /readyz", sc.handleReadiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	return &HTTPServer{
		sc: sc,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start serves until Shutdown is called. It blocks; run it in a
// goroutine.
func (s *HTTPServer) Start() error {
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener gracefully.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
