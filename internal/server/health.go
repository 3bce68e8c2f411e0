package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// Health status values.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
)

// HealthResponse is the JSON body for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleLiveness reports process liveness. It succeeds as long as the
// process can serve HTTP at all.
func (sc *ServerContext) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
}

// handleReadiness reports whether the server can do useful work: not
// shutting down, and the store reachable.
func (sc *ServerContext) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if sc.IsShutdown() {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusShuttingDown})
		return
	}

	checks := map[string]string{}
	ctx, cancel := contextWithTimeout(r, 2*time.Second)
	defer cancel()
	if err := sc.store.Ping(ctx); err != nil {
		checks["store"] = err.Error()
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{Status: healthStatusNotReady, Checks: checks})
		return
	}
	checks["store"] = healthStatusOK
	writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK, Checks: checks})
}

func writeHealth(w http.ResponseWriter, code int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
