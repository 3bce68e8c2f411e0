// Package instrumentation exposes Prometheus metrics for tool
// invocations, approval decisions and OAuth flow outcomes.
package instrumentation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics holds the collectors registered by this server.
type Metrics struct {
	toolInvocations  *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	approvalOutcomes *prometheus.CounterVec
	oauthFlows       *prometheus.CounterVec
}

// NewMetrics registers the collectors on the given registerer. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh
// registry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		toolInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attache_tool_invocations_total",
			Help: "Number of MCP tool invocations by tool and status.",
		}, []string{"tool", "status"}),
		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attache_tool_duration_seconds",
			Help:    "Duration of MCP tool invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		approvalOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attache_approval_gate_total",
			Help: "Approval gate outcomes by status.",
		}, []string{"status"}),
		oauthFlows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attache_oauth_flow_total",
			Help: "OAuth flow outcomes by provider and result.",
		}, []string{"provider", "result"}),
	}
}

// RecordToolInvocation counts one tool call and its duration.
func (m *Metrics) RecordToolInvocation(tool, status string, duration time.Duration) {
	m.toolInvocations.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordApprovalOutcome counts one approval gate decision.
func (m *Metrics) RecordApprovalOutcome(status string) {
	m.approvalOutcomes.WithLabelValues(status).Inc()
}

// RecordOAuthFlow counts one OAuth flow terminal outcome.
func (m *Metrics) RecordOAuthFlow(provider, result string) {
	m.oauthFlows.WithLabelValues(provider, result).Inc()
}
