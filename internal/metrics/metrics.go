// Package metrics defines the Prometheus collectors of the marketplace client.
// Collectors register with the default registry on import; the CLI dumps
// them with -metrics and the dev backend serves its own set on /metrics.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const namespace = "marketplace"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts session changes.
// Labels:
//   - from, to: "anonymous" or "authenticated"
//   - reason: "login", "logout", "expired", "invalid", "unauthorized"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "transitions_total",
		Help:      "Total number of session changes, by source state, target state and reason.",
	},
	[]string{"from", "to", "reason"},
)

// ── Transport metrics ─────────────────────────────────────────────────────────

// RequestsTotal counts outbound API calls.
// Labels:
//   - method: HTTP method
//   - code: response status code, or "error" when no response was received
var RequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of outbound API requests, by method and status code.",
	},
	[]string{"method", "code"},
)

// RequestDuration measures outbound API call latency.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of outbound API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// AuthHeadersTotal counts authorizer decisions.
// Label:
//   - decision: "attached", "anonymous", "expired", "invalid"
var AuthHeadersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "auth_decisions_total",
		Help:      "Total number of request authorization decisions.",
	},
	[]string{"decision"},
)

// UnauthorizedTotal counts 401 responses seen by the response auditor.
var UnauthorizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "unauthorized_total",
		Help:      "Total number of 401 responses that forced a session invalidation.",
	},
)

// ── Query cache metrics ───────────────────────────────────────────────────────

// QueryCacheTotal counts query cache lookups.
// Label:
//   - result: "hit", "miss" or "shared" (joined an in-flight fetch)
var QueryCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "query",
		Name:      "cache_total",
		Help:      "Total number of query cache lookups, by result.",
	},
	[]string{"result"},
)

// ObserveSessionChange records one session transition.
func ObserveSessionChange(from, to, reason string) {
	SessionTransitionsTotal.WithLabelValues(from, to, reason).Inc()
}

// WriteText writes the client's metric families from g in the Prometheus
// text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
