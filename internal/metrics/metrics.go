// Package metrics defines the Prometheus collectors for the portal client and
// web server. Collectors register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "affiliate_portal"

// APIRequestsTotal counts calls made to the portal API.
// Labels:
//   - method: HTTP verb
//   - class: "2xx", "401", "403", "4xx", "5xx" or "network"
var APIRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of portal API requests, by outcome class.",
	},
	[]string{"method", "class"},
)

// APIRequestDuration measures round-trip time of portal API calls.
var APIRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of portal API requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// UserCacheTotal counts current-user lookups.
// Label:
//   - result: "hit", "miss" or "discarded" (fetch finished after the session changed)
var UserCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_cache_total",
		Help:      "Current-user cache lookups, by result.",
	},
	[]string{"result"},
)

// SessionClearedTotal counts credential removals.
// Label:
//   - reason: "logout", "unauthorized" or "rotated"
var SessionClearedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_cleared_total",
		Help:      "Credential removals, by reason.",
	},
	[]string{"reason"},
)

// GuardDecisionsTotal counts guard outcomes.
// Labels:
//   - guard: "auth", "admin" or "non_super_admin"
//   - outcome: "allow" or the redirect path
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Page guard decisions, by guard and outcome.",
	},
	[]string{"guard", "outcome"},
)

// StatusClass buckets an HTTP status for the class label.
func StatusClass(status int) string {
	switch {
	case status == 401:
		return "401"
	case status == 403:
		return "403"
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}
