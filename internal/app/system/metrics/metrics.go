// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label names.
const (
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelStatus  = "status"
	LabelContext = "context"
	LabelOutcome = "outcome"
	LabelEvent   = "event"
	LabelKind    = "kind"
	LabelFilter  = "filtered"
)

// Moderation outcomes.
const (
	OutcomeToxic   = "toxic"
	OutcomeClean   = "clean"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// Lifecycle events.
const (
	EventCreate       = "create"
	EventJoin         = "join"
	EventAccept       = "accept"
	EventReject       = "reject"
	EventStatusChange = "status_change"
	EventDelete       = "delete"
	EventRejected     = "content_rejected"
)

// HTTPLatencyBuckets are the histogram buckets for request latency, in seconds.
var HTTPLatencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// HTTP
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelRoute, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campusconnect_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelRoute},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campusconnect_http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Moderation
var (
	ModerationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_moderation_checks_total",
			Help: "Moderation classifier checks by context and outcome",
		},
		[]string{LabelContext, LabelOutcome},
	)

	ModerationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "campusconnect_moderation_latency_seconds",
			Help:    "Latency of calls to the remote toxicity classifier",
			Buckets: HTTPLatencyBuckets,
		},
	)
)

// Domain
var (
	LifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_request_lifecycle_events_total",
			Help: "Request lifecycle operations that succeeded",
		},
		[]string{LabelEvent},
	)

	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_messages_posted_total",
			Help: "Chat messages stored, by kind and whether they were redacted",
		},
		[]string{LabelKind, LabelFilter},
	)

	RequestsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campusconnect_requests",
			Help: "Stored requests by status, refreshed periodically",
		},
		[]string{LabelStatus},
	)

	UsersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campusconnect_users",
			Help: "Stored user profiles, refreshed periodically",
		},
	)

	MessagesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campusconnect_messages",
			Help: "Stored chat messages, refreshed periodically",
		},
	)
)
