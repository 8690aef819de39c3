// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// QueriesTotal tracks conversational queries by parsed command type.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_queries_total",
			Help: "Total conversational queries processed",
		},
		[]string{"command_type", "outcome"},
	)

	// LLMCallDuration tracks LLM call duration by purpose.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"purpose", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// UpstreamCallsTotal tracks calls to the restaurant API.
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaurant_api_calls_total",
			Help: "Total calls to the upstream restaurant API",
		},
		[]string{"operation", "status"},
	)

	// CollectionsCreated tracks collections created through the concierge.
	CollectionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collections_created_total",
			Help: "Total restaurant collections created",
		},
	)

	// ActiveThreads tracks conversation threads held in memory.
	ActiveThreads = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversation_threads_active",
			Help: "Number of conversation threads currently stored",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordQuery records a processed conversational query.
func RecordQuery(commandType, outcome string) {
	QueriesTotal.WithLabelValues(commandType, outcome).Inc()
}

// RecordLLMCall records metrics for a single LLM call.
func RecordLLMCall(purpose, status, model string, duration float64, tokensIn, tokensOut int) {
	LLMCallDuration.WithLabelValues(purpose, status).Observe(duration)
	if model != "" {
		LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
		LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
	}
}

// RecordUpstreamCall records a call to the restaurant API.
func RecordUpstreamCall(operation, status string) {
	UpstreamCallsTotal.WithLabelValues(operation, status).Inc()
}
