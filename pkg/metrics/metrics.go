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
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// JobsPostedTotal tracks jobs posted, by category.
	JobsPostedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_posted_total",
			Help: "Total jobs posted",
		},
		[]string{"category"},
	)

	// JobQueryResults tracks how many jobs a query returns.
	JobQueryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "job_query_results",
			Help:    "Number of jobs returned per query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"mode"},
	)

	// ConversationsTotal tracks conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_total",
			Help: "Total conversations created",
		},
	)

	// MessagesTotal tracks messages sent.
	MessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total chat messages sent",
		},
	)

	// AdvisorDuration tracks advisor call latency.
	AdvisorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "advisor_duration_seconds",
			Help:    "AI advisor call duration",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"operation", "outcome"},
	)

	// AdvisorCallsTotal tracks advisor calls by outcome
	// (ok, cached, fallback).
	AdvisorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_calls_total",
			Help: "Total AI advisor calls",
		},
		[]string{"operation", "outcome"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// EventsPublishedTotal tracks domain events sent to NATS.
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published",
		},
		[]string{"type", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordAdvisorCall records metrics for one advisor call.
func RecordAdvisorCall(operation, outcome string, duration float64) {
	AdvisorDuration.WithLabelValues(operation, outcome).Observe(duration)
	AdvisorCallsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordLLMTokens records token usage for a completion.
func RecordLLMTokens(model string, tokensIn, tokensOut int) {
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}
