// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intake",
		Name:      "webhook_events_total",
		Help:      "Voice assistant webhook events received, by event kind.",
	}, []string{"event"})

	FunctionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intake",
		Name:      "function_calls_total",
		Help:      "Assistant function calls dispatched, by function and outcome.",
	}, []string{"function", "outcome"})

	AdmissionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intake",
		Name:      "admission_decisions_total",
		Help:      "Admin review decisions recorded, by resulting status.",
	}, []string{"status"})

	OutboundCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intake",
		Name:      "outbound_call_requests_total",
		Help:      "Outbound voice call creation requests, by outcome.",
	}, []string{"outcome"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intake",
		Name:      "notifications_total",
		Help:      "Queue notifications, by message type and stage.",
	}, []string{"type", "stage"})
)

// Function call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)
