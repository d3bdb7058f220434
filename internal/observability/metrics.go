package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	assistRequestsTotal   *prometheus.CounterVec
	parseDegradedTotal    prometheus.Counter
	modsProposedTotal     *prometheus.CounterVec
	conflictsTotal        *prometheus.CounterVec
	applyBatchesTotal     *prometheus.CounterVec
	modsAppliedTotal      *prometheus.CounterVec
	modsUndoneTotal       *prometheus.CounterVec
	scheduleEventsTotal   *prometheus.CounterVec
	eventConnectionsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		assistRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assist_requests_total",
			Help: "Assistant modification requests by outcome.",
		}, []string{"outcome"})

		parseDegradedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "assist_parse_degraded_total",
			Help: "Assistant replies that could not be parsed as JSON.",
		})

		modsProposedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modifications_proposed_total",
			Help: "Valid modifications proposed by the assistant, by type.",
		}, []string{"type"})

		conflictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "conflicts_detected_total",
			Help: "Conflicts found when checking proposed modifications.",
		}, []string{"kind"})

		applyBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "apply_batches_total",
			Help: "Modification batches submitted for application, by outcome.",
		}, []string{"outcome"})

		modsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modifications_applied_total",
			Help: "Modifications applied to the schedule, by type.",
		}, []string{"type"})

		modsUndoneTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "modifications_undone_total",
			Help: "Modifications reverted, by type.",
		}, []string{"type"})

		scheduleEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_events_total",
			Help: "Schedule change events published, by kind.",
		}, []string{"kind"})

		eventConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "event_connections_total",
			Help: "Websocket subscriptions opened on the events feed.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			assistRequestsTotal, parseDegradedTotal,
			modsProposedTotal, conflictsTotal,
			applyBatchesTotal, modsAppliedTotal, modsUndoneTotal,
			scheduleEventsTotal, eventConnectionsTotal,
		)
	})
}

// APIRequests exposes the counter for served requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for served requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AssistRequests exposes the per-outcome assistant request counter.
func AssistRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return assistRequestsTotal
}

// ParseDegraded exposes the degraded-parse counter.
func ParseDegraded() prometheus.Counter {
	RegisterMetrics()
	return parseDegradedTotal
}

// ModificationsProposed exposes the per-type proposal counter.
func ModificationsProposed() *prometheus.CounterVec {
	RegisterMetrics()
	return modsProposedTotal
}

// ConflictsDetected exposes the per-kind conflict counter.
func ConflictsDetected() *prometheus.CounterVec {
	RegisterMetrics()
	return conflictsTotal
}

// ApplyBatches exposes the per-outcome batch counter.
func ApplyBatches() *prometheus.CounterVec {
	RegisterMetrics()
	return applyBatchesTotal
}

// ModificationsApplied exposes the per-type applied counter.
func ModificationsApplied() *prometheus.CounterVec {
	RegisterMetrics()
	return modsAppliedTotal
}

// ModificationsUndone exposes the per-type undo counter.
func ModificationsUndone() *prometheus.CounterVec {
	RegisterMetrics()
	return modsUndoneTotal
}

// ScheduleEvents exposes the per-kind published event counter.
func ScheduleEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return scheduleEventsTotal
}

// EventConnections exposes the feed subscription counter.
func EventConnections() prometheus.Counter {
	RegisterMetrics()
	return eventConnectionsTotal
}
