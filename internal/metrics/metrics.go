package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carebook"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Calls to the remote API by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	remoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Remote API call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by source, target and outcome.",
		},
		[]string{"from", "to", "outcome"},
	)

	bookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Booking creation attempts by duration kind and outcome.",
		},
		[]string{"duration_type", "outcome"},
	)

	accessDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Admin gate decisions.",
		},
		[]string{"decision"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			remoteRequests,
			remoteLatency,
			bookingTransitions,
			bookingsCreated,
			accessDecisions,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// ObserveRemote records one remote API call.
func ObserveRemote(operation, outcome string, seconds float64) {
	remoteRequests.WithLabelValues(operation, outcome).Inc()
	remoteLatency.WithLabelValues(operation).Observe(seconds)
}

// IncTransition counts a booking transition attempt.
func IncTransition(from, to, outcome string) {
	bookingTransitions.WithLabelValues(from, to, outcome).Inc()
}

// IncBookingCreated counts a booking creation attempt.
func IncBookingCreated(durationType, outcome string) {
	bookingsCreated.WithLabelValues(durationType, outcome).Inc()
}

// IncAccessDecision counts an admin gate decision.
func IncAccessDecision(decision string) {
	accessDecisions.WithLabelValues(decision).Inc()
}
