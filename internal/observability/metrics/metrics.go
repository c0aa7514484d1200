package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_api_requests_total",
		Help: "Total number of backend API requests by route and status",
	}, []string{"method", "route", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentdesk_api_request_duration_seconds",
		Help:    "Duration of backend API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_actions_total",
		Help: "Store actions by name and outcome",
	}, []string{"action", "result"})

	pushEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_push_events_total",
		Help: "Realtime events received by event name and outcome",
	}, []string{"event", "result"})

	socketConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rentdesk_socket_connected",
		Help: "1 while the realtime socket is connected",
	})

	socketReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentdesk_socket_reconnects_total",
		Help: "Realtime socket reconnect attempts",
	})

	breakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rentdesk_api_breaker_state",
		Help: "API circuit breaker state (0 closed, 1 open, 2 half-open)",
	})

	cachedBookings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rentdesk_cached_bookings",
		Help: "Number of landlord bookings held in the store",
	})

	agentRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentdesk_agent_http_requests_total",
		Help: "Requests served by the local agent",
	}, []string{"method", "path", "status"})

	agentRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rentdesk_agent_http_request_duration_seconds",
		Help:    "Duration of requests served by the local agent",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// ObserveAPIRequest records one backend call. route is the templated path.
func ObserveAPIRequest(method, route, status string, duration time.Duration) {
	apiRequestsTotal.WithLabelValues(method, route, status).Inc()
	apiRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveAction counts an action outcome ("success" or "error")
func ObserveAction(action, result string) {
	actionsTotal.WithLabelValues(action, result).Inc()
}

// ObservePushEvent counts a realtime event ("applied", "ignored", "invalid", "duplicate")
func ObservePushEvent(event, result string) {
	pushEventsTotal.WithLabelValues(event, result).Inc()
}

// SetSocketConnected flips the connection gauge
func SetSocketConnected(connected bool) {
	if connected {
		socketConnected.Set(1)
		return
	}
	socketConnected.Set(0)
}

// IncrementReconnects counts a reconnect attempt
func IncrementReconnects() {
	socketReconnects.Inc()
}

// SetBreakerState publishes the breaker state as a number
func SetBreakerState(state int) {
	breakerState.Set(float64(state))
}

// SetCachedBookings sets the cached landlord bookings gauge
func SetCachedBookings(count int) {
	if count < 0 {
		count = 0
	}
	cachedBookings.Set(float64(count))
}

// ObserveAgentRequest records a request served by the agent
func ObserveAgentRequest(method, path, status string, duration time.Duration) {
	agentRequestsTotal.WithLabelValues(method, path, status).Inc()
	agentRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
