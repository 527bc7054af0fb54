package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type gatewayMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	gatewayMetricsOnce sync.Once
	gatewayRegistry    *gatewayMetrics
)

// Gateway returns the lazily-initialised metrics registry used to record
// read-only HTTP gateway activity.
func Gateway() *gatewayMetrics {
	gatewayMetricsOnce.Do(func() {
		gatewayRegistry = &gatewayMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Total gateway requests segmented by route and outcome.",
			}, []string{"route", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "gateway",
				Name:      "errors_total",
				Help:      "Total gateway errors segmented by route and status code.",
			}, []string{"route", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "ember",
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for gateway handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"}),
			throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "ember",
				Subsystem: "gateway",
				Name:      "throttles_total",
				Help:      "Count of gateway requests rejected by the rate limiter.",
			}, []string{"route"}),
		}
		prometheus.MustRegister(
			gatewayRegistry.requests,
			gatewayRegistry.errors,
			gatewayRegistry.latency,
			gatewayRegistry.throttles,
		)
	})
	return gatewayRegistry
}

// Observe records the outcome of a gateway request. The status code should be
// the HTTP status that was ultimately written to the response writer.
func (m *gatewayMetrics) Observe(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(route, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(route, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the supplied route.
func (m *gatewayMetrics) RecordThrottle(route string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.throttles.WithLabelValues(route).Inc()
}
