package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for upstream calls.
const (
	OutcomeSuccess     = "success"
	OutcomeHTTPError   = "http_error"
	OutcomeUnreachable = "unreachable"
	OutcomeBreakerOpen = "breaker_open"
)

// UpstreamMetrics records calls made to the storefront backend.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	breaker  *prometheus.GaugeVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of storefront backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Storefront backend requests by endpoint, outcome and status.",
	}, []string{"endpoint", "outcome", "status"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upstream_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"breaker"})
	reg.MustRegister(duration, requests, breaker)
	return &UpstreamMetrics{
		duration: duration,
		requests: requests,
		breaker:  breaker,
	}
}

// Observe records one finished request. status is 0 when no response arrived.
func (m *UpstreamMetrics) Observe(endpoint, outcome string, status int, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(endpoint, normalizeLabel(outcome), statusLabel(status)).Inc()
}

// SetBreakerState publishes the numeric breaker state.
func (m *UpstreamMetrics) SetBreakerState(name string, state int) {
	if m == nil || m.breaker == nil {
		return
	}
	m.breaker.WithLabelValues(normalizeLabel(name)).Set(float64(state))
}

func statusLabel(status int) string {
	if status <= 0 {
		return "none"
	}
	return strconv.Itoa(status)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
