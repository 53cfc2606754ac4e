package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters/histograms for the AI action proxy.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	upstreamRetries *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "AI action requests by action and response status",
		}, []string{"action", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "ai",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream completion calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 8, 10, 15, 20, 30, 60},
		}, []string{"kind", "outcome"}),
		upstreamRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "ai",
			Name:      "upstream_retries_total",
			Help:      "Retries of rate-limited upstream calls",
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.upstreamLatency, m.upstreamRetries)
	return m
}

func (m *Metrics) ObserveRequest(action string, status int) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.requestsTotal.WithLabelValues(action, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveUpstream(kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(kind, outcome).Observe(seconds)
}

func (m *Metrics) ObserveRetry(kind string) {
	if m == nil {
		return
	}
	m.upstreamRetries.WithLabelValues(kind).Inc()
}
