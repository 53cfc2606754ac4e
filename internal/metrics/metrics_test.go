package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("symptom-check", 200)
	m.ObserveRequest("symptom-check", 200)
	m.ObserveRequest("", 400)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("symptom-check", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("unknown", "400")))
}

func TestMetrics_ObserveUpstreamAndRetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUpstream("structured", "ok", 0.4)
	m.ObserveRetry("text")

	assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamLatency))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamRetries.WithLabelValues("text")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("risk-flag", 500)
		m.ObserveUpstream("text", "ok", 1)
		m.ObserveRetry("text")
	})
}
