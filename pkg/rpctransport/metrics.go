package rpctransport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics is the ambient observability surface for a transport: request
// counts by method/outcome, call latency, and a gauge of currently open
// subscriptions. None of this is part of spec.md's external interface —
// it is carried because the corpus treats Prometheus as the default
// metrics surface for service-adjacent Go code of this kind.
type metrics struct {
	requests           *prometheus.CounterVec
	latency            *prometheus.HistogramVec
	openSubscriptions  prometheus.Gauge
}

// NewMetrics registers a fresh set of collectors on reg (pass
// prometheus.DefaultRegisterer to use the global registry).
func NewMetrics(reg prometheus.Registerer, namespace string) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "JSON-RPC requests by method and outcome.",
		}, []string{"method", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_request_duration_seconds",
			Help:      "JSON-RPC call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		openSubscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rpc_open_subscriptions",
			Help:      "Currently open eth_subscribe streams.",
		}),
	}
	reg.MustRegister(m.requests, m.latency, m.openSubscriptions)
	return m
}

func (m *metrics) observe(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *metrics) subscriptionOpened() {
	if m == nil {
		return
	}
	m.openSubscriptions.Inc()
}

func (m *metrics) subscriptionClosed() {
	if m == nil {
		return
	}
	m.openSubscriptions.Dec()
}
