package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	Checkouts *prometheus.CounterVec
	Callbacks *prometheus.CounterVec
}

// NewServerMetrics registers the collectors on reg.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bazaar",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by payment method and result.",
	}, []string{"method", "result"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bazaar",
		Name:      "payment_callbacks_total",
		Help:      "Payment gateway callbacks by kind and result.",
	}, []string{"kind", "result"})

	reg.MustRegister(requests, latency, checkouts, callbacks)
	return &ServerMetrics{Requests: requests, LatencyMS: latency, Checkouts: checkouts, Callbacks: callbacks}
}

// Checkout records one checkout outcome. Safe on a nil receiver.
func (m *ServerMetrics) Checkout(method, result string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(method, result).Inc()
}

// Callback records one gateway callback outcome. Safe on a nil receiver.
func (m *ServerMetrics) Callback(kind, result string) {
	if m == nil {
		return
	}
	m.Callbacks.WithLabelValues(kind, result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
