package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics держит коллекторы на собственном registry, чтобы тесты
// могли создавать независимые экземпляры.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	requests    *prometheus.CounterVec
	connected   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepcheck_invocations_total",
			Help: "Proxied invocations by outcome.",
		}, []string{"kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "deepcheck_invocation_duration_seconds",
			Help:    "Invocation latency by outcome.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "deepcheck_http_requests_total",
			Help: "Inbound HTTP requests.",
		}, []string{"method", "route", "status"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "deepcheck_endpoint_connected",
			Help: "1 if the startup handshake with the remote endpoint succeeded.",
		}),
	}
	m.registry.MustRegister(
		m.invocations,
		m.latency,
		m.requests,
		m.connected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveInvocation(kind string, duration time.Duration) {
	m.invocations.WithLabelValues(kind).Inc()
	m.latency.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) SetConnected(ok bool) {
	if ok {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
