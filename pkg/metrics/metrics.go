package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus metrics of the service
type Metrics struct {
	registry *prometheus.Registry

	PollsTotal        *prometheus.CounterVec
	PollDuration      prometheus.Histogram
	PollsCoalesced    *prometheus.CounterVec
	SnapshotSize      prometheus.Gauge
	ActionsTotal      *prometheus.CounterVec
	ActionDuration    *prometheus.HistogramVec
	ActionsInFlight   prometheus.Gauge
	HTTPRequestsTotal *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

// New creates metrics registered on a dedicated registry
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PollsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "The total number of booking snapshot fetches by result",
		}, []string{"result"}),
		PollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Time taken to fetch a booking snapshot",
			Buckets:   prometheus.DefBuckets,
		}),
		PollsCoalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_coalesced_total",
			Help:      "Fetch triggers merged into an in-flight fetch",
		}, []string{"trigger"}),
		SnapshotSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bookings",
			Help:      "Number of bookings in the last applied snapshot",
		}),
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Driver actions by kind and outcome",
		}, []string{"kind", "outcome"}),
		ActionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Backend latency of driver actions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		ActionsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actions_in_flight",
			Help:      "Driver actions currently awaiting a backend response",
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by the dashboard API",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency of the dashboard API",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePoll records the result and latency of one snapshot fetch
func (m *Metrics) ObservePoll(result string, duration time.Duration) {
	m.PollsTotal.WithLabelValues(result).Inc()
	m.PollDuration.Observe(duration.Seconds())
}

// IncPollCoalesced records a fetch trigger merged into an in-flight fetch
func (m *Metrics) IncPollCoalesced(trigger string) {
	m.PollsCoalesced.WithLabelValues(trigger).Inc()
}

// ObserveAction records the outcome of one driver action
func (m *Metrics) ObserveAction(kind, outcome string, duration time.Duration) {
	m.ActionsTotal.WithLabelValues(kind, outcome).Inc()
	if duration > 0 {
		m.ActionDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}
}

// SetActionsInFlight sets the number of pending driver actions
func (m *Metrics) SetActionsInFlight(n int) {
	m.ActionsInFlight.Set(float64(n))
}

// ObserveHTTP records one served API request
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
