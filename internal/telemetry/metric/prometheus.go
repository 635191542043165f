package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minredis"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	ConnectionsAccepted prometheus.Counter
	ConnectionsActive   prometheus.Gauge
	RateLimited         prometheus.Counter
	DecodeErrors        prometheus.Counter

	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec

	SnapshotsSaved *prometheus.CounterVec
}

// NewRegistry creates the application metrics on a private registry,
// together with the Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		ConnectionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_accepted_total",
			Help:      "Total TCP connections accepted",
		}),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Connections currently being served",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "rate_limited_total",
			Help:      "Commands rejected by the per-client rate limit",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "decode_errors_total",
			Help:      "Reads that could not be decoded as a command",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "processed_total",
			Help:      "Commands processed by name and outcome",
		}, []string{"command", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Command execution latency",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"command"}),
		SnapshotsSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "snapshots_saved_total",
			Help:      "Snapshot save attempts by outcome",
		}, []string{"result"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.ConnectionsAccepted,
		r.ConnectionsActive,
		r.RateLimited,
		r.DecodeErrors,
		r.CommandsTotal,
		r.CommandDuration,
		r.SnapshotsSaved,
	)
	return r
}

// Register adds an extra collector, such as a KeysCollector.
func (r *Registry) Register(c prometheus.Collector) error {
	if r == nil {
		return nil
	}
	return r.reg.Register(c)
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ConnOpened records an accepted connection.
func (r *Registry) ConnOpened() {
	if r == nil {
		return
	}
	r.ConnectionsAccepted.Inc()
	r.ConnectionsActive.Inc()
}

// ConnClosed records a finished connection.
func (r *Registry) ConnClosed() {
	if r == nil {
		return
	}
	r.ConnectionsActive.Dec()
}

// DecodeError records an undecodable read.
func (r *Registry) DecodeError() {
	if r == nil {
		return
	}
	r.DecodeErrors.Inc()
}

// RateLimit records a rejected command.
func (r *Registry) RateLimit() {
	if r == nil {
		return
	}
	r.RateLimited.Inc()
}

// Command records one executed command. result is "ok" or "error".
func (r *Registry) Command(name, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.CommandsTotal.WithLabelValues(name, result).Inc()
	r.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

// SnapshotSaved records a snapshot attempt.
func (r *Registry) SnapshotSaved(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.SnapshotsSaved.WithLabelValues(result).Inc()
}
