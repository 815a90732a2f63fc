// Package metrics exposes the prometheus collectors of the API process.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics holds the collectors. A nil *Metrics is valid and records
// nothing, which keeps handlers and middleware usable in tests.
type Metrics struct {
	gatherer       prometheus.Gatherer
	authDecisions  *prometheus.CounterVec
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	matchEvents    *prometheus.CounterVec
}

// New registers the collectors on reg. Collectors already registered
// under the same name are reused.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{gatherer: reg}
	m.authDecisions = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club",
		Subsystem: "auth",
		Name:      "decisions_total",
		Help:      "Authentication and authorization outcomes by stage",
	}, []string{"stage", "outcome"}))
	m.requestTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club",
		Subsystem: "api",
		Name:      "http_requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"method", "route", "status"}))
	m.requestLatency = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "club",
		Subsystem: "api",
		Name:      "http_request_duration_seconds",
		Help:      "Latency distribution of HTTP handlers",
		Buckets:   histogramBuckets,
	}, []string{"method", "route", "status"}))
	m.matchEvents = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club",
		Subsystem: "standings",
		Name:      "match_events_total",
		Help:      "Match events consumed, by result",
	}, []string{"result"}))
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// AuthDecision counts one outcome of the auth pipeline. stage is
// "token", "principal", "privilege" or "login"; outcome is "allow" or a
// reason label.
func (m *Metrics) AuthDecision(stage, outcome string) {
	if m == nil {
		return
	}
	m.authDecisions.WithLabelValues(stage, outcome).Inc()
}

// Request records one served HTTP request.
func (m *Metrics) Request(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.requestTotal.With(labels).Inc()
	m.requestLatency.With(labels).Observe(d.Seconds())
}

// MatchEvent counts one consumed match event.
func (m *Metrics) MatchEvent(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.matchEvents.WithLabelValues(result).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
