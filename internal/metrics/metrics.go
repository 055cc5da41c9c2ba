package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	supervisorStarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soloproc",
			Subsystem: "supervisor",
			Name:      "starts_total",
			Help:      "Number of successful target starts.",
		}, []string{"name"},
	)
	supervisorStops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soloproc",
			Subsystem: "supervisor",
			Name:      "stops_total",
			Help:      "Number of stops (graceful or escalated to kill).",
		}, []string{"name"},
	)
	staleRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soloproc",
			Subsystem: "supervisor",
			Name:      "stale_records_total",
			Help:      "Number of stale PID records detected and removed.",
		}, []string{"name"},
	)
	operationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "soloproc",
			Subsystem: "supervisor",
			Name:      "errors_total",
			Help:      "Number of failed supervisor operations.",
		}, []string{"name", "op"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{supervisorStarts, supervisorStops, staleRecords, operationErrors}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by internal packages to record metrics.
// They no-op if Register hasn't been called.

func IncStart(name string) {
	if regOK.Load() {
		supervisorStarts.WithLabelValues(name).Inc()
	}
}

func IncStop(name string) {
	if regOK.Load() {
		supervisorStops.WithLabelValues(name).Inc()
	}
}

func IncStaleRecord(name string) {
	if regOK.Load() {
		staleRecords.WithLabelValues(name).Inc()
	}
}

func IncError(name, op string) {
	if regOK.Load() {
		operationErrors.WithLabelValues(name, op).Inc()
	}
}
