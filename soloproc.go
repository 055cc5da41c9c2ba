// Package soloproc is a single-instance process supervisor: it starts one
// configured target process exactly once, stops it idempotently, and reports
// its running state through a persisted PID record. This file is the public
// facade for embedding; the soloproc CLI lives in cmd/soloproc.
package soloproc

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/loykin/soloproc/internal/config"
	"github.com/loykin/soloproc/internal/history"
	histsqlite "github.com/loykin/soloproc/internal/history/sqlite"
	"github.com/loykin/soloproc/internal/metrics"
	"github.com/loykin/soloproc/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = supervisor.Spec

type Status = supervisor.Status

type Config = cfg.Config

type HistorySink = history.Sink

// Error taxonomy of supervisor operations.
var (
	ErrNotRunning     = supervisor.ErrNotRunning
	ErrAlreadyStopped = supervisor.ErrAlreadyStopped
)

type AlreadyRunningError = supervisor.AlreadyRunningError

type LaunchError = supervisor.LaunchError

type SignalError = supervisor.SignalError

// Supervisor is a thin facade over internal/supervisor.Supervisor.
// It provides a stable public API for embedding.
type Supervisor struct{ inner *supervisor.Supervisor }

func New(spec Spec) *Supervisor { return &Supervisor{inner: supervisor.New(spec)} }

func (s *Supervisor) Start() (int, error)           { return s.inner.Start() }
func (s *Supervisor) Stop() error                   { return s.inner.Stop() }
func (s *Supervisor) Status() (Status, error)       { return s.inner.Status() }
func (s *Supervisor) IsRunning() (int, bool, error) { return s.inner.IsRunning() }
func (s *Supervisor) SetHistorySink(h HistorySink)  { s.inner.SetHistorySink(h) }

// LoadConfig reads the TOML config at path (empty path: defaults plus
// SOLOPROC_* environment variables).
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// NewSQLiteHistorySink opens a SQLite-backed audit sink for supervisor
// events. DSN accepts "sqlite:///path", a bare path, or ":memory:".
func NewSQLiteHistorySink(dsn string) (HistorySink, error) { return histsqlite.New(dsn) }

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it runs
// the server in the caller goroutine.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
