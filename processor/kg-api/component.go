// Package kgapi serves the FMEA query and ingestion operations over HTTP.
package kgapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/fmeakg/export"
	"github.com/c360studio/fmeakg/ingest"
	"github.com/c360studio/fmeakg/query"
)

// Querier runs the read templates.
type Querier interface {
	FailureModeParameters(ctx context.Context, skill string) ([]query.FailureModeParam, error)
	MonitoringActionsFor(ctx context.Context, failureMode string) ([]query.MonitoringAction, error)
	SystemReactionsFor(ctx context.Context, failureMode string) ([]query.SystemReaction, error)
	Explain(template, input string) string
}

// Ingester records failure events.
type Ingester interface {
	Ingest(ctx context.Context, e ingest.Event) (ingest.Result, error)
}

// Store exposes the graph for export and health checks.
type Store interface {
	Export(format export.Format) (string, error)
	Len() int
}

// Notifier is told about every successful ingestion.
type Notifier interface {
	NotifyIngested(ctx context.Context, result ingest.Result)
}

// Services are the knowledge graph collaborators behind the endpoints.
// Notifier may be nil.
type Services struct {
	Queries  Querier
	Ingester Ingester
	Store    Store
	Notifier Notifier
}

func (s Services) validate() error {
	if s.Queries == nil || s.Ingester == nil || s.Store == nil {
		return errors.New("queries, ingester and store are required")
	}
	return nil
}

// Component implements the kg-api component.
type Component struct {
	name     string
	config   Config
	queries  Querier
	ingester Ingester
	store    Store
	notifier Notifier
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	now      func() time.Time

	// Lifecycle state machine
	// States: 0=stopped, 1=starting, 2=running, 3=stopping
	state     atomic.Int32
	startTime time.Time
	mu        sync.RWMutex
	server    *http.Server
	addr      string

	requests       atomic.Int64
	failures       atomic.Int64
	lastError      atomic.Value // string
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

const (
	stateStopped  = 0
	stateStarting = 1
	stateRunning  = 2
	stateStopping = 3
)

var _ component.Discoverable = (*Component)(nil)

// NewComponent constructs a kg-api Component from raw JSON config, the
// platform dependencies and the knowledge graph services.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies, svc Services) (*Component, error) {
	config := DefaultConfig()
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := svc.validate(); err != nil {
		return nil, fmt.Errorf("invalid services: %w", err)
	}

	c := &Component{
		name:     "kg-api",
		config:   config,
		queries:  svc.Queries,
		ingester: svc.Ingester,
		store:    svc.Store,
		notifier: svc.Notifier,
		logger:   deps.GetLoggerWithComponent("kg-api"),
		now:      time.Now,
	}
	if deps.MetricsRegistry != nil {
		c.gatherer = deps.MetricsRegistry.PrometheusRegistry()
	}
	return c, nil
}

// Initialize prepares the component for startup.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized kg-api", "addr", c.config.Addr, "prefix", c.config.Prefix)
	return nil
}

// Handler returns a mux serving the FMEA endpoints under the configured
// prefix plus /healthz and /metrics.
func (c *Component) Handler() http.Handler {
	mux := http.NewServeMux()
	c.RegisterHTTPHandlers(c.config.Prefix, mux)
	mux.HandleFunc("/healthz", c.handleHealth)
	if c.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
	}
	return c.track(withRequestID(mux))
}

// Start binds the listen address and serves the API in the background.
func (c *Component) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateStopped, stateStarting) {
		current := c.state.Load()
		if current == stateRunning || current == stateStarting {
			return fmt.Errorf("component already running or starting")
		}
		return fmt.Errorf("component in invalid state: %d", current)
	}

	defer func() {
		if c.state.Load() == stateStarting {
			c.state.Store(stateStopped)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", c.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", c.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.mu.Lock()
	c.server = srv
	c.addr = ln.Addr().String()
	c.startTime = time.Now()
	c.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.recordError(err)
			c.logger.Error("HTTP API stopped unexpectedly", "error", err)
		}
	}()

	c.state.Store(stateRunning)
	c.logger.Info("kg-api started", "addr", c.Addr(), "prefix", c.config.Prefix)
	return nil
}

// Stop shuts the HTTP server down, waiting at most timeout for open requests.
func (c *Component) Stop(timeout time.Duration) error {
	if !c.state.CompareAndSwap(stateRunning, stateStopping) {
		current := c.state.Load()
		if current == stateStopped || current == stateStopping {
			return nil
		}
		return fmt.Errorf("component in unexpected state: %d", current)
	}
	defer c.state.Store(stateStopped)

	c.mu.Lock()
	srv := c.server
	c.server = nil
	c.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
	}

	c.logger.Info("kg-api stopped", "requests", c.requests.Load())
	return nil
}

// Addr returns the bound listen address once started.
func (c *Component) Addr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.addr
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "kg-api",
		Type:        "processor",
		Description: "HTTP endpoints for FMEA queries, ingestion and export",
		Version:     "0.1.0",
	}
}

// InputPorts returns an empty port list; requests arrive over HTTP.
func (c *Component) InputPorts() []component.Port {
	return []component.Port{}
}

// OutputPorts returns an empty port list.
func (c *Component) OutputPorts() []component.Port {
	return []component.Port{}
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return kgAPISchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	state := c.state.Load()

	c.mu.RLock()
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	switch state {
	case stateStarting:
		status = "starting"
	case stateRunning:
		status = "running"
	case stateStopping:
		status = "stopping"
	}

	lastError, _ := c.lastError.Load().(string)
	return component.HealthStatus{
		Healthy:    state == stateRunning,
		LastCheck:  time.Now(),
		ErrorCount: int(c.failures.Load()),
		LastError:  lastError,
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	var errorRate float64
	if total := c.requests.Load(); total > 0 {
		errorRate = float64(c.failures.Load()) / float64(total)
	}

	c.lastActivityMu.RLock()
	lastActivity := c.lastActivity
	c.lastActivityMu.RUnlock()

	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: lastActivity,
	}
}

// track counts requests and server errors for Health and DataFlow.
func (c *Component) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		c.requests.Add(1)
		if sw.status >= http.StatusInternalServerError {
			c.recordError(fmt.Errorf("%s %s: status %d", r.Method, r.URL.Path, sw.status))
		}

		c.lastActivityMu.Lock()
		c.lastActivity = time.Now()
		c.lastActivityMu.Unlock()
	})
}

func (c *Component) recordError(err error) {
	c.failures.Add(1)
	c.lastError.Store(err.Error())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
