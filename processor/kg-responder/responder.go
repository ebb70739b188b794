// Package kgresponder answers FMEA queries and ingestions over NATS request/reply.
package kgresponder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/google/uuid"

	"github.com/c360studio/fmeakg/ingest"
	kgapi "github.com/c360studio/fmeakg/processor/kg-api"
	"github.com/c360studio/fmeakg/query"
)

// Subject suffixes, appended to the configured prefix.
const (
	SubjectFailureModes      = "query.failure_modes"
	SubjectMonitoringActions = "query.monitoring_actions"
	SubjectSystemReactions   = "query.system_reactions"
	SubjectIngest            = "ingest"
	SubjectIngested          = "events.ingested"
)

// requestSubjects are answered by the responder.
var requestSubjects = []string{SubjectFailureModes, SubjectMonitoringActions, SubjectSystemReactions, SubjectIngest}

// QueryRequest is the payload of a query subject.
type QueryRequest struct {
	Skill       string `json:"skill,omitempty"`
	FailureMode string `json:"failure_mode,omitempty"`
	Explain     bool   `json:"explain,omitempty"`
}

// Response wraps every reply. Code follows HTTP status semantics.
type Response struct {
	Code   int    `json:"code"`
	Data   any    `json:"data,omitempty"`
	SPARQL string `json:"sparql,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Services are the knowledge graph collaborators behind the subjects.
// Notifier may be nil.
type Services struct {
	Queries  kgapi.Querier
	Ingester kgapi.Ingester
	Notifier kgapi.Notifier
}

// Component implements the kg-responder processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	queries    kgapi.Querier
	ingester   kgapi.Ingester
	notifier   kgapi.Notifier
	logger     *slog.Logger
	now        func() time.Time

	// Lifecycle
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	requestsProcessed atomic.Int64
	requestsFailed    atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

var _ component.Discoverable = (*Component)(nil)

// NewComponent creates a kg-responder processor from raw JSON config, the
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
	if svc.Queries == nil || svc.Ingester == nil {
		return nil, fmt.Errorf("invalid services: queries and ingester are required")
	}

	return &Component{
		name:       "kg-responder",
		config:     config,
		natsClient: deps.NATSClient,
		queries:    svc.Queries,
		ingester:   svc.Ingester,
		notifier:   svc.Notifier,
		logger:     deps.GetLoggerWithComponent("kg-responder"),
		now:        time.Now,
	}, nil
}

// Subject returns the full subject for a suffix.
func (c *Component) Subject(suffix string) string {
	return subjectFor(c.config.SubjectPrefix, suffix)
}

func subjectFor(prefix, suffix string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return suffix
	}
	return prefix + "." + suffix
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized kg-responder",
		"subject_prefix", c.config.SubjectPrefix,
		"timeout", c.config.Timeout())
	return nil
}

// Start subscribes to all request subjects.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	c.running = true
	c.startTime = time.Now()

	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	for _, suffix := range requestSubjects {
		subject := c.Subject(suffix)
		if _, err := c.natsClient.SubscribeForRequests(subCtx, subject, c.requestHandler(subject)); err != nil {
			// Rollback running state on failure
			c.mu.Lock()
			c.running = false
			c.cancel = nil
			c.mu.Unlock()
			cancel()
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		c.logger.Debug("Subscribed to subject", "subject", subject)
	}

	c.logger.Info("kg-responder started",
		"subject_prefix", c.config.SubjectPrefix,
		"subjects", len(requestSubjects))
	return nil
}

// Stop cancels the request subscriptions.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	c.running = false
	c.logger.Info("kg-responder stopped",
		"requests_processed", c.requestsProcessed.Load(),
		"requests_failed", c.requestsFailed.Load())
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "kg-responder",
		Type:        "processor",
		Description: "NATS request/reply service for FMEA queries and ingestion",
		Version:     "0.1.0",
	}
}

// InputPorts returns the request subjects.
func (c *Component) InputPorts() []component.Port {
	ports := make([]component.Port, len(requestSubjects))
	for i, suffix := range requestSubjects {
		ports[i] = component.Port{
			Name:        suffix,
			Direction:   component.DirectionInput,
			Required:    true,
			Description: "Request/reply subject " + c.Subject(suffix),
			Config: component.NATSPort{
				Subject: c.Subject(suffix),
			},
		}
	}
	return ports
}

// OutputPorts returns the ingestion event subject.
func (c *Component) OutputPorts() []component.Port {
	return []component.Port{{
		Name:        SubjectIngested,
		Direction:   component.DirectionOutput,
		Description: "Successful ingestions",
		Config: component.NATSPort{
			Subject: c.Subject(SubjectIngested),
		},
	}}
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return kgResponderSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.requestsFailed.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	var errorRate float64
	if total := c.requestsProcessed.Load(); total > 0 {
		errorRate = float64(c.requestsFailed.Load()) / float64(total)
	}

	c.lastActivityMu.RLock()
	lastActivity := c.lastActivity
	c.lastActivityMu.RUnlock()

	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: lastActivity,
	}
}

// requestHandler answers one subject. Failures are reported in the response
// envelope, never as a transport error.
func (c *Component) requestHandler(subject string) func(context.Context, []byte) ([]byte, error) {
	return func(ctx context.Context, data []byte) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		requestID := uuid.NewString()

		ctx, cancel := context.WithTimeout(ctx, c.config.Timeout())
		defer cancel()

		resp := c.handle(ctx, subject, data)
		c.recordRequest(resp)
		if resp.Code >= http.StatusInternalServerError {
			c.logger.Error("Request failed", "subject", subject, "request_id", requestID, "error", resp.Error)
		} else {
			c.logger.Debug("Request handled", "subject", subject, "request_id", requestID, "code", resp.Code)
		}

		out, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("marshal response: %w", err)
		}
		return out, nil
	}
}

func (c *Component) recordRequest(resp Response) {
	c.requestsProcessed.Add(1)
	if resp.Code >= http.StatusInternalServerError {
		c.requestsFailed.Add(1)
	}

	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

// handle dispatches one request by subject.
func (c *Component) handle(ctx context.Context, subject string, data []byte) Response {
	switch subject {
	case c.Subject(SubjectFailureModes):
		return c.query(data, "skill", func(req QueryRequest) string { return req.Skill },
			func(input string) (any, error) { return c.queries.FailureModeParameters(ctx, input) },
			query.TemplateFailureModes)
	case c.Subject(SubjectMonitoringActions):
		return c.query(data, "failure_mode", func(req QueryRequest) string { return req.FailureMode },
			func(input string) (any, error) { return c.queries.MonitoringActionsFor(ctx, input) },
			query.TemplateMonitoringActions)
	case c.Subject(SubjectSystemReactions):
		return c.query(data, "failure_mode", func(req QueryRequest) string { return req.FailureMode },
			func(input string) (any, error) { return c.queries.SystemReactionsFor(ctx, input) },
			query.TemplateSystemReactions)
	case c.Subject(SubjectIngest):
		return c.ingest(ctx, data)
	default:
		return Response{Code: http.StatusNotFound, Error: "unknown subject " + subject}
	}
}

func (c *Component) query(data []byte, field string, input func(QueryRequest) string,
	run func(string) (any, error), template string) Response {
	var req QueryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return Response{Code: http.StatusBadRequest, Error: "invalid request: " + err.Error()}
	}
	value := strings.TrimSpace(input(req))
	if value == "" {
		return Response{Code: http.StatusBadRequest, Error: field + " is required"}
	}

	rows, err := run(value)
	if err != nil {
		return Response{Code: http.StatusInternalServerError, Error: err.Error()}
	}

	resp := Response{Code: http.StatusOK, Data: rows}
	if req.Explain {
		resp.SPARQL = c.queries.Explain(template, value)
	}
	return resp
}

func (c *Component) ingest(ctx context.Context, data []byte) Response {
	var req ingest.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Response{Code: http.StatusBadRequest, Error: "invalid request: " + err.Error()}
	}
	event, err := req.Event(c.now())
	if err != nil {
		return Response{Code: http.StatusBadRequest, Error: err.Error()}
	}

	result, err := c.ingester.Ingest(ctx, event)
	if err != nil {
		return Response{Code: kgapi.StatusForIngestError(err), Error: err.Error()}
	}
	if c.notifier != nil {
		c.notifier.NotifyIngested(ctx, result)
	}
	return Response{Code: http.StatusOK, Data: result}
}
