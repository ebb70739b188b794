package kgapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/fmeakg/export"
	"github.com/c360studio/fmeakg/ingest"
	"github.com/c360studio/fmeakg/query"
)

// maxRequestBodySize limits POST body sizes; snapshots can be large.
const maxRequestBodySize = 8 << 20 // 8 MB

// RequestIDHeader carries the request id used for log correlation.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RegisterHTTPHandlers registers all FMEA handlers under the given prefix.
// Handlers are registered as:
//
//	GET  <prefix>failure-modes?skill=NAME
//	GET  <prefix>monitoring-actions?failure_mode=IRI
//	GET  <prefix>system-reactions?failure_mode=IRI
//	POST <prefix>ingest
//	GET  <prefix>export?format=turtle|ntriples|jsonld
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	// Normalise: ensure leading slash and trailing slash.
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	mux.HandleFunc(prefix+"failure-modes", c.handleFailureModes)
	mux.HandleFunc(prefix+"monitoring-actions", c.handleMonitoringActions)
	mux.HandleFunc(prefix+"system-reactions", c.handleSystemReactions)
	mux.HandleFunc(prefix+"ingest", c.handleIngest)
	mux.HandleFunc(prefix+"export", c.handleExport)
}

// RowsResponse is the response body of the query endpoints.
type RowsResponse[T any] struct {
	Rows   []T    `json:"rows"`
	SPARQL string `json:"sparql,omitempty"`
}

// IngestErrorResponse is the response body of a failed ingestion.
type IngestErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ----------------------------------------------------------------------------
// GET <prefix>failure-modes
// ----------------------------------------------------------------------------

func (c *Component) handleFailureModes(w http.ResponseWriter, r *http.Request) {
	skill, ok := requiredParam(w, r, "skill")
	if !ok {
		return
	}
	rows, err := c.queries.FailureModeParameters(r.Context(), skill)
	writeRows(c, w, r, query.TemplateFailureModes, skill, rows, err)
}

// ----------------------------------------------------------------------------
// GET <prefix>monitoring-actions
// ----------------------------------------------------------------------------

func (c *Component) handleMonitoringActions(w http.ResponseWriter, r *http.Request) {
	fm, ok := requiredParam(w, r, "failure_mode")
	if !ok {
		return
	}
	rows, err := c.queries.MonitoringActionsFor(r.Context(), fm)
	writeRows(c, w, r, query.TemplateMonitoringActions, fm, rows, err)
}

// ----------------------------------------------------------------------------
// GET <prefix>system-reactions
// ----------------------------------------------------------------------------

func (c *Component) handleSystemReactions(w http.ResponseWriter, r *http.Request) {
	fm, ok := requiredParam(w, r, "failure_mode")
	if !ok {
		return
	}
	rows, err := c.queries.SystemReactionsFor(r.Context(), fm)
	writeRows(c, w, r, query.TemplateSystemReactions, fm, rows, err)
}

func requiredParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		http.Error(w, name+" is required", http.StatusBadRequest)
		return "", false
	}
	return value, true
}

func writeRows[T any](c *Component, w http.ResponseWriter, r *http.Request, template, input string, rows []T, err error) {
	if err != nil {
		c.logger.ErrorContext(r.Context(), "Query failed",
			"template", template,
			"request_id", requestID(r.Context()),
			"error", err)
		http.Error(w, "Query failed", http.StatusInternalServerError)
		return
	}

	resp := RowsResponse[T]{Rows: rows}
	if r.URL.Query().Get("explain") == "true" {
		resp.SPARQL = c.queries.Explain(template, input)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------------------
// POST <prefix>ingest
// ----------------------------------------------------------------------------

func (c *Component) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ingest.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, IngestErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	event, err := req.Event(c.now())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, IngestErrorResponse{Error: err.Error()})
		return
	}

	result, err := c.ingester.Ingest(r.Context(), event)
	if err != nil {
		status := StatusForIngestError(err)
		if status == http.StatusInternalServerError {
			c.logger.ErrorContext(r.Context(), "Ingestion failed",
				"event_id", event.EventID,
				"request_id", requestID(r.Context()),
				"error", err)
		}
		writeJSON(w, status, IngestErrorResponse{Error: err.Error()})
		return
	}

	if c.notifier != nil {
		c.notifier.NotifyIngested(r.Context(), result)
	}
	writeJSON(w, http.StatusOK, result)
}

// StatusForIngestError maps an ingestion error to an HTTP status.
func StatusForIngestError(err error) int {
	switch {
	case errors.Is(err, ingest.ErrInvalidEvent):
		return http.StatusBadRequest
	case errors.Is(err, ingest.ErrUnknownReference):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ----------------------------------------------------------------------------
// GET <prefix>export
// ----------------------------------------------------------------------------

func (c *Component) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := c.store.Export(format)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "Export failed", "format", format, "error", err)
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	info, _ := export.GetFormatInfo(format)
	w.Header().Set("Content-Type", info.MIMEType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// ----------------------------------------------------------------------------
// GET /healthz
// ----------------------------------------------------------------------------

func (c *Component) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"triples": c.store.Len(),
	})
}

// withRequestID tags every request with an id, reusing the caller's if given.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Response is already partially written on error; nothing to report.
	_ = json.NewEncoder(w).Encode(v)
}
