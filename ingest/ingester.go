package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/metric"
	"github.com/c360studio/fmeakg/ontology"
)

// Store commits triple batches durably.
type Store interface {
	// Commit adds the batch and persists the graph, returning how many
	// triples were new. On error no triple of the batch remains added.
	Commit(batch []graph.Triple) (int, error)

	// Has reports whether the graph contains t.
	Has(t graph.Triple) bool
}

// Result reports one successful ingestion.
type Result struct {
	Success                   bool     `json:"success"`
	EventID                   string   `json:"event_id"`
	OccurredFailure           string   `json:"occurred_failure"`
	UnknownFailure            bool     `json:"unknown_failure"`
	ExecutedSR                string   `json:"executed_sr,omitempty"`
	ExecutedMonitoringActions []string `json:"executed_monitoring_actions"`
	Triples                   int      `json:"triples"`
	Added                     int      `json:"added"`
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingester) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metric.Metrics) Option {
	return func(i *Ingester) { i.metrics = m }
}

// WithReferenceValidation makes ingestion reject links to definitions that
// are not typed instances of their expected class.
func WithReferenceValidation(enabled bool) Option {
	return func(i *Ingester) { i.validateReferences = enabled }
}

// Ingester records failure events in the graph. Build and commit of one event
// run under a single lock, so concurrent callers never interleave.
type Ingester struct {
	mu                 sync.Mutex
	store              Store
	builder            *Builder
	validateReferences bool
	logger             *slog.Logger
	metrics            *metric.Metrics
}

// NewIngester creates an ingester writing to store.
func NewIngester(store Store, vocab ontology.Vocabulary, opts ...Option) *Ingester {
	i := &Ingester{
		store:   store,
		builder: NewBuilder(vocab),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest builds the triples of an event and commits them as one batch.
// Any error means nothing of the event was committed.
func (i *Ingester) Ingest(ctx context.Context, e Event) (Result, error) {
	result, err := i.ingest(ctx, e)
	i.metrics.RecordIngest(metric.Outcome(err, ErrInvalidEvent, ErrUnknownReference), e.KnownCause(), result.Added)
	return result, err
}

func (i *Ingester) ingest(ctx context.Context, e Event) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	plan, err := i.builder.Build(e)
	if err != nil {
		i.logger.WarnContext(ctx, "Rejected failure event",
			"event_id", e.EventID,
			"error", err)
		return Result{}, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.validateReferences {
		if err := i.checkReferences(plan.References); err != nil {
			i.logger.WarnContext(ctx, "Rejected failure event",
				"event_id", e.EventID,
				"error", err)
			return Result{}, err
		}
	}

	added, err := i.store.Commit(plan.Triples)
	if err != nil {
		i.logger.ErrorContext(ctx, "Failed to commit failure event",
			"event_id", e.EventID,
			"triples", len(plan.Triples),
			"error", err)
		return Result{}, fmt.Errorf("commit event %s: %w", e.EventID, err)
	}

	result := Result{
		Success:                   true,
		EventID:                   e.EventID,
		OccurredFailure:           plan.OccurredFailure.String(),
		UnknownFailure:            !e.KnownCause(),
		ExecutedMonitoringActions: make([]string, 0, len(plan.ExecutedMonitoringActions)),
		Triples:                   len(plan.Triples),
		Added:                     added,
	}
	if sr, ok := plan.ExecutedSR.Get(); ok {
		result.ExecutedSR = sr.String()
	}
	for _, id := range plan.ExecutedMonitoringActions {
		result.ExecutedMonitoringActions = append(result.ExecutedMonitoringActions, id.String())
	}

	if added < len(plan.Triples) {
		i.logger.WarnContext(ctx, "Event id collides with recorded triples",
			"event_id", e.EventID,
			"triples", len(plan.Triples),
			"added", added)
	}
	i.logger.InfoContext(ctx, "Ingested failure event",
		"event_id", e.EventID,
		"occurred_failure", result.OccurredFailure,
		"skill", e.InterruptedSkill,
		"process", e.InterruptedProcess,
		"monitoring_actions", len(result.ExecutedMonitoringActions),
		"triples", result.Triples,
		"added", added)
	return result, nil
}

func (i *Ingester) checkReferences(refs []Reference) error {
	for _, ref := range refs {
		typed := graph.Triple{Subject: ref.IRI, Predicate: graph.RDFType, Object: ref.Class}
		if !i.store.Has(typed) {
			return fmt.Errorf("%w: %s is not a %s", ErrUnknownReference, ref.IRI, ref.Class)
		}
	}
	return nil
}
