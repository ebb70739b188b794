// Package query provides the fixed read-only lookups over the FMEA graph.
//
// Every template substitutes its inputs as IRIs into a fixed pattern and
// returns distinct rows. Unknown or malformed inputs yield an empty result,
// never an error.
package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/metric"
	"github.com/c360studio/fmeakg/ontology"
)

// Template names, used as metric labels and in logs.
const (
	TemplateFailureModes      = "failure_modes"
	TemplateMonitoringActions = "monitoring_actions"
	TemplateSystemReactions   = "system_reactions"
)

// Store executes pattern queries.
type Store interface {
	Query(q graph.Query) ([]graph.Row, error)
}

// FailureModeParam is one (failure mode, parameter) pair of a skill.
type FailureModeParam struct {
	FailureMode graph.IRI `json:"failure_mode"`
	Params      string    `json:"params"`
}

// MonitoringAction is one applicable monitoring action with its parameters.
type MonitoringAction struct {
	MonitoringAction graph.IRI `json:"monitoring_action"`
	Params           string    `json:"params"`
}

// SystemReaction is one applicable system reaction with its parameters.
type SystemReaction struct {
	SystemReaction graph.IRI `json:"system_reaction"`
	Params         string    `json:"params"`
}

// Templates runs the three read templates against a store.
type Templates struct {
	store         Store
	vocab         ontology.Vocabulary
	defaultAction graph.IRI
	logger        *slog.Logger
	metrics       *metric.Metrics
}

// New creates the query templates. defaultAction is the monitoring action
// that is never recommended; a zero IRI disables the exclusion.
func New(store Store, vocab ontology.Vocabulary, defaultAction graph.IRI, logger *slog.Logger, m *metric.Metrics) *Templates {
	if logger == nil {
		logger = slog.Default()
	}
	return &Templates{
		store:         store,
		vocab:         vocab,
		defaultAction: defaultAction,
		logger:        logger,
		metrics:       m,
	}
}

// DefaultAction returns the excluded monitoring action.
func (t *Templates) DefaultAction() graph.IRI { return t.defaultAction }

// FailureModeParameters returns every (failure mode, param) pair of failure
// modes that prevent the named skill.
func (t *Templates) FailureModeParameters(ctx context.Context, skill string) ([]FailureModeParam, error) {
	q, ok := t.FailureModeParametersQuery(skill)
	if !ok {
		return []FailureModeParam{}, nil
	}

	rows, err := t.run(ctx, TemplateFailureModes, q)
	if err != nil {
		return nil, err
	}

	out := make([]FailureModeParam, 0, len(rows))
	for _, row := range rows {
		fm, ok := row["fm"].(graph.IRI)
		if !ok {
			continue
		}
		out = append(out, FailureModeParam{FailureMode: fm, Params: row["param"].String()})
	}
	return out, nil
}

// MonitoringActionsFor returns the monitoring actions of a failure mode,
// excluding the default action.
func (t *Templates) MonitoringActionsFor(ctx context.Context, failureMode string) ([]MonitoringAction, error) {
	q, ok := t.MonitoringActionsQuery(failureMode)
	if !ok {
		return []MonitoringAction{}, nil
	}

	rows, err := t.run(ctx, TemplateMonitoringActions, q)
	if err != nil {
		return nil, err
	}

	out := make([]MonitoringAction, 0, len(rows))
	for _, row := range rows {
		action, ok := row["monAct"].(graph.IRI)
		if !ok {
			continue
		}
		out = append(out, MonitoringAction{MonitoringAction: action, Params: row["monActParams"].String()})
	}
	return out, nil
}

// SystemReactionsFor returns the system reactions of a failure mode.
func (t *Templates) SystemReactionsFor(ctx context.Context, failureMode string) ([]SystemReaction, error) {
	q, ok := t.SystemReactionsQuery(failureMode)
	if !ok {
		return []SystemReaction{}, nil
	}

	rows, err := t.run(ctx, TemplateSystemReactions, q)
	if err != nil {
		return nil, err
	}

	out := make([]SystemReaction, 0, len(rows))
	for _, row := range rows {
		reaction, ok := row["sysReact"].(graph.IRI)
		if !ok {
			continue
		}
		out = append(out, SystemReaction{SystemReaction: reaction, Params: row["sysReactParams"].String()})
	}
	return out, nil
}

func (t *Templates) run(ctx context.Context, template string, q graph.Query) ([]graph.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if t.logger.Enabled(ctx, slog.LevelDebug) {
		t.logger.DebugContext(ctx, "Executing query template",
			"template", template,
			"sparql", q.SPARQL())
	}

	start := time.Now()
	rows, err := t.store.Query(q)
	t.metrics.RecordQuery(template, len(rows), time.Since(start), err)
	if err != nil {
		t.logger.ErrorContext(ctx, "Query template failed",
			"template", template,
			"error", err)
		return nil, err
	}
	return rows, nil
}
