package query

import (
	"github.com/c360studio/fmeakg/graph"
)

// FailureModeParametersQuery builds the failure-mode-parameters pattern for a
// skill. It reports false if the skill does not form a valid IRI.
func (t *Templates) FailureModeParametersQuery(skill string) (graph.Query, bool) {
	skillIRI, err := t.vocab.FunctionIRI(skill)
	if err != nil {
		return graph.Query{}, false
	}

	v := t.vocab
	return graph.Query{
		Prefixes: v.Namespace.Prefixes(),
		Select:   []graph.Var{"fm", "param"},
		Distinct: true,
		Where: []graph.Pattern{
			{Subject: graph.V("fm"), Predicate: graph.T(graph.RDFType), Object: graph.T(v.ClassFailureMode)},
			{Subject: graph.V("fm"), Predicate: graph.T(v.PropPreventsFunction), Object: graph.T(skillIRI)},
			{Subject: graph.V("fm"), Predicate: graph.T(v.DataHasFailureModeParams), Object: graph.V("param")},
			{Subject: graph.T(skillIRI), Predicate: graph.T(graph.RDFType), Object: graph.T(v.ClassFunction)},
		},
	}, true
}

// MonitoringActionsQuery builds the monitoring-actions pattern for a failure
// mode IRI. It reports false if the input is not a valid IRI.
func (t *Templates) MonitoringActionsQuery(failureMode string) (graph.Query, bool) {
	fm, err := graph.NewIRI(failureMode)
	if err != nil {
		return graph.Query{}, false
	}

	v := t.vocab
	q := graph.Query{
		Prefixes: v.Namespace.Prefixes(),
		Select:   []graph.Var{"monAct", "monActParams"},
		Distinct: true,
		Where: []graph.Pattern{
			{Subject: graph.T(fm), Predicate: graph.T(graph.RDFType), Object: graph.T(v.ClassFailureMode)},
			{Subject: graph.V("monAct"), Predicate: graph.T(graph.RDFType), Object: graph.T(v.ClassMonitoringAction)},
			{Subject: graph.V("monAct"), Predicate: graph.T(v.PropMonitorsFailureMode), Object: graph.T(fm)},
			{Subject: graph.V("monAct"), Predicate: graph.T(v.DataHasMonActParams), Object: graph.V("monActParams")},
		},
	}
	if !t.defaultAction.IsZero() {
		q.Filters = []graph.Filter{{Var: "monAct", NotEqual: t.defaultAction}}
	}
	return q, true
}

// SystemReactionsQuery builds the system-reactions pattern for a failure mode
// IRI. It reports false if the input is not a valid IRI.
func (t *Templates) SystemReactionsQuery(failureMode string) (graph.Query, bool) {
	fm, err := graph.NewIRI(failureMode)
	if err != nil {
		return graph.Query{}, false
	}

	v := t.vocab
	return graph.Query{
		Prefixes: v.Namespace.Prefixes(),
		Select:   []graph.Var{"sysReact", "sysReactParams"},
		Distinct: true,
		Where: []graph.Pattern{
			{Subject: graph.T(fm), Predicate: graph.T(graph.RDFType), Object: graph.T(v.ClassFailureMode)},
			{Subject: graph.V("sysReact"), Predicate: graph.T(graph.RDFType), Object: graph.T(v.ClassSystemReaction)},
			{Subject: graph.V("sysReact"), Predicate: graph.T(v.PropReactsOnFailureMode), Object: graph.T(fm)},
			{Subject: graph.V("sysReact"), Predicate: graph.T(v.DataHasSysReactParams), Object: graph.V("sysReactParams")},
		},
	}, true
}

// Explain renders the SPARQL text of a template for the given input. It
// returns an empty string if the input cannot form a valid IRI.
func (t *Templates) Explain(template, input string) string {
	var (
		q  graph.Query
		ok bool
	)
	switch template {
	case TemplateFailureModes:
		q, ok = t.FailureModeParametersQuery(input)
	case TemplateMonitoringActions:
		q, ok = t.MonitoringActionsQuery(input)
	case TemplateSystemReactions:
		q, ok = t.SystemReactionsQuery(input)
	}
	if !ok {
		return ""
	}
	return q.SPARQL()
}
