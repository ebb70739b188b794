package ontology

import (
	"fmt"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/vocabulary/fmea"
)

// Vocabulary holds the class and property IRIs resolved against one namespace.
type Vocabulary struct {
	Namespace Namespace

	ClassFunction         graph.IRI
	ClassFailureMode      graph.IRI
	ClassMonitoringAction graph.IRI
	ClassSystemReaction   graph.IRI
	ClassOccurredFailure  graph.IRI
	ClassExecutedSR       graph.IRI
	ClassExecutedMonAct   graph.IRI

	PropPreventsFunction    graph.IRI
	PropMonitorsFailureMode graph.IRI
	PropReactsOnFailureMode graph.IRI
	PropOccurredWithStamp   graph.IRI
	PropPreventedFunction   graph.IRI
	PropExecutedBecauseOfFM graph.IRI
	PropHasSRExecutionStamp graph.IRI
	PropHasMExecutionStamp  graph.IRI

	DataHasFailureModeParams     graph.IRI
	DataHasMonActParams          graph.IRI
	DataHasSysReactParams        graph.IRI
	DataHasOccuredFailureParams  graph.IRI
	DataHasOccuredFailureSummary graph.IRI
	DataIsUnknownFailure         graph.IRI
}

// NewVocabulary resolves every vocabulary term against ns.
func NewVocabulary(ns Namespace) (Vocabulary, error) {
	if err := ns.Validate(); err != nil {
		return Vocabulary{}, err
	}

	v := Vocabulary{Namespace: ns}
	terms := []struct {
		dst     *graph.IRI
		resolve func(string) (graph.IRI, error)
		local   string
	}{
		{&v.ClassFunction, ns.Class, fmea.ClassFunction},
		{&v.ClassFailureMode, ns.Class, fmea.ClassFailureMode},
		{&v.ClassMonitoringAction, ns.Class, fmea.ClassMonitoringAction},
		{&v.ClassSystemReaction, ns.Class, fmea.ClassSystemReaction},
		{&v.ClassOccurredFailure, ns.Class, fmea.ClassOccurredFailure},
		{&v.ClassExecutedSR, ns.Class, fmea.ClassExecutedSR},
		{&v.ClassExecutedMonAct, ns.Class, fmea.ClassExecutedMonAct},

		{&v.PropPreventsFunction, ns.ObjectProperty, fmea.PropPreventsFunction},
		{&v.PropMonitorsFailureMode, ns.ObjectProperty, fmea.PropMonitorsFailureMode},
		{&v.PropReactsOnFailureMode, ns.ObjectProperty, fmea.PropReactsOnFailureMode},
		{&v.PropOccurredWithStamp, ns.ObjectProperty, fmea.PropOccurredWithStamp},
		{&v.PropPreventedFunction, ns.ObjectProperty, fmea.PropPreventedFunction},
		{&v.PropExecutedBecauseOfFM, ns.ObjectProperty, fmea.PropExecutedBecauseOfFM},
		{&v.PropHasSRExecutionStamp, ns.ObjectProperty, fmea.PropHasSRExecutionStamp},
		{&v.PropHasMExecutionStamp, ns.ObjectProperty, fmea.PropHasMExecutionStamp},

		{&v.DataHasFailureModeParams, ns.DataProperty, fmea.DataHasFailureModeParams},
		{&v.DataHasMonActParams, ns.DataProperty, fmea.DataHasMonActParams},
		{&v.DataHasSysReactParams, ns.DataProperty, fmea.DataHasSysReactParams},
		{&v.DataHasOccuredFailureParams, ns.DataProperty, fmea.DataHasOccuredFailureParams},
		{&v.DataHasOccuredFailureSummary, ns.DataProperty, fmea.DataHasOccuredFailureSummary},
		{&v.DataIsUnknownFailure, ns.DataProperty, fmea.DataIsUnknownFailure},
	}
	for _, term := range terms {
		iri, err := term.resolve(term.local)
		if err != nil {
			return Vocabulary{}, fmt.Errorf("resolve %s: %w", term.local, err)
		}
		*term.dst = iri
	}
	return v, nil
}

// MustVocabulary is NewVocabulary for known-good namespaces.
func MustVocabulary(ns Namespace) Vocabulary {
	v, err := NewVocabulary(ns)
	if err != nil {
		panic(err)
	}
	return v
}

// FunctionIRI returns the IRI of the Function individual for a skill name.
func (v Vocabulary) FunctionIRI(skill string) (graph.IRI, error) {
	return v.Namespace.Individual(skill)
}

// PredicateIRI returns the resolved IRI of a registered dotted predicate name.
func (v Vocabulary) PredicateIRI(name string) (graph.IRI, bool) {
	switch name {
	case fmea.PreventsFunction:
		return v.PropPreventsFunction, true
	case fmea.MonitorsFailureMode:
		return v.PropMonitorsFailureMode, true
	case fmea.ReactsOnFailureMode:
		return v.PropReactsOnFailureMode, true
	case fmea.OccurredWithStamp:
		return v.PropOccurredWithStamp, true
	case fmea.PreventedFunction:
		return v.PropPreventedFunction, true
	case fmea.ExecutedBecauseOfFM:
		return v.PropExecutedBecauseOfFM, true
	case fmea.SRExecutionStamp:
		return v.PropHasSRExecutionStamp, true
	case fmea.MExecutionStamp:
		return v.PropHasMExecutionStamp, true
	case fmea.OccurredFailureParams:
		return v.DataHasOccuredFailureParams, true
	case fmea.OccurredFailureSummary:
		return v.DataHasOccuredFailureSummary, true
	case fmea.UnknownFailure:
		return v.DataIsUnknownFailure, true
	case fmea.FailureModeParams:
		return v.DataHasFailureModeParams, true
	case fmea.MonActParams:
		return v.DataHasMonActParams, true
	case fmea.SysReactParams:
		return v.DataHasSysReactParams, true
	}
	return graph.IRI{}, false
}
