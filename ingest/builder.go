package ingest

import (
	"fmt"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/ontology"
)

// Reference is a pre-existing definition an ingestion links to, with the
// class it is expected to have.
type Reference struct {
	IRI   graph.IRI
	Class graph.IRI
}

// Plan is the outcome of building an event: the derived node ids and the
// batch of triples to commit.
type Plan struct {
	OccurredFailure           graph.IRI
	ExecutedSR                Optional[graph.IRI]
	ExecutedMonitoringActions []graph.IRI
	Triples                   []graph.Triple
	References                []Reference
}

// Builder turns events into triple batches.
type Builder struct {
	vocab ontology.Vocabulary
	ids   ontology.IDGenerator
}

// NewBuilder creates a builder for a resolved vocabulary.
func NewBuilder(vocab ontology.Vocabulary) *Builder {
	return &Builder{
		vocab: vocab,
		ids:   ontology.NewIDGenerator(vocab.Namespace),
	}
}

// Build derives the node ids of an event and the triples that record it.
// Triples are ordered: occurred failure, executed reaction, executed
// monitoring actions. Build has no side effects.
func (b *Builder) Build(e Event) (Plan, error) {
	if err := e.Validate(); err != nil {
		return Plan{}, err
	}
	v := b.vocab

	skill, err := v.FunctionIRI(e.InterruptedSkill)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: skill %q: %w", ErrInvalidEvent, e.InterruptedSkill, err)
	}

	marker := ontology.MarkerUnknownFailure
	if e.KnownCause() {
		marker = ontology.MarkerKnownFailure
	}
	occurred, err := b.ids.MakeOrdinalID(e.EventID, marker, 1)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	monActIDs, err := b.ids.MakeIDList(e.EventID, ontology.MarkerMonitoringAction, len(e.MonitoringActions))
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	plan := Plan{
		OccurredFailure:           occurred,
		ExecutedMonitoringActions: monActIDs,
		References:                []Reference{{IRI: skill, Class: v.ClassFunction}},
	}

	reaction, hasReaction := e.SystemReaction.Get()
	if hasReaction {
		srID, err := b.ids.MakeOrdinalID(e.EventID, ontology.MarkerSystemReaction, 1)
		if err != nil {
			return Plan{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		plan.ExecutedSR = Some(srID)
	}

	add := func(s graph.Term, p graph.IRI, o graph.Term) {
		plan.Triples = append(plan.Triples, graph.Triple{Subject: s, Predicate: p, Object: o})
	}

	// Occurred failure
	add(occurred, graph.RDFType, v.ClassOccurredFailure)
	if fm, ok := e.FailureMode.Get(); ok {
		add(fm, v.PropOccurredWithStamp, occurred)
		plan.References = append(plan.References, Reference{IRI: fm, Class: v.ClassFailureMode})
	} else {
		add(occurred, v.DataIsUnknownFailure, graph.NewBooleanLiteral(true))
	}
	add(occurred, v.DataHasOccuredFailureParams, graph.NewStringLiteral(e.Snapshot))
	if summary, ok := e.Summary.Get(); ok {
		add(occurred, v.DataHasOccuredFailureSummary, graph.NewStringLiteral(summary))
	}
	add(occurred, v.PropPreventedFunction, skill)

	// Executed system reaction
	if srID, ok := plan.ExecutedSR.Get(); ok {
		add(srID, graph.RDFType, v.ClassExecutedSR)
		add(srID, v.PropExecutedBecauseOfFM, occurred)
		add(reaction, v.PropHasSRExecutionStamp, srID)
		plan.References = append(plan.References, Reference{IRI: reaction, Class: v.ClassSystemReaction})
	}

	// Executed monitoring actions, paired positionally with the input
	for i, id := range monActIDs {
		add(id, graph.RDFType, v.ClassExecutedMonAct)
		add(id, v.PropExecutedBecauseOfFM, occurred)
		if action, ok := e.MonitoringActions[i].Get(); ok {
			add(action, v.PropHasMExecutionStamp, id)
			plan.References = append(plan.References, Reference{IRI: action, Class: v.ClassMonitoringAction})
		}
	}

	return plan, nil
}
