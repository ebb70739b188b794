package ontology

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/c360studio/fmeakg/graph"
)

// ErrInvalidEventID is returned for event ids that cannot form an IRI.
var ErrInvalidEventID = errors.New("invalid event id")

// Marker tags the kind of node an identifier belongs to. The prefix scheme is
// kept for compatibility with existing graphs; the graph itself records
// whether a cause was known, so consumers need not parse it.
type Marker string

// Markers used by ingestion.
const (
	MarkerKnownFailure     Marker = "FM_"
	MarkerUnknownFailure   Marker = "UFM_"
	MarkerMonitoringAction Marker = "M_"
	MarkerSystemReaction   Marker = "SR_"
)

// IDGenerator derives node identifiers from an external event id. The output
// is a pure function of its inputs.
type IDGenerator struct {
	ns Namespace
}

// NewIDGenerator returns a generator for ns.
func NewIDGenerator(ns Namespace) IDGenerator {
	return IDGenerator{ns: ns}
}

// MakeID returns {namespace}{separator}{marker}{eventID}.
func (g IDGenerator) MakeID(eventID string, marker Marker) (graph.IRI, error) {
	if eventID == "" {
		return graph.IRI{}, fmt.Errorf("%w: empty", ErrInvalidEventID)
	}
	iri, err := g.ns.Individual(string(marker) + eventID)
	if err != nil {
		return graph.IRI{}, fmt.Errorf("%w %q: %v", ErrInvalidEventID, eventID, err)
	}
	return iri, nil
}

// MakeOrdinalID returns {namespace}{separator}{marker}{eventID}_{ordinal}.
// Ordinals start at 1.
func (g IDGenerator) MakeOrdinalID(eventID string, marker Marker, ordinal int) (graph.IRI, error) {
	if eventID == "" {
		return graph.IRI{}, fmt.Errorf("%w: empty", ErrInvalidEventID)
	}
	if ordinal < 1 {
		return graph.IRI{}, fmt.Errorf("ordinal must be >= 1, got %d", ordinal)
	}
	return g.MakeID(eventID+"_"+strconv.Itoa(ordinal), marker)
}

// MakeIDList returns count identifiers with ordinals 1..count in order.
// A count of zero yields an empty slice.
func (g IDGenerator) MakeIDList(eventID string, marker Marker, count int) ([]graph.IRI, error) {
	if count < 0 {
		return nil, fmt.Errorf("count must be >= 0, got %d", count)
	}
	ids := make([]graph.IRI, 0, count)
	for i := 1; i <= count; i++ {
		id, err := g.MakeOrdinalID(eventID, marker, i)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
