package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/fmeakg/graph"
)

// EventIDLayout is the timestamp layout appended to a correlation id.
const EventIDLayout = "2006-01-02_15-04-05"

// SnapshotMarker brackets a wrapped inventory snapshot.
const SnapshotMarker = "==InventorySnapshot=="

// Event is one observed failure to be recorded in the graph.
type Event struct {
	// EventID is the caller-supplied unique id all node ids derive from.
	EventID string

	// FailureMode is the identified cause. Absent means an unknown failure.
	FailureMode Optional[graph.IRI]

	// MonitoringActions lists the executed monitoring actions in order. An
	// absent slot records an execution without a known definition.
	MonitoringActions []Optional[graph.IRI]

	// SystemReaction is the executed reaction, if any.
	SystemReaction Optional[graph.IRI]

	// InterruptedSkill is the local name of the Function whose execution failed.
	InterruptedSkill string

	// InterruptedProcess names the process that was running. It is logged
	// but not stored.
	InterruptedProcess string

	// Summary is an optional free-text description.
	Summary Optional[string]

	// Snapshot is the serialized controller state at failure time.
	Snapshot string
}

// Validate checks the fields every ingestion requires.
func (e Event) Validate() error {
	if strings.TrimSpace(e.EventID) == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidEvent)
	}
	if strings.TrimSpace(e.InterruptedSkill) == "" {
		return fmt.Errorf("%w: interrupted skill is required", ErrInvalidEvent)
	}
	return nil
}

// KnownCause reports whether the event names its failure mode.
func (e Event) KnownCause() bool {
	return e.FailureMode.IsSome()
}

// EventIDFromCorrelation derives an event id from a correlation id and the
// local time of the failure.
func EventIDFromCorrelation(correlationID string, ts time.Time) string {
	return correlationID + "_" + ts.Format(EventIDLayout)
}

// WrapSnapshot brackets a snapshot payload with inventory markers. A payload
// that is already bracketed is returned unchanged.
func WrapSnapshot(payload string) string {
	return SnapshotMarker + unwrapSnapshot(payload) + SnapshotMarker
}

// unwrapSnapshot strips inventory markers. Unwrapped payloads are returned as is.
func unwrapSnapshot(s string) string {
	if len(s) >= 2*len(SnapshotMarker) &&
		strings.HasPrefix(s, SnapshotMarker) && strings.HasSuffix(s, SnapshotMarker) {
		return s[len(SnapshotMarker) : len(s)-len(SnapshotMarker)]
	}
	return s
}
