package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/c360studio/fmeakg/graph"
)

// IRIList decodes from a JSON string, an array of strings or null. An empty
// string is an empty list; null array entries are empty slots.
type IRIList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *IRIList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		*l = IRIList{s}
		return nil
	}

	var items []*string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("monitoring actions must be a string or an array: %w", err)
	}
	out := make(IRIList, len(items))
	for i, item := range items {
		if item != nil {
			out[i] = *item
		}
	}
	*l = out
	return nil
}

// Request is the transport form of an ingestion.
type Request struct {
	EventID           string     `json:"event_id,omitempty"`
	CorrelationID     string     `json:"correlation_id,omitempty"`
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	FailureMode       string     `json:"failure_mode,omitempty"`
	MonitoringActions IRIList    `json:"monitoring_actions,omitempty"`
	SystemReaction    string     `json:"system_reaction,omitempty"`
	Skill             string     `json:"skill"`
	Process           string     `json:"process,omitempty"`
	Summary           string     `json:"summary,omitempty"`
	Snapshot          string     `json:"snapshot"`
	WrapSnapshot      bool       `json:"wrap_snapshot,omitempty"`
}

// Event converts the request. Without an event id, one is derived from the
// correlation id and the timestamp (now if unset).
func (r Request) Event(now time.Time) (Event, error) {
	eventID := strings.TrimSpace(r.EventID)
	if eventID == "" && r.CorrelationID != "" {
		ts := now
		if r.Timestamp != nil {
			ts = *r.Timestamp
		}
		eventID = EventIDFromCorrelation(r.CorrelationID, ts)
	}

	fm, err := OptionalIRI(r.FailureMode)
	if err != nil {
		return Event{}, fmt.Errorf("failure mode: %w", err)
	}
	sr, err := OptionalIRI(r.SystemReaction)
	if err != nil {
		return Event{}, fmt.Errorf("system reaction: %w", err)
	}

	actions := make([]Optional[graph.IRI], 0, len(r.MonitoringActions))
	for i, s := range r.MonitoringActions {
		action, err := OptionalIRI(s)
		if err != nil {
			return Event{}, fmt.Errorf("monitoring action %d: %w", i+1, err)
		}
		actions = append(actions, action)
	}

	snapshot := r.Snapshot
	if r.WrapSnapshot {
		snapshot = WrapSnapshot(snapshot)
	}

	e := Event{
		EventID:            eventID,
		FailureMode:        fm,
		MonitoringActions:  actions,
		SystemReaction:     sr,
		InterruptedSkill:   strings.TrimSpace(r.Skill),
		InterruptedProcess: r.Process,
		Summary:            OptionalString(r.Summary),
		Snapshot:           snapshot,
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}
