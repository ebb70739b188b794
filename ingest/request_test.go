package ingest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/fmeakg/graph"
)

func TestIRIListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		json string
		want IRIList
	}{
		{"null", `{"monitoring_actions": null}`, nil},
		{"missing", `{}`, nil},
		{"empty string", `{"monitoring_actions": ""}`, nil},
		{"single string", `{"monitoring_actions": "http://x.org/a"}`, IRIList{"http://x.org/a"}},
		{"array", `{"monitoring_actions": ["http://x.org/a", "http://x.org/b"]}`, IRIList{"http://x.org/a", "http://x.org/b"}},
		{"array with gaps", `{"monitoring_actions": ["http://x.org/a", null, ""]}`, IRIList{"http://x.org/a", "", ""}},
		{"empty array", `{"monitoring_actions": []}`, IRIList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))
			assert.Equal(t, tt.want, req.MonitoringActions)
		})
	}

	var req Request
	assert.Error(t, json.Unmarshal([]byte(`{"monitoring_actions": 42}`), &req))
}

func TestRequestEvent(t *testing.T) {
	req := Request{
		EventID:           "evt1",
		FailureMode:       ns + "OverheatingFM",
		MonitoringActions: IRIList{ns + "checkTemperature", ""},
		SystemReaction:    "",
		Skill:             " weld_step ",
		Process:           "Welding",
		Summary:           "too hot",
		Snapshot:          "{}",
		WrapSnapshot:      true,
	}

	e, err := req.Event(time.Now())
	require.NoError(t, err)

	assert.Equal(t, "evt1", e.EventID)
	assert.Equal(t, Some(nsIRI("OverheatingFM")), e.FailureMode)
	assert.Equal(t, []Optional[graph.IRI]{someIRI("checkTemperature"), None[graph.IRI]()}, e.MonitoringActions)
	assert.False(t, e.SystemReaction.IsSome())
	assert.Equal(t, "weld_step", e.InterruptedSkill)
	assert.Equal(t, "Welding", e.InterruptedProcess)
	assert.Equal(t, Some("too hot"), e.Summary)
	assert.Equal(t, "==InventorySnapshot=={}==InventorySnapshot==", e.Snapshot)
}

func TestRequestEventIDFromCorrelation(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 5, 7, 0, time.UTC)

	e, err := Request{CorrelationID: "corr42", Timestamp: &ts, Skill: "weld_step"}.Event(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "corr42_2025-03-14_09-05-07", e.EventID)

	e, err = Request{CorrelationID: "corr42", Skill: "weld_step"}.Event(ts)
	require.NoError(t, err)
	assert.Equal(t, "corr42_2025-03-14_09-05-07", e.EventID, "falls back to now")

	e, err = Request{EventID: "explicit", CorrelationID: "corr42", Skill: "weld_step"}.Event(ts)
	require.NoError(t, err)
	assert.Equal(t, "explicit", e.EventID)
}

func TestRequestEventInvalid(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"no id", Request{Skill: "weld_step"}},
		{"no skill", Request{EventID: "e"}},
		{"malformed failure mode", Request{EventID: "e", Skill: "weld_step", FailureMode: "not an iri"}},
		{"malformed reaction", Request{EventID: "e", Skill: "weld_step", SystemReaction: "coolDown"}},
		{"malformed monitoring action", Request{EventID: "e", Skill: "weld_step", MonitoringActions: IRIList{"http://x.org/a b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Event(time.Now())
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestResultJSON(t *testing.T) {
	data, err := json.Marshal(Result{
		Success:                   true,
		OccurredFailure:           ns + "UFM_e_1",
		ExecutedMonitoringActions: []string{},
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, true, got["success"])
	assert.NotContains(t, got, "executed_sr")
	assert.Equal(t, []any{}, got["executed_monitoring_actions"])
}
