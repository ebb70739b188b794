package kgresponder

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/ingest"
	"github.com/c360studio/fmeakg/ontology"
	kgapi "github.com/c360studio/fmeakg/processor/kg-api"
	"github.com/c360studio/fmeakg/query"
	"github.com/c360studio/fmeakg/storage"
	"github.com/c360studio/fmeakg/testutil"
)

type recordingNotifier struct {
	mu      sync.Mutex
	results []ingest.Result
}

func (n *recordingNotifier) NotifyIngested(_ context.Context, result ingest.Result) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results = append(n.results, result)
}

func newTestServices(t *testing.T, notifier kgapi.Notifier, opts ...ingest.Option) (Services, *storage.Gateway) {
	t.Helper()
	gw, err := storage.Open(testutil.MemFS(t), testutil.OntologyPath)
	require.NoError(t, err)

	vocab := ontology.MustVocabulary(ontology.DefaultNamespace())
	svc := Services{
		Queries:  query.New(gw, vocab, graph.MustIRI(testutil.MonActDefault), nil, nil),
		Ingester: ingest.NewIngester(gw, vocab, opts...),
		Notifier: notifier,
	}
	return svc, gw
}

func newTestResponder(t *testing.T, notifier kgapi.Notifier, opts ...ingest.Option) (*Component, *storage.Gateway) {
	t.Helper()
	svc, gw := newTestServices(t, notifier, opts...)
	c, err := NewComponent(nil, component.Dependencies{}, svc)
	require.NoError(t, err)
	return c, gw
}

// startEmbeddedNATS runs an in-process server on a random port and returns
// a connected platform client plus a raw connection acting as the peer.
func startEmbeddedNATS(t *testing.T) (*natsclient.Client, *nats.Conn) {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Port: -1, JetStream: true, StoreDir: t.TempDir(), NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server failed to start")
	}
	t.Cleanup(ns.Shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := natsclient.NewClient(ns.ClientURL(), natsclient.WithName("kg-responder-test"))
	require.NoError(t, err)
	require.NoError(t, client.Connect(ctx))
	require.NoError(t, client.WaitForConnection(ctx))
	t.Cleanup(func() { _ = client.Close(context.Background()) })

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	return client, nc
}

func TestSubject(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"fmea", "fmea.ingest"},
		{"fmea.", "fmea.ingest"},
		{".plant.cell1.", "plant.cell1.ingest"},
		{"", "ingest"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, subjectFor(tt.prefix, SubjectIngest), "prefix %q", tt.prefix)
	}
}

func TestHandleQueries(t *testing.T) {
	r, _ := newTestResponder(t, nil)
	ctx := context.Background()

	resp := r.handle(ctx, "fmea.query.failure_modes", []byte(`{"skill":"weld_step"}`))
	require.Equal(t, http.StatusOK, resp.Code, resp.Error)
	assert.Len(t, resp.Data, 3)
	assert.Empty(t, resp.SPARQL)

	resp = r.handle(ctx, "fmea.query.monitoring_actions",
		[]byte(`{"failure_mode":"`+testutil.FailureModeOverheating+`","explain":true}`))
	require.Equal(t, http.StatusOK, resp.Code, resp.Error)
	assert.Len(t, resp.Data, 2)
	assert.Contains(t, resp.SPARQL, "op:monitorsFailureMode")

	resp = r.handle(ctx, "fmea.query.system_reactions",
		[]byte(`{"failure_mode":"`+testutil.FailureModeWireJam+`"}`))
	require.Equal(t, http.StatusOK, resp.Code, resp.Error)
	rows, ok := resp.Data.([]query.SystemReaction)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, testutil.ReactionStopProcess, rows[0].SystemReaction.String())
}

func TestHandleRejectsBadRequests(t *testing.T) {
	r, _ := newTestResponder(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		subject string
		data    string
		want    int
	}{
		{"malformed json", "fmea.query.failure_modes", `{`, http.StatusBadRequest},
		{"missing skill", "fmea.query.failure_modes", `{"failure_mode":"x"}`, http.StatusBadRequest},
		{"missing failure mode", "fmea.query.system_reactions", `{}`, http.StatusBadRequest},
		{"unknown subject", "fmea.query.other", `{}`, http.StatusNotFound},
		{"invalid event", "fmea.ingest", `{"event_id":"e1"}`, http.StatusBadRequest},
		{"malformed iri", "fmea.ingest", `{"event_id":"e1","skill":"weld_step","system_reaction":"a b"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := r.handle(ctx, tt.subject, []byte(tt.data))
			assert.Equal(t, tt.want, resp.Code)
			assert.NotEmpty(t, resp.Error)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestHandleIngest(t *testing.T) {
	notifier := &recordingNotifier{}
	r, gw := newTestResponder(t, notifier)

	resp := r.handle(context.Background(), "fmea.ingest",
		[]byte(`{"event_id":"n1","skill":"drill_step","failure_mode":"`+testutil.FailureModeBitBreak+`","snapshot":"{}"}`))
	require.Equal(t, http.StatusOK, resp.Code, resp.Error)

	result, ok := resp.Data.(ingest.Result)
	require.True(t, ok)
	assert.Equal(t, testutil.Namespace+"FM_n1_1", result.OccurredFailure)
	assert.False(t, result.UnknownFailure)
	assert.Equal(t, testutil.OntologyTriples+result.Added, gw.Len())
	require.Len(t, notifier.results, 1)
	assert.Equal(t, "n1", notifier.results[0].EventID)
}

func TestHandleIngestUnknownReference(t *testing.T) {
	notifier := &recordingNotifier{}
	r, gw := newTestResponder(t, notifier, ingest.WithReferenceValidation(true))

	resp := r.handle(context.Background(), "fmea.ingest",
		[]byte(`{"event_id":"n2","skill":"grind_step","snapshot":"{}"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, testutil.OntologyTriples, gw.Len())
	assert.Empty(t, notifier.results)
}

func TestResponderOverNATS(t *testing.T) {
	client, nc := startEmbeddedNATS(t)

	pub := NewPublisher(client, "fmea", nil)
	assert.Equal(t, "fmea.events.ingested", pub.Subject())

	svc, _ := newTestServices(t, pub)
	r, err := NewComponent(json.RawMessage(`{"subject_prefix":"fmea"}`), component.Dependencies{NATSClient: client}, svc)
	require.NoError(t, err)
	require.NoError(t, r.Initialize())

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	t.Cleanup(func() { _ = r.Stop(time.Second) })
	require.NoError(t, nc.Flush())

	events := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe(pub.Subject(), events)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Unsubscribe() })

	msg, err := nc.Request("fmea.query.failure_modes", []byte(`{"skill":"drill_step"}`), 2*time.Second)
	require.NoError(t, err)

	var queryResp struct {
		Code int                      `json:"code"`
		Data []query.FailureModeParam `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &queryResp))
	assert.Equal(t, http.StatusOK, queryResp.Code)
	require.Len(t, queryResp.Data, 1)
	assert.Equal(t, "torque>12", queryResp.Data[0].Params)

	msg, err = nc.Request("fmea.ingest", []byte(`{"event_id":"nats1","skill":"paint_step","snapshot":"s"}`), 2*time.Second)
	require.NoError(t, err)

	var ingestResp struct {
		Code int           `json:"code"`
		Data ingest.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &ingestResp))
	assert.Equal(t, http.StatusOK, ingestResp.Code)
	assert.True(t, ingestResp.Data.UnknownFailure)

	select {
	case evt := <-events:
		var published ingest.Result
		require.NoError(t, json.Unmarshal(evt.Data, &published))
		assert.Equal(t, ingestResp.Data, published)
	case <-time.After(2 * time.Second):
		t.Fatal("no ingestion event published")
	}

	assert.True(t, r.Health().Healthy)
	assert.Equal(t, 0, r.Health().ErrorCount)
	assert.False(t, r.DataFlow().LastActivity.IsZero())
}

func TestPublisherJetStream(t *testing.T) {
	client, _ := startEmbeddedNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := EnsureEventStream(ctx, client, "FMEA_EVENTS", "fmea")
	require.NoError(t, err)

	pub := NewPublisher(client, "fmea", nil, WithDurable())
	pub.NotifyIngested(ctx, ingest.Result{Success: true, EventID: "js1"})

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)

	msg, err := stream.GetLastMsgForSubject(ctx, "fmea.events.ingested")
	require.NoError(t, err)
	var published ingest.Result
	require.NoError(t, json.Unmarshal(msg.Data, &published))
	assert.Equal(t, "js1", published.EventID)
}
