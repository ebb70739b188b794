package kgresponder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/fmeakg/ingest"
)

// Publisher announces successful ingestions on <prefix>.events.ingested.
// A durable publisher stores the announcements in JetStream.
type Publisher struct {
	client  *natsclient.Client
	durable bool
	subject string
	logger  *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithDurable publishes through JetStream instead of core NATS.
func WithDurable() PublisherOption {
	return func(p *Publisher) { p.durable = true }
}

// NewPublisher creates a publisher for the given subject prefix.
func NewPublisher(client *natsclient.Client, prefix string, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Publisher{client: client, subject: subjectFor(prefix, SubjectIngested), logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subject returns the subject events are published on.
func (p *Publisher) Subject() string { return p.subject }

// NotifyIngested publishes the result. Publish failures are only logged.
func (p *Publisher) NotifyIngested(ctx context.Context, result ingest.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		p.logger.ErrorContext(ctx, "Marshal ingestion event failed", "event_id", result.EventID, "error", err)
		return
	}

	if p.durable {
		err = p.client.PublishToStream(ctx, p.subject, data)
	} else {
		err = p.client.Publish(ctx, p.subject, data)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "Publish ingestion event failed",
			"subject", p.subject,
			"event_id", result.EventID,
			"error", err)
	}
}

// EnsureEventStream creates or updates the stream holding <prefix>.events.>.
func EnsureEventStream(ctx context.Context, client *natsclient.Client, name, prefix string) (jetstream.Stream, error) {
	js, err := client.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	cfg := jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{subjectFor(prefix, "events.>")},
	}
	stream, err := js.CreateOrUpdateStream(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ensure stream %s: %w", name, err)
	}
	return stream, nil
}
