package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats-server/v2/server"

	"github.com/c360studio/fmeakg/config"
	"github.com/c360studio/fmeakg/ingest"
	"github.com/c360studio/fmeakg/metric"
	"github.com/c360studio/fmeakg/ontology"
	kgapi "github.com/c360studio/fmeakg/processor/kg-api"
	kgresponder "github.com/c360studio/fmeakg/processor/kg-responder"
	"github.com/c360studio/fmeakg/query"
	"github.com/c360studio/fmeakg/storage"
)

// App wires the knowledge graph components from a configuration.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	metrics  *metric.Metrics
	store    *storage.Gateway
	queries  *query.Templates
	ingester *ingest.Ingester

	api *kgapi.Component

	// NATS
	embeddedServer *server.Server
	natsClient     *natsclient.Client
	responder      *kgresponder.Component
	publisher      *kgresponder.Publisher

	watcher *storage.DriftWatcher
}

// NewApp loads the persisted graph and builds the query and ingestion services.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	vocab, err := ontology.NewVocabulary(cfg.Namespace())
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	defaultAction, err := cfg.DefaultActionIRI()
	if err != nil {
		return nil, fmt.Errorf("default monitoring action: %w", err)
	}

	m, err := metric.New()
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	store, err := storage.OpenFile(cfg.Ontology.Path,
		storage.WithLogger(logger),
		storage.WithMetrics(m),
		storage.WithPrefixes(vocab.Namespace.Prefixes()))
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		store:   store,
		queries: query.New(store, vocab, defaultAction, logger, m),
		ingester: ingest.NewIngester(store, vocab,
			ingest.WithLogger(logger),
			ingest.WithMetrics(m),
			ingest.WithReferenceValidation(cfg.Ingest.ValidateReferences)),
	}, nil
}

// Serve runs the HTTP API, and the NATS responder and drift watcher when
// enabled, until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

func (a *App) start(ctx context.Context) error {
	if a.cfg.NATS.Enabled {
		if err := a.startNATS(ctx); err != nil {
			return fmt.Errorf("start NATS: %w", err)
		}
	}
	if a.cfg.Watch.Enabled {
		if err := a.startWatcher(ctx); err != nil {
			return fmt.Errorf("start drift watcher: %w", err)
		}
	}

	a.logger.Info("Knowledge graph loaded",
		"path", a.cfg.Ontology.Path,
		"triples", a.store.Len(),
		"default_action", a.queries.DefaultAction())

	svc := kgapi.Services{
		Queries:  a.queries,
		Ingester: a.ingester,
		Store:    a.store,
	}
	if a.publisher != nil {
		svc.Notifier = a.publisher
	}
	rawConfig, err := json.Marshal(kgapi.Config{Addr: a.cfg.HTTP.Addr, Prefix: a.cfg.HTTP.Prefix})
	if err != nil {
		return fmt.Errorf("marshal kg-api config: %w", err)
	}
	api, err := kgapi.NewComponent(rawConfig, a.dependencies(), svc)
	if err != nil {
		return fmt.Errorf("create kg-api: %w", err)
	}
	if err := startComponent(ctx, api); err != nil {
		return err
	}
	a.api = api
	return nil
}

// dependencies returns the platform dependencies shared by all components.
func (a *App) dependencies() component.Dependencies {
	return component.Dependencies{
		NATSClient:      a.natsClient,
		MetricsRegistry: a.metrics.MetricsRegistry(),
		Logger:          a.logger,
	}
}

func startComponent(ctx context.Context, c component.LifecycleComponent) error {
	if err := c.Initialize(); err != nil {
		return fmt.Errorf("initialize %s: %w", c.Meta().Name, err)
	}
	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w", c.Meta().Name, err)
	}
	return nil
}

func (a *App) startNATS(ctx context.Context) error {
	if a.cfg.NATS.Embedded {
		opts := &server.Options{
			Port:      -1, // Random available port
			JetStream: true,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return errors.New("embedded NATS server failed to start")
		}
		a.embeddedServer = ns
		a.logger.Info("Embedded NATS server started", "url", ns.ClientURL())
	}

	url := a.cfg.NATS.URL
	if a.embeddedServer != nil {
		url = a.embeddedServer.ClientURL()
	}
	client, err := connectToNATS(ctx, url, a.logger)
	if err != nil {
		return err
	}
	a.natsClient = client

	var pubOpts []kgresponder.PublisherOption
	if a.cfg.NATS.Stream != "" {
		if _, err := kgresponder.EnsureEventStream(ctx, client, a.cfg.NATS.Stream, a.cfg.NATS.SubjectPrefix); err != nil {
			return err
		}
		pubOpts = append(pubOpts, kgresponder.WithDurable())
	}
	a.publisher = kgresponder.NewPublisher(client, a.cfg.NATS.SubjectPrefix, a.logger, pubOpts...)

	rawConfig, err := json.Marshal(kgresponder.Config{SubjectPrefix: a.cfg.NATS.SubjectPrefix})
	if err != nil {
		return fmt.Errorf("marshal kg-responder config: %w", err)
	}
	responder, err := kgresponder.NewComponent(rawConfig, a.dependencies(), kgresponder.Services{
		Queries:  a.queries,
		Ingester: a.ingester,
		Notifier: a.publisher,
	})
	if err != nil {
		return fmt.Errorf("create kg-responder: %w", err)
	}
	if err := startComponent(ctx, responder); err != nil {
		return err
	}
	a.responder = responder
	return nil
}

// connectToNATS connects a platform client and waits for the connection.
func connectToNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName("fmeakg"),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

func (a *App) startWatcher(ctx context.Context) error {
	w, err := storage.NewDriftWatcher(a.cfg.Ontology.Path, a.store, a.cfg.Watch.Debounce, a.logger, a.metrics)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}
	a.watcher = w

	go func() {
		for event := range w.Events() {
			a.logger.Warn("Persisted graph changed outside the service; in-memory graph kept",
				"path", event.Path,
				"operation", event.Operation)
		}
	}()
	return nil
}

// Shutdown stops the running components.
func (a *App) Shutdown() {
	const stopTimeout = 5 * time.Second

	if a.api != nil {
		if err := a.api.Stop(stopTimeout); err != nil {
			a.logger.Warn("Stop kg-api", "error", err)
		}
	}

	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warn("Stop drift watcher", "error", err)
		}
	}

	if a.responder != nil {
		if err := a.responder.Stop(stopTimeout); err != nil {
			a.logger.Warn("Stop kg-responder", "error", err)
		}
	}

	// Close NATS connection
	if a.natsClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := a.natsClient.Close(ctx); err != nil {
			a.logger.Warn("Close NATS client", "error", err)
		}
	}

	// Shutdown embedded server
	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}
}
