// Package storage owns the in-memory FMEA graph and its persisted resource.
package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/c360studio/fmeakg/export"
	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/metric"
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metric.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithPrefixes sets the prefixes declared in serialized output.
func WithPrefixes(prefixes map[string]string) Option {
	return func(g *Gateway) { g.prefixes = prefixes }
}

// WithFormat overrides the format derived from the file extension.
func WithFormat(format export.Format) Option {
	return func(g *Gateway) { g.format = format }
}

// Gateway owns the graph. It is loaded once by Open and written back by Serialize.
// All methods are safe for concurrent use.
type Gateway struct {
	fs       billy.Filesystem
	path     string
	format   export.Format
	prefixes map[string]string
	logger   *slog.Logger
	metrics  *metric.Metrics

	mu       sync.RWMutex
	graph    *graph.Graph
	lastHash string
}

// OpenFile opens a gateway on a path of the local filesystem.
func OpenFile(path string, opts ...Option) (*Gateway, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, loadError(path, err)
	}
	return Open(osfs.New(filepath.Dir(abs)), filepath.Base(abs), opts...)
}

// Open loads the persisted graph at path from fs.
func Open(fs billy.Filesystem, path string, opts ...Option) (*Gateway, error) {
	g := &Gateway{
		fs:     fs,
		path:   path,
		logger: slog.Default(),
		graph:  graph.New(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.format == "" {
		format, ok := export.FormatForPath(path)
		if !ok {
			format = export.FormatTurtle
		}
		g.format = format
	}
	if g.format == export.FormatJSONLD {
		return nil, loadError(path, fmt.Errorf("format %s is export-only", g.format))
	}

	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Gateway) load() error {
	f, err := g.fs.Open(g.path)
	if err != nil {
		return loadError(g.path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return loadError(g.path, err)
	}

	triples, err := decodeTriples(bytes.NewReader(data), g.format)
	if err != nil {
		return loadError(g.path, err)
	}
	for _, t := range triples {
		g.graph.Add(t)
	}
	g.lastHash = hashBytes(data)
	g.metrics.SetGraphSize(g.graph.Len())

	g.logger.Info("Loaded knowledge graph",
		"path", g.path,
		"format", g.format,
		"triples", g.graph.Len())
	return nil
}

// Path returns the persisted resource path.
func (g *Gateway) Path() string { return g.path }

// Format returns the persisted serialization format.
func (g *Gateway) Format() export.Format { return g.format }

// Prefixes returns the prefixes declared in serialized output.
func (g *Gateway) Prefixes() map[string]string { return g.prefixes }

// Len returns the number of triples in the graph.
func (g *Gateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph.Len()
}

// Has reports whether the graph contains t.
func (g *Gateway) Has(t graph.Triple) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph.Has(t)
}

// Triples returns a sorted copy of every triple in the graph.
func (g *Gateway) Triples() []graph.Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph.Triples()
}

// Match returns the sorted triples matching a pattern; nil terms are wildcards.
func (g *Gateway) Match(subject, predicate, object graph.Term) []graph.Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph.Match(subject, predicate, object)
}

// Query evaluates a pattern query. No match is an empty result, not an error.
func (g *Gateway) Query(q graph.Query) ([]graph.Row, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows, err := g.graph.Query(q)
	if err != nil {
		return nil, &Error{Kind: ErrQuery, Op: "query", Err: err}
	}
	return rows, nil
}

// AddTriple adds one statement to the in-memory graph. It is not durable
// until the next Serialize.
func (g *Gateway) AddTriple(subject graph.Term, predicate graph.IRI, object graph.Term) (bool, error) {
	t, err := graph.NewTriple(subject, predicate, object)
	if err != nil {
		return false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	added := g.graph.Add(t)
	g.metrics.SetGraphSize(g.graph.Len())
	return added, nil
}

// Commit adds a batch and serializes the graph. If serialization fails, the
// triples this batch newly introduced are removed again and the error is
// returned; triples that already existed are left untouched.
func (g *Gateway) Commit(batch []graph.Triple) (int, error) {
	for i, t := range batch {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("batch triple %d: %w", i, err)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	added := make([]graph.Triple, 0, len(batch))
	for _, t := range batch {
		if g.graph.Add(t) {
			added = append(added, t)
		}
	}

	if err := g.serializeLocked(); err != nil {
		for _, t := range added {
			g.graph.Remove(t)
		}
		g.metrics.SetGraphSize(g.graph.Len())
		g.logger.Error("Commit rolled back",
			"path", g.path,
			"rolled_back", len(added),
			"error", err)
		return 0, err
	}

	g.metrics.SetGraphSize(g.graph.Len())
	return len(added), nil
}

// Serialize atomically rewrites the persisted resource from the in-memory graph.
func (g *Gateway) Serialize() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.serializeLocked()
}

// Export renders the current graph in any export format.
func (g *Gateway) Export(format export.Format) (string, error) {
	exporter := export.NewRDFExporter(g.prefixes)
	exporter.AddTriples(g.Triples()...)
	return exporter.Export(format)
}

// LastHash returns the hash of the content last loaded or written.
func (g *Gateway) LastHash() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastHash
}

func (g *Gateway) serializeLocked() (err error) {
	start := time.Now()
	defer func() { g.metrics.RecordSerialize(time.Since(start), err) }()

	exporter := export.NewRDFExporter(g.prefixes)
	exporter.AddTriples(g.graph.Triples()...)
	content, err := exporter.Export(g.format)
	if err != nil {
		return persistError(g.path, err)
	}

	if err := g.writeAtomic([]byte(content)); err != nil {
		return persistError(g.path, err)
	}
	g.lastHash = hashBytes([]byte(content))

	g.logger.Debug("Serialized knowledge graph",
		"path", g.path,
		"triples", g.graph.Len(),
		"duration", time.Since(start))
	return nil
}

// writeAtomic writes to a temp file in the target directory, then renames it
// over the target.
func (g *Gateway) writeAtomic(data []byte) error {
	dir := filepath.Dir(g.path)
	if err := g.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := g.fs.TempFile(dir, "."+filepath.Base(g.path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = g.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = g.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := g.fs.Rename(tmpName, g.path); err != nil {
		_ = g.fs.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// hashFile hashes a file of the local filesystem.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return hashBytes(data), nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
