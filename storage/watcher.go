package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/fmeakg/metric"
)

const (
	// driftChannelBuffer is the size of the drift event channel.
	driftChannelBuffer = 16

	defaultDebounce = 500 * time.Millisecond
)

// DriftOperation indicates how the persisted resource changed.
type DriftOperation string

// DriftOpModify and DriftOpDelete enumerate the detected drift kinds.
const (
	DriftOpModify DriftOperation = "modify"
	DriftOpDelete DriftOperation = "delete"
)

// DriftEvent reports a change of the persisted graph not written by the gateway.
type DriftEvent struct {
	Path      string
	Operation DriftOperation
	Hash      string
}

// HashSource reports the hash of the content the gateway last loaded or wrote.
type HashSource interface {
	LastHash() string
}

// DriftWatcher watches the persisted graph file for external modifications.
type DriftWatcher struct {
	path     string
	source   HashSource
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	metrics  *metric.Metrics

	// Debouncing: collect changes before checking
	pendingMu sync.Mutex
	dirty     bool

	events        chan DriftEvent
	droppedEvents atomic.Int64
}

// NewDriftWatcher creates a watcher for the file at path (local filesystem).
func NewDriftWatcher(path string, source HashSource, debounce time.Duration, logger *slog.Logger, m *metric.Metrics) (*DriftWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	return &DriftWatcher{
		path:     abs,
		source:   source,
		debounce: debounce,
		watcher:  fsw,
		logger:   logger,
		metrics:  m,
		events:   make(chan DriftEvent, driftChannelBuffer),
	}, nil
}

// Events returns the channel of drift events.
func (w *DriftWatcher) Events() <-chan DriftEvent {
	return w.events
}

// DroppedEvents returns how many drift events were dropped because the
// channel was full.
func (w *DriftWatcher) DroppedEvents() int64 {
	return w.droppedEvents.Load()
}

// Start begins watching. The directory is watched rather than the file so
// that atomic renames are observed.
func (w *DriftWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Drift watcher started",
		"path", w.path,
		"debounce", w.debounce)
	return nil
}

// Stop stops the watcher.
// The events channel is closed by processEvents when it exits.
func (w *DriftWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *DriftWatcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.logger.Debug("Graph file change detected", "op", event.Op.String())
			w.pendingMu.Lock()
			w.dirty = true
			w.pendingMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending compares the file against the gateway's last known content.
func (w *DriftWatcher) flushPending() {
	w.pendingMu.Lock()
	if !w.dirty {
		w.pendingMu.Unlock()
		return
	}
	w.dirty = false
	w.pendingMu.Unlock()

	if event, drifted := w.Check(); drifted {
		w.logger.Warn("Persisted graph modified externally",
			"path", event.Path,
			"op", event.Operation)
		w.metrics.RecordDrift()
		w.sendEvent(event)
	}
}

// Check hashes the file and reports whether it differs from the gateway's
// last loaded or written content.
func (w *DriftWatcher) Check() (DriftEvent, bool) {
	hash, err := hashFile(w.path)
	if os.IsNotExist(err) {
		return DriftEvent{Path: w.path, Operation: DriftOpDelete}, true
	}
	if err != nil {
		w.logger.Warn("Failed to read file for hash check",
			"path", w.path,
			"error", err)
		return DriftEvent{}, false
	}
	if hash == w.source.LastHash() {
		return DriftEvent{}, false
	}
	return DriftEvent{Path: w.path, Operation: DriftOpModify, Hash: hash}, true
}

func (w *DriftWatcher) sendEvent(event DriftEvent) {
	select {
	case w.events <- event:
	default:
		w.droppedEvents.Add(1)
		w.logger.Warn("Drift event channel full, dropping event", "path", event.Path)
	}
}
