package datasource

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/stwalsh4118/wardlens/internal/logger"
)

// Invalidator drops cached datasets.
type Invalidator interface {
	Invalidate(name string)
}

// Watcher invalidates cached datasets when files in the data directory
// change, so edits show up without a restart.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	target  Invalidator
	dir     string
	log     *logger.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	closed  bool
}

// NewWatcher creates a Watcher for dir. Call Stop to release it.
func NewWatcher(dir string, target Invalidator, log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}

	return &Watcher{
		watcher: fw,
		target:  target,
		dir:     dir,
		log:     log.WithComponent("watcher"),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.closed {
		return nil
	}

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.running = true

	w.log.Info("Watching data directory", map[string]interface{}{"dir": w.dir})
	go w.run(ctx)
	return nil
}

// Stop ends the event loop and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	if running {
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.log.Error("Failed to close file watcher", err, nil)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error("File watcher error", err, nil)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var op string
	switch {
	case event.Op&fsnotify.Create != 0:
		op = "create"
	case event.Op&fsnotify.Write != 0:
		op = "modify"
	case event.Op&fsnotify.Remove != 0:
		op = "delete"
	case event.Op&fsnotify.Rename != 0:
		op = "rename"
	default:
		return
	}

	name := w.datasetName(event.Name)
	if name == "" {
		return
	}

	w.log.Debug("Dataset file changed", map[string]interface{}{
		"dataset": name,
		"op":      op,
	})
	w.target.Invalidate(name)
}

// datasetName maps a changed path to the dataset name used by FileSource.
func (w *Watcher) datasetName(path string) string {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return filepath.Base(path)
	}
	name := filepath.ToSlash(rel)
	if ValidateName(name) != nil {
		return ""
	}
	return name
}
