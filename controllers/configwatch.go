package controllers

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/manager"
)

const defaultDebounce = 300 * time.Millisecond

// ConfigWatcher turns changes of the mounted options file into dispatch
// events. Kubelet refreshes ConfigMap mounts by swapping a symlink rather
// than writing the file in place, so the watch covers the whole directory.
type ConfigWatcher struct {
	Path     string
	Debounce time.Duration
	Log      logr.Logger

	watcher *fsnotify.Watcher
	events  chan event.GenericEvent

	mu      sync.Mutex
	pending *time.Timer
}

var _ manager.Runnable = (*ConfigWatcher)(nil)

// NewConfigWatcher watches the directory holding the options file at path.
func NewConfigWatcher(path string, log logr.Logger) (*ConfigWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &ConfigWatcher{
		Path:     path,
		Debounce: defaultDebounce,
		Log:      log,
		watcher:  fsWatcher,
		events:   make(chan event.GenericEvent, 1),
	}, nil
}

// Events is the channel the dispatcher consumes.
func (w *ConfigWatcher) Events() <-chan event.GenericEvent {
	return w.events
}

// Start runs the watch loop until the context ends. The manager owns the
// lifecycle, so the loop starts together with the dispatcher.
func (w *ConfigWatcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	// Prime the first pass so the agent converges on the state already on
	// disk before any change arrives.
	w.emit()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.pending != nil {
				w.pending.Stop()
			}
			w.mu.Unlock()
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed")
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.bump()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed")
			}
			if err != nil {
				w.Log.Error(err, "options watch error")
			}
		}
	}
}

// bump (re)arms the debounce timer so a burst of events collapses into one
// dispatch.
func (w *ConfigWatcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.Debounce, w.emit)
}

func (w *ConfigWatcher) emit() {
	w.Log.V(1).Info("options changed", "path", w.Path)
	ref := &corev1.ConfigMap{}
	ref.Name = filepath.Base(w.Path)
	select {
	case w.events <- event.GenericEvent{Object: ref}:
	default:
		// A dispatch is already queued; that pass reads the latest file.
	}
}
