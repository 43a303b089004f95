package show

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchKind string

const (
	// SoundMissing means the backing file is gone; the cue targeting it will
	// fail to reload on the next project open.
	SoundMissing WatchKind = "missing"
	// SoundReplaced means the file was removed and recreated in quick
	// succession, the usual signature of an editor or exporter overwriting it.
	SoundReplaced WatchKind = "replaced"
	// SoundChanged means the file was rewritten in place. The engine keeps
	// playing the buffered audio; the file on disk no longer matches it.
	SoundChanged WatchKind = "changed"
)

type WatchEvent struct {
	Sound string
	Path  string
	Kind  WatchKind
}

// Watcher monitors the files backing registered sounds so the operator
// hears about a missing or stale file before the cue that needs it fires.
type Watcher struct {
	Events chan WatchEvent

	watcher *fsnotify.Watcher

	mutex   sync.RWMutex
	paths   map[string]string // abs path -> sound name
	pending map[string]pendingRemove

	settle time.Duration
	done   chan struct{}
	wg     sync.WaitGroup
}

type pendingRemove struct {
	timestamp time.Time
	sound     string
}

func NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fsnotify watcher: %w", err)
	}

	return &Watcher{
		Events:  make(chan WatchEvent),
		watcher: watcher,
		paths:   map[string]string{},
		pending: map[string]pendingRemove{},
		settle:  time.Millisecond * 250,
		done:    make(chan struct{}),
	}, nil
}

// Watch starts monitoring the file backing the named sound. fsnotify watches
// the containing directory so remove+recreate pairs are still observable.
func (w *Watcher) Watch(soundName, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to monitor directory of %q: %w", path, err)
	}

	w.mutex.Lock()
	w.paths[abs] = soundName
	w.mutex.Unlock()

	return nil
}

func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}

	w.mutex.Lock()
	delete(w.paths, abs)
	delete(w.pending, abs)
	w.mutex.Unlock()
}

// Sync replaces the watched set with the given sound name -> path mapping.
// Edits that restore or remove sounds without going through Watch/Unwatch,
// like undo and redo, use it to realign coverage with the registry.
func (w *Watcher) Sync(sounds map[string]string) error {
	paths := make(map[string]string, len(sounds))

	for name, path := range sounds {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", path, err)
		}

		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to monitor directory of %q: %w", path, err)
		}

		paths[abs] = name
	}

	w.mutex.Lock()
	w.paths = paths

	for path := range w.pending {
		if _, ok := paths[path]; !ok {
			delete(w.pending, path)
		}
	}
	w.mutex.Unlock()

	return nil
}

func (w *Watcher) Run(ctx context.Context) {
	w.wg.Add(2)

	go func() {
		defer w.wg.Done()
		w.flushPendingRemoves(ctx)
	}()

	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

			slog.Error("watcher error", "error", err)
		}
	}
}

// Close shuts down both Run goroutines, waits for them, and closes Events.
// It does not depend on the Run context being cancelled.
func (w *Watcher) Close() {
	close(w.done)

	if err := w.watcher.Close(); err != nil {
		slog.Error("Failed to shut down fsnotify watcher", "error", err)
	}

	w.wg.Wait()
	close(w.Events)
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	w.mutex.Lock()

	sound, watched := w.paths[event.Name]
	if !watched {
		w.mutex.Unlock()
		return
	}

	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// Hold the removal briefly: a matching create within the settle
		// window means the file was replaced, not lost.
		w.pending[event.Name] = pendingRemove{timestamp: time.Now(), sound: sound}
		w.mutex.Unlock()

	case event.Op.Has(fsnotify.Create):
		_, wasPending := w.pending[event.Name]
		delete(w.pending, event.Name)
		w.mutex.Unlock()

		if wasPending {
			w.emit(ctx, WatchEvent{Sound: sound, Path: event.Name, Kind: SoundReplaced})
		}

	case event.Op.Has(fsnotify.Write):
		w.mutex.Unlock()
		w.emit(ctx, WatchEvent{Sound: sound, Path: event.Name, Kind: SoundChanged})

	default:
		w.mutex.Unlock()
	}
}

func (w *Watcher) flushPendingRemoves(ctx context.Context) {
	ticker := time.NewTicker(w.settle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-ticker.C:
		}

		expired := []WatchEvent{}

		w.mutex.Lock()

		for path, pd := range w.pending {
			if time.Since(pd.timestamp) < w.settle {
				continue
			}

			expired = append(expired, WatchEvent{Sound: pd.sound, Path: path, Kind: SoundMissing})
			delete(w.pending, path)
		}

		w.mutex.Unlock()

		for _, event := range expired {
			w.emit(ctx, event)
		}
	}
}

func (w *Watcher) emit(ctx context.Context, event WatchEvent) {
	select {
	case <-ctx.Done():
	case <-w.done:
	case w.Events <- event:
	}
}
