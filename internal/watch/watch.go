// Package watch regenerates documents when their sources change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last change
// before the sources are considered stable.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a set of files and calls back once they stop changing.
//
// Changes are ignored between StartBatch and StopBatch, and for one
// debounce period after the last StopBatch, so that the generator's own
// writes don't trigger another run. Their events may still be queued
// when the batch ends.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	now      func() time.Time

	mu         sync.Mutex
	paused     int
	quietUntil time.Time
}

// New creates a watcher for the given files.
//
// The directories of the files are watched rather than the files,
// editors often replace files instead of writing them.
func New(paths []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
		logger:   logger,
		watcher:  watcher,
		now:      time.Now,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to resolve %v: %w", p, err)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true

		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory %v: %w", dir, err)
		}
	}

	return w, nil
}

// StartBatch pauses the watcher.
func (w *Watcher) StartBatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused++
}

// StopBatch resumes the watcher once the debounce period has passed.
func (w *Watcher) StopBatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paused == 0 {
		return
	}
	w.paused--
	if w.paused == 0 {
		w.quietUntil = w.now().Add(w.debounce)
	}
}

// Run calls onChange after every burst of changes, until ctx is done.
//
// Errors of onChange are logged, they don't stop the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context) error) error {
	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("source changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			trigger = timer.C

		case <-trigger:
			trigger = nil

			if err := onChange(ctx); err != nil {
				w.logger.Error("regeneration failed", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	w.mu.Lock()
	paused := w.paused > 0 || w.now().Before(w.quietUntil)
	w.mu.Unlock()

	if paused {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return w.files[abs]
}
