// Package watch reports changes to a markup source file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "conti/internal/log"
)

// DefaultDebounce is how long a file must stay quiet before a change fires.
const DefaultDebounce = 300 * time.Millisecond

// FileWatcher invokes a callback once a watched file settles after being
// written, created or replaced. The parent directory is watched so editors
// that save through a rename are still seen.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string)
	logger   *applog.Logger

	pending time.Time
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewFileWatcher prepares a watcher for path. debounce <= 0 uses DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration, onChange func(path string), logger *applog.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &FileWatcher{
		watcher:  w,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger.WithComponent(applog.ComponentWatch).With(applog.FieldSource, abs),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It does not block.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return fmt.Errorf("watch %s: %w", filepath.Dir(fw.path), err)
	}

	go fw.run(ctx)
	fw.logger.Debug("Watching source file")
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		_ = fw.watcher.Close()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh
	if err := fw.watcher.Close(); err != nil {
		fw.logger.Warn("Failed to close watcher", applog.FieldError, err)
	}
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	ticker := time.NewTicker(fw.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("Watcher error", applog.FieldError, err)
		case now := <-ticker.C:
			fw.flush(now)
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	fw.mu.Lock()
	fw.pending = time.Now()
	fw.mu.Unlock()
}

func (fw *FileWatcher) flush(now time.Time) {
	fw.mu.Lock()
	if fw.pending.IsZero() || now.Sub(fw.pending) < fw.debounce {
		fw.mu.Unlock()
		return
	}
	fw.pending = time.Time{}
	fw.mu.Unlock()

	fw.logger.Debug("Source file changed")
	if fw.onChange != nil {
		fw.onChange(fw.path)
	}
}
