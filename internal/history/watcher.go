package history

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// debounceDelay is how long to wait after the last file event before
// reloading. zsh appends in small bursts (extended history writes the
// timestamp line separately under INC_APPEND_HISTORY).
const debounceDelay = 300 * time.Millisecond

// Watcher reloads the store when its history file changes on disk and
// signals the UI through a buffered channel.
type Watcher struct {
	store   *Store
	path    string
	watcher *fsnotify.Watcher

	// limiter drops reload storms (history rewrites touch the file many
	// times in a row).
	limiter *rate.Limiter

	reloadCh  chan struct{}
	closeCh   chan struct{}
	closeOnce sync.Once

	debounceMu sync.Mutex
	debounce   *time.Timer
}

// NewWatcher starts watching the store's source file. The parent directory
// is watched rather than the file itself: zsh rewrites history by renaming
// a temporary file over it, which would silently detach a file watch.
func NewWatcher(store *Store) (*Watcher, error) {
	path := store.Path()
	if path == "" {
		return nil, fmt.Errorf("history store has no source file to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		store:    store,
		path:     filepath.Clean(path),
		watcher:  fsw,
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		reloadCh: make(chan struct{}, 1), // Buffered to prevent blocking
		closeCh:  make(chan struct{}),
	}

	go w.eventLoop()
	return w, nil
}

// ReloadChannel returns the channel that signals after the store reloaded.
func (w *Watcher) ReloadChannel() <-chan struct{} {
	return w.reloadCh
}

// Close stops the watcher and releases resources. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()

		w.debounceMu.Lock()
		if w.debounce != nil {
			w.debounce.Stop()
		}
		w.debounceMu.Unlock()
	})
	return err
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case <-w.closeCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			// Debounce: wait for the burst to settle before reloading
			w.debounceMu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.debounce = time.AfterFunc(debounceDelay, w.reloadAndNotify)
			w.debounceMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			histLog.Warn("history_watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reloadAndNotify() {
	select {
	case <-w.closeCh:
		return
	default:
	}

	if !w.limiter.Allow() {
		histLog.Debug("history_reload_rate_limited")
		return
	}

	n, err := w.store.Reload()
	if err != nil {
		histLog.Warn("history_reload_failed", slog.String("error", err.Error()))
		return
	}
	histLog.Debug("history_reloaded", slog.Int("entries", n))

	// Non-blocking send (drop if channel full)
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}
