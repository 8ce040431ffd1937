package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/suitesmith/internal/logger"
)

// defaultDebounce groups the burst of events editors emit on save.
const defaultDebounce = 250 * time.Millisecond

// PromptWatcher reloads a PromptStore whenever a prompt file changes.
type PromptWatcher struct {
	store    *PromptStore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func()
}

// NewPromptWatcher watches the store's directory, creating it if needed.
func NewPromptWatcher(store *PromptStore) (*PromptWatcher, error) {
	if err := store.ensureInit(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := w.Add(store.Dir()); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", store.Dir(), err)
	}

	return &PromptWatcher{
		store:    store,
		watcher:  w,
		debounce: defaultDebounce,
	}, nil
}

// OnReload registers a callback run after each reload.
func (pw *PromptWatcher) OnReload(fn func()) {
	pw.onReload = fn
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (pw *PromptWatcher) Run(ctx context.Context) error {
	defer pw.watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return nil
			}
			if !isPromptEvent(event) {
				continue
			}
			logger.Debug("prompt file changed: %s", filepath.Base(event.Name))
			pending = time.After(pw.debounce)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("prompt watcher: %v", err)

		case <-pending:
			pending = nil
			pw.store.Reload()
			logger.Info("prompts reloaded from %s", pw.store.Dir())
			if pw.onReload != nil {
				pw.onReload()
			}
		}
	}
}

func isPromptEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".txt") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
