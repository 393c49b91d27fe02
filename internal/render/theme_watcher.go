package render

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// themeDebounce groups the burst of events an editor save produces.
const themeDebounce = 250 * time.Millisecond

// ThemeWatcher reloads a Renderer whenever a file in the theme directory changes.
type ThemeWatcher struct {
	watcher  *fsnotify.Watcher
	renderer *Renderer
	dir      string
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	reloads int
	mu      sync.Mutex
}

// NewThemeWatcher watches dir for template changes.
func NewThemeWatcher(renderer *Renderer, dir string) (*ThemeWatcher, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create theme watcher: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch theme directory %s: %w", absDir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ThemeWatcher{
		watcher:  watcher,
		renderer: renderer,
		dir:      absDir,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins watching in the background.
func (w *ThemeWatcher) Start() {
	w.wg.Add(1)
	go w.watchLoop()
	w.renderer.logger.Info("Watching theme directory", "dir", w.dir)
}

// Stop ends the watch loop and closes the underlying watcher.
func (w *ThemeWatcher) Stop() {
	w.cancel()
	w.wg.Wait()
	w.watcher.Close()
}

// Reloads reports how many times the theme has been reloaded.
func (w *ThemeWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *ThemeWatcher) watchLoop() {
	defer w.wg.Done()

	var pending <-chan time.Time
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = time.After(themeDebounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.renderer.logger.Warn("Theme watcher error", "error", err)
		case <-pending:
			pending = nil
			w.renderer.Reload()

			w.mu.Lock()
			w.reloads++
			w.mu.Unlock()

			w.renderer.logger.Info("Reloaded theme templates", "dir", w.dir)
		}
	}
}
