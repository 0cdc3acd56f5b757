// Package watch re-runs an action on source files as they change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/cstq/pkg/config"
	"github.com/panbanda/cstq/pkg/parser"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay unchanged before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Callback handles a batch of changed files, sorted by path.
type Callback func(ctx context.Context, paths []string)

// Watcher monitors a directory tree and reports settled changes to
// supported source files.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	callback  Callback
	log       *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// WithDebounce sets the settle time. Values <= 0 keep DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher rooted at path.
func NewWatcher(path string, cfg *config.Config, cb Callback, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  DefaultDebounce,
		path:      path,
		callback:  cb,
		log:       zap.NewNop(),
		now:       time.Now,
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches until ctx is done. It returns ctx.Err() on cancellation,
// after any running callback has finished.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}
	w.log.Info("watching", zap.String("path", w.path), zap.Int("dirs", len(w.fsWatcher.WatchList())))

	var wg conc.WaitGroup
	defer wg.Wait()
	flushCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	wg.Go(func() { w.processDebounced(flushCtx) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// addTree registers root and every directory below it that is not excluded.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) excludedDir(name string) bool {
	return slices.Contains(w.config.Exclude.Dirs, name)
}

// handleEvent records writes and creates of supported files. New
// directories are added to the watch list.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := event.Name

	if event.Has(fsnotify.Create) && isDir(path) {
		if !w.excludedDir(filepath.Base(path)) {
			if err := w.addTree(path); err != nil {
				w.log.Warn("failed to watch directory", zap.String("path", path), zap.Error(err))
			}
		}
		return
	}

	if !w.wanted(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = w.now()
	w.mu.Unlock()
}

func (w *Watcher) wanted(path string) bool {
	rel, err := filepath.Rel(w.path, path)
	if err != nil {
		rel = path
	}
	if w.config.ShouldExclude(rel) {
		return false
	}
	lang := parser.DetectLanguage(path)
	return lang != parser.LangUnknown && w.config.LanguageEnabled(lang)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// processDebounced flushes settled changes until ctx is done.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ready := w.takeReady(); len(ready) > 0 && w.callback != nil {
				w.callback(ctx, ready)
			}
		}
	}
}

// takeReady removes and returns the files unchanged for the debounce period.
func (w *Watcher) takeReady() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories being watched.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
