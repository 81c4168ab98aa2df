// Package watcher uploads picklist files dropped into the import folder.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"picklist/loader"
	"picklist/parsers"
)

// Watcher imports a file once writes to it have been quiet for the debounce period.
type Watcher struct {
	dir      string
	up       loader.Uploader
	debounce time.Duration
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time

	// imported is called after each successful import; tests hook it.
	imported func(name string)
}

// New watches dir. A zero debounce means 500ms.
func New(dir string, up loader.Uploader, debounce time.Duration, log *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		up:       up,
		debounce: debounce,
		log:      log.Named("watcher"),
		pending:  make(map[string]time.Time),
	}
}

// Run watches until ctx is done. Files already waiting in the folder are
// imported first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.log.Info("watching import folder", zap.String("dir", w.dir))

	if names, err := loader.ImportFolder(ctx, w.up, w.dir); err != nil {
		w.log.Warn("initial import failed", zap.Error(err))
	} else {
		for _, n := range names {
			w.done(n)
		}
	}

	tick := time.NewTicker(w.debounce / 5)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-tick.C:
			for _, path := range w.due(now) {
				w.importFile(ctx, path)
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	// Only files directly in the folder; processed/ is ours.
	if filepath.Dir(ev.Name) != filepath.Clean(w.dir) || !parsers.IsSupported(ev.Name) {
		return
	}
	w.mu.Lock()
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

// due returns the paths quiet for at least the debounce period.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			out = append(out, path)
			delete(w.pending, path)
		}
	}
	return out
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	name := filepath.Base(path)
	msg, err := loader.ImportFile(ctx, w.up, path)
	if err != nil {
		w.log.Warn("import failed", zap.String("file", name), zap.Error(err))
		return
	}
	if err := loader.MoveToProcessed(path); err != nil {
		w.log.Warn("failed to move imported file", zap.String("file", name), zap.Error(err))
	}
	w.log.Info("imported", zap.String("file", name), zap.String("message", msg))
	w.done(name)
}

func (w *Watcher) done(name string) {
	if w.imported != nil {
		w.imported(name)
	}
}
