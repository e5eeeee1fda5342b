// Package watcher reports changes to the planner's storage made by other
// processes, such as CLI subcommands run in another terminal.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay coalesces bursts of writes (sqlite touches the db, journal and
// wal files for a single save) into one notification.
const DefaultDelay = 150 * time.Millisecond

// ReloadMsg is sent to the TUI when the stored documents changed on disk.
type ReloadMsg struct{}

// Watcher debounces fsnotify events for a set of files.
type Watcher struct {
	fsw   *fsnotify.Watcher
	files map[string]bool
	delay time.Duration
	log   *slog.Logger

	mu      sync.Mutex
	pending *time.Timer
}

// New watches every file in files. The files need not exist yet, but their
// directories must. Events for other files in those directories are ignored.
func New(files []string, delay time.Duration, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, files: make(map[string]bool), delay: delay, log: log}
	if w.delay <= 0 {
		w.delay = DefaultDelay
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watcher: %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watcher: add %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run calls notify once per burst of changes until ctx is done or the
// watcher is closed.
func (w *Watcher) Run(ctx context.Context, notify func()) {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !w.files[filepath.Clean(ev.Name)] {
				continue
			}
			w.log.Debug("storage changed", "path", ev.Name, "op", ev.Op.String())
			w.schedule(notify)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) schedule(notify func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.delay, notify)
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
}
