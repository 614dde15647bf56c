package library

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"tracklib/internal/logger"
)

// reloadQuiet is how long the backing file must stay unchanged before a
// reload fires. Editors typically produce bursts of write events.
const reloadQuiet = 200 * time.Millisecond

// Watcher reloads the catalog when the backing table changes on disk behind
// the application's back (hand edits, syncing tools).
//
// The watcher never touches the catalog from its own goroutine: it emits on
// Reloads and the owner of the catalog performs the Load on the control
// goroutine.
type Watcher struct {
	cat     *Catalog
	log     *logger.Logger
	fsw     *fsnotify.Watcher
	reloads chan struct{}
}

// NewWatcher starts watching the directory containing the catalog's backing
// file. Close the returned watcher to stop it.
func NewWatcher(ctx context.Context, cat *Catalog, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: renames (including our own atomic
	// saves) replace the inode the file watch would be pinned to.
	dir := filepath.Dir(cat.File())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		cat:     cat,
		log:     log,
		fsw:     fsw,
		reloads: make(chan struct{}, 1),
	}
	go w.run(ctx)
	return w, nil
}

// Reloads signals that the backing file changed and a reload is due. The
// receiver should call HandleReload on the control goroutine.
func (w *Watcher) Reloads() <-chan struct{} {
	return w.reloads
}

// HandleReload re-reads the backing table into the catalog.
func (w *Watcher) HandleReload() {
	bad, err := w.cat.Load()
	if err != nil {
		w.log.Error("Reload of %s failed: %v", w.cat.File(), err)
		return
	}
	for _, rowErr := range bad {
		w.log.Warn("%v (row skipped)", rowErr)
	}
	w.log.Debug("Reloaded %s: %d tracks", w.cat.File(), w.cat.Len())
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	target := filepath.Clean(w.cat.File())
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadQuiet)
				timerC = timer.C
			} else {
				timer.Reset(reloadQuiet)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.reloads <- struct{}{}:
			default: // a reload is already pending
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("File watcher error: %v", err)
		}
	}
}
