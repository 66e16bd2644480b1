package filewatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/earthcontrol/pkg/logging"
)

// DefaultDebounce coalesces the burst of events an editor emits on save.
const DefaultDebounce = 150 * time.Millisecond

// DirWatcher feeds fsnotify events for one directory tree into a Feed.
// Events for the same path inside the debounce window are reported once,
// with the last change type seen.
type DirWatcher struct {
	root     string
	target   *Feed
	logger   *logging.Logger
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]pendingChange
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type pendingChange struct {
	kind ChangeType
	seen time.Time
}

// NewDirWatcher prepares a watcher for root. Nothing is watched until Start.
func NewDirWatcher(root string, target *Feed, debounce time.Duration, logger *logging.Logger) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &DirWatcher{
		root:     filepath.Clean(root),
		target:   target,
		logger:   logger,
		debounce: debounce,
		watcher:  w,
		pending:  make(map[string]pendingChange),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start adds root and its subdirectories and begins delivering events. It
// does not block.
func (dw *DirWatcher) Start(ctx context.Context) error {
	dw.mu.Lock()
	if dw.running {
		dw.mu.Unlock()
		return nil
	}
	dw.running = true
	dw.mu.Unlock()

	err := filepath.WalkDir(dw.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return dw.watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		dw.mu.Lock()
		dw.running = false
		dw.mu.Unlock()
		return err
	}
	dw.logger.Info(logging.CategoryAssets, "assets.watching", "watching asset directory", map[string]any{"dir": dw.root})

	go dw.run(ctx)
	return nil
}

// Stop ends the event loop and releases the fsnotify watcher.
func (dw *DirWatcher) Stop() {
	dw.mu.Lock()
	if !dw.running {
		dw.mu.Unlock()
		_ = dw.watcher.Close()
		return
	}
	dw.running = false
	dw.mu.Unlock()

	close(dw.stopCh)
	<-dw.doneCh
	_ = dw.watcher.Close()
}

func (dw *DirWatcher) run(ctx context.Context) {
	defer close(dw.doneCh)

	tick := dw.debounce / 2
	if tick <= 0 {
		tick = dw.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-dw.stopCh:
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handle(event)
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Warn(logging.CategoryAssets, "assets.watch_error", err.Error(), nil)
		case now := <-ticker.C:
			dw.flush(now, false)
		}
	}
}

func (dw *DirWatcher) handle(event fsnotify.Event) {
	var kind ChangeType
	switch {
	case event.Op&fsnotify.Create != 0:
		kind = ChangeCreated
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = dw.watcher.Add(event.Name)
			return
		}
	case event.Op&fsnotify.Write != 0:
		kind = ChangeModified
	case event.Op&fsnotify.Remove != 0:
		kind = ChangeDeleted
	case event.Op&fsnotify.Rename != 0:
		kind = ChangeRenamed
	default:
		return
	}

	rel, err := filepath.Rel(dw.root, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	base := filepath.Base(rel)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return
	}

	dw.mu.Lock()
	dw.pending[filepath.ToSlash(rel)] = pendingChange{kind: kind, seen: time.Now()}
	dw.mu.Unlock()
}

// flush reports every pending change older than the debounce window, or all
// of them when force is set.
func (dw *DirWatcher) flush(now time.Time, force bool) {
	dw.mu.Lock()
	var ready []FileChange
	for rel, p := range dw.pending {
		if !force && now.Sub(p.seen) < dw.debounce {
			continue
		}
		delete(dw.pending, rel)
		change := FileChange{Path: rel, Type: p.kind, ModTime: p.seen}
		if info, err := os.Stat(filepath.Join(dw.root, filepath.FromSlash(rel))); err == nil {
			change.Size = info.Size()
			change.ModTime = info.ModTime()
		}
		ready = append(ready, change)
	}
	dw.mu.Unlock()

	for _, change := range ready {
		dw.logger.Debug(logging.CategoryAssets, "assets.changed", change.Path, map[string]any{"type": string(change.Type)})
		dw.target.Notify(change)
	}
}
