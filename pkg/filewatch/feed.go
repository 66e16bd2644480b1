// Package filewatch reports changes to the static asset directory so open
// dashboards can reload stylesheets and scripts during development.
package filewatch

import (
	"path"
	"strings"
	"sync"
	"time"
)

// ChangeType describes the kind of file change observed.
type ChangeType string

const (
	ChangeCreated  ChangeType = "created"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

// AssetKind tells a browser how to apply a changed asset.
type AssetKind string

const (
	KindStylesheet AssetKind = "stylesheet"
	KindScript     AssetKind = "script"
	KindOther      AssetKind = "other"
)

// KindOf classifies an asset path by extension.
func KindOf(p string) AssetKind {
	switch strings.ToLower(path.Ext(p)) {
	case ".css":
		return KindStylesheet
	case ".js", ".mjs":
		return KindScript
	default:
		return KindOther
	}
}

// DefaultRecent is how many changes a Feed keeps for status reporting.
const DefaultRecent = 20

// FileChange is one change under the asset directory. Path is relative to
// that directory and uses forward slashes. Version is assigned by the Feed
// and increases by one per change.
type FileChange struct {
	Version uint64     `json:"version"`
	Path    string     `json:"path"`
	Type    ChangeType `json:"type"`
	Kind    AssetKind  `json:"kind"`
	Size    int64      `json:"size,omitempty"`
	ModTime time.Time  `json:"mod_time,omitempty"`
}

// Feed versions asset changes, remembers the last few, and passes each one
// to its handlers in registration order.
type Feed struct {
	mu       sync.Mutex
	version  uint64
	recent   []FileChange
	limit    int
	handlers []func(FileChange)
}

// NewFeed returns a feed that remembers up to limit changes.
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultRecent
	}
	return &Feed{limit: limit}
}

// OnChange registers fn for every later change.
func (f *Feed) OnChange(fn func(FileChange)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.handlers = append(f.handlers, fn)
	f.mu.Unlock()
}

// Notify stamps change with the next version and its kind, records it and
// calls the handlers outside the lock. It returns the stamped change.
func (f *Feed) Notify(change FileChange) FileChange {
	f.mu.Lock()
	f.version++
	change.Version = f.version
	change.Kind = KindOf(change.Path)
	f.recent = append(f.recent, change)
	if over := len(f.recent) - f.limit; over > 0 {
		f.recent = append(f.recent[:0], f.recent[over:]...)
	}
	handlers := f.handlers
	f.mu.Unlock()

	for _, fn := range handlers {
		fn(change)
	}
	return change
}

// Version is the version of the latest change, zero before any.
func (f *Feed) Version() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version
}

// Recent returns up to n changes, newest first. n <= 0 means all kept.
func (f *Feed) Recent(n int) []FileChange {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 || n > len(f.recent) {
		n = len(f.recent)
	}
	out := make([]FileChange, 0, n)
	for i := len(f.recent) - 1; len(out) < n; i-- {
		out = append(out, f.recent[i])
	}
	return out
}
