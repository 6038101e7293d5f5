// Package undo implements the per-environment undo/redo ring: a
// bounded history of (project, manifest) snapshots keyed by project
// file path, with an optional durable Store for sharing that history
// across processes.
package undo

import (
	"context"
	"sync"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/envcache"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

// MaxEntries is the clamp applied to every environment's history.
const MaxEntries = 50

// Entry is one point in an environment's undo history.
type Entry struct {
	Date     time.Time
	Project  *manifest.Project
	Manifest *manifest.Manifest
}

// history is one environment's ring: index is 1-based, index 1 is the
// most recently recorded entry, and entries grow toward older states.
type history struct {
	index   int
	entries []Entry
}

// Store is an optional durable mirror of the in-memory ring, letting the
// bounded history survive across processes for a depot shared by
// multiple hosts. The in-memory Log is always authoritative; a Store is
// best-effort and its failures never block an undo/redo/snapshot.
type Store interface {
	Load(ctx context.Context, projectPath string) (entries []Entry, index int, err error)
	Save(ctx context.Context, projectPath string, entries []Entry, index int) error
}

// Log is the process-wide map from project file path to undo history.
type Log struct {
	mu    sync.Mutex
	byKey map[string]*history
	store Store

	lastStoreErr error
}

// NewLog returns an empty Log. store may be nil to disable durable
// mirroring.
func NewLog(store Store) *Log {
	return &Log{byKey: make(map[string]*history), store: store}
}

// Hydrate loads projectPath's history from the durable Store, if one is
// configured, replacing whatever in-memory history exists for that path.
// A nil Store makes this a no-op.
func (l *Log) Hydrate(ctx context.Context, projectPath string) error {
	if l.store == nil {
		return nil
	}
	entries, index, err := l.store.Load(ctx, projectPath)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.byKey[projectPath] = &history{entries: entries, index: index}
	l.mu.Unlock()
	return nil
}

// LastStoreError returns the most recent error from a best-effort Store
// write, or nil. Exposed for tests and for callers that want to surface
// durability failures as a warning without making them fatal.
func (l *Log) LastStoreError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastStoreErr
}

// Snapshot records the environment's current (project, manifest) as the
// newest entry in its history, unless it is a no-op (current equals
// original). It is intended as an envcache.WriteOptions.Snapshot hook,
// called after the write but before envcache refreshes original_*, so
// c.IsDirty still reflects whether this write actually changed anything.
func (l *Log) Snapshot(c *envcache.Cache) error {
	if !c.IsDirty() {
		return nil
	}

	l.mu.Lock()
	h, ok := l.byKey[c.ProjectPath]
	if !ok {
		h = &history{index: 1}
		l.byKey[c.ProjectPath] = h
	}

	kept := h.entries
	if h.index >= 1 && h.index-1 <= len(kept) {
		kept = kept[h.index-1:]
	}
	entries := append([]Entry{{
		Date:     time.Now(),
		Project:  c.Project.Clone(),
		Manifest: c.Manifest.Clone(),
	}}, kept...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	h.entries = entries
	h.index = 1
	snapshot := append([]Entry(nil), h.entries...)
	index := h.index
	l.mu.Unlock()

	l.mirror(c.ProjectPath, snapshot, index)
	return nil
}

// Undo moves projectPath's history one step toward older and materializes
// the resulting entry into c, writing it with snapshotting disabled so the
// materialization does not itself insert a new snapshot.
func (l *Log) Undo(ctx context.Context, c *envcache.Cache, codec manifest.ProjectCodec) error {
	return l.move(ctx, c, codec, +1)
}

// Redo moves projectPath's history one step toward newer.
func (l *Log) Redo(ctx context.Context, c *envcache.Cache, codec manifest.ProjectCodec) error {
	return l.move(ctx, c, codec, -1)
}

func (l *Log) move(ctx context.Context, c *envcache.Cache, codec manifest.ProjectCodec, delta int) error {
	l.mu.Lock()
	h, ok := l.byKey[c.ProjectPath]
	if !ok {
		l.mu.Unlock()
		return deperrors.New(deperrors.CodeNotFound, "no undo history for %s", c.ProjectPath)
	}
	newIndex := h.index + delta
	if newIndex < 1 || newIndex > len(h.entries) {
		l.mu.Unlock()
		if delta > 0 {
			return deperrors.New(deperrors.CodeNotFound, "no further undo history for %s", c.ProjectPath)
		}
		return deperrors.New(deperrors.CodeNotFound, "no further redo history for %s", c.ProjectPath)
	}
	h.index = newIndex
	entry := h.entries[h.index-1]
	snapshot := append([]Entry(nil), h.entries...)
	index := h.index
	l.mu.Unlock()

	l.mirror(c.ProjectPath, snapshot, index)

	c.Project = entry.Project.Clone()
	c.Manifest = entry.Manifest.Clone()
	return c.Write(codec, envcache.WriteOptions{})
}

func (l *Log) mirror(projectPath string, entries []Entry, index int) {
	if l.store == nil {
		return
	}
	err := l.store.Save(context.Background(), projectPath, entries, index)
	l.mu.Lock()
	l.lastStoreErr = err
	l.mu.Unlock()
}
