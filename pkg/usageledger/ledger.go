// Package usageledger reads and writes the per-depot last-use logs
// (manifest_usage.toml, artifact_usage.toml, scratch_usage.toml) and
// implements the read-merge/write-condense/cross-depot-union semantics
// the GC Driver depends on.
package usageledger

import (
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

// Category distinguishes the three usage logs. Only Scratch carries
// parent_projects.
type Category string

const (
	CategoryManifest Category = "manifest"
	CategoryArtifact Category = "artifact"
	CategoryScratch  Category = "scratch"
)

// Usage is the condensed record for one filename: its last-known-use
// timestamp, plus (for scratch entries) the set of parent project files
// that still reference it.
type Usage struct {
	Time           time.Time
	ParentProjects map[string]bool
}

// Ledger maps filename (a path relative to or under the depot) to its
// condensed Usage record.
type Ledger map[string]Usage

// New returns an empty ledger.
func New() Ledger { return make(Ledger) }

// Touch records filename as used at t. If filename is already present,
// the timestamp is raised only if t is later (read-merge semantics also
// rely on this to take the maximum over duplicate entries). parentProject
// is added to ParentProjects when non-empty; category-agnostic callers
// pass "" for manifest/artifact ledgers.
func (l Ledger) Touch(filename string, t time.Time, parentProject string) {
	u, ok := l[filename]
	if !ok || t.After(u.Time) {
		u.Time = t
	}
	if parentProject != "" {
		if u.ParentProjects == nil {
			u.ParentProjects = make(map[string]bool)
		}
		u.ParentProjects[parentProject] = true
	}
	l[filename] = u
}

// Merge returns a new ledger that is the union of ledgers, taking the
// maximum timestamp per filename and the union of parent_projects.
func Merge(ledgers ...Ledger) Ledger {
	out := New()
	for _, l := range ledgers {
		for filename, u := range l {
			out.Touch(filename, u.Time, "")
			merged := out[filename]
			for parent := range u.ParentProjects {
				if merged.ParentProjects == nil {
					merged.ParentProjects = make(map[string]bool)
				}
				merged.ParentProjects[parent] = true
			}
			out[filename] = merged
		}
	}
	return out
}

// FilterExisting drops every entry whose filename exists fails. For
// scratch ledgers (parentAware), it additionally filters each entry's
// ParentProjects set through parentExists and drops the entry entirely if
// no parent survives, per the GC Driver's "existence-filter" pass.
func (l Ledger) FilterExisting(exists func(filename string) bool, parentAware bool, parentExists func(path string) bool) Ledger {
	out := New()
	for filename, u := range l {
		if !exists(filename) {
			continue
		}
		if parentAware {
			survivors := make(map[string]bool)
			for parent := range u.ParentProjects {
				if parentExists == nil || parentExists(parent) {
					survivors[parent] = true
				}
			}
			if len(survivors) == 0 {
				continue
			}
			u.ParentProjects = survivors
		}
		out[filename] = u
	}
	return out
}

// onDiskEntry is a single table in the one-element list stored per
// filename.
type onDiskEntry struct {
	Time           string   `toml:"time"`
	ParentProjects []string `toml:"parent_projects,omitempty"`
}

// Read loads and condenses a usage TOML file. Read merges by taking the
// maximum timestamp per filename across any (non-standard) multi-element
// lists encountered on disk. A missing file yields an empty ledger and no
// error. A malformed file yields an empty ledger together with a
// ParseFailure error, which the GC Driver logs as a warning and then
// treats the ledger as empty.
func Read(path string) (Ledger, error) {
	raw := make(map[string][]onDiskEntry)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return New(), deperrors.Wrap(deperrors.CodeParseFailure, err, "parse usage ledger %s", path)
	}

	out := New()
	for filename, entries := range raw {
		for _, e := range entries {
			t, err := time.Parse(time.RFC3339, e.Time)
			if err != nil {
				continue
			}
			out.Touch(filename, t, "")
			u := out[filename]
			if len(e.ParentProjects) > 0 {
				if u.ParentProjects == nil {
					u.ParentProjects = make(map[string]bool)
				}
				for _, p := range e.ParentProjects {
					u.ParentProjects[p] = true
				}
				out[filename] = u
			}
		}
	}
	return out, nil
}

// Write condenses l to one entry per filename and writes it atomically,
// sorted by key. An empty ledger still truncates any existing file.
func Write(path string, l Ledger) error {
	raw := make(map[string]any, len(l))
	filenames := make([]string, 0, len(l))
	for filename := range l {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	for _, filename := range filenames {
		u := l[filename]
		entry := onDiskEntry{Time: u.Time.UTC().Format(time.RFC3339)}
		if len(u.ParentProjects) > 0 {
			parents := make([]string, 0, len(u.ParentProjects))
			for p := range u.ParentProjects {
				parents = append(parents, p)
			}
			sort.Strings(parents)
			entry.ParentProjects = parents
		}
		raw[filename] = []onDiskEntry{entry}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "create %s", tmp)
	}
	if err := toml.NewEncoder(f).Encode(raw); err != nil {
		f.Close()
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "close %s", tmp)
	}
	return os.Rename(tmp, path)
}
