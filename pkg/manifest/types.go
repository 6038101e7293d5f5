// Package manifest defines the project and manifest data model described
// in the on-disk layout: a Project maps dependency names to uuids, and a
// Manifest resolves every one of those uuids (transitively) to a pinned
// version, tree-hash, and tracking.
package manifest

import (
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// Project is the map from dependency name to uuid, plus an optional
// self-identity making the project itself a package.
type Project struct {
	Name    string `toml:"name,omitempty"`
	UUID    string `toml:"uuid,omitempty"`
	Version string `toml:"version,omitempty"`
	Deps    map[string]string `toml:"deps,omitempty"`
}

// Clone returns a deep copy of p, safe to mutate independently of the
// original. Used by the environment cache to retain an original_project
// snapshot distinct from the one the dispatcher mutates.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	if p.Deps != nil {
		out.Deps = make(map[string]string, len(p.Deps))
		for k, v := range p.Deps {
			out.Deps[k] = v
		}
	}
	return &out
}

// SelfID returns the project's own package identifier, or the zero ID if
// the project has no self-identity.
func (p *Project) SelfID() (pkgid.ID, bool) {
	if p.Name == "" || p.UUID == "" {
		return pkgid.ID{}, false
	}
	id, err := pkgid.ParseUUID(p.UUID)
	if err != nil {
		return pkgid.ID{}, false
	}
	return pkgid.ID{Name: p.Name, UUID: id}, true
}

// RepoInfo is the git track recorded for a manifest entry.
type RepoInfo struct {
	Source string `toml:"source,omitempty"`
	Rev    string `toml:"rev,omitempty"`
	Subdir string `toml:"subdir,omitempty"`
}

// Entry is a single manifest entry: a uuid resolved to a name, an
// optional version/tree-hash/tracking, and the set of its own
// dependencies by name→uuid.
type Entry struct {
	Name     string            `toml:"name"`
	Version  string            `toml:"version,omitempty"`
	TreeHash string            `toml:"git-tree-sha1,omitempty"`
	Repo     *RepoInfo         `toml:"repo,omitempty"`
	Path     string            `toml:"path,omitempty"`
	Pinned   bool              `toml:"pinned,omitempty"`
	Deps     map[string]string `toml:"deps,omitempty"`
}

// Tracking reconstructs the specvalidate.Tracking variant this entry
// carries: Path if Path is set, Repo if Repo is set, Registry otherwise.
func (e Entry) Tracking() specvalidate.Tracking {
	switch {
	case e.Path != "":
		return specvalidate.PathTracking{Path: e.Path}
	case e.Repo != nil:
		return specvalidate.RepoTracking{Repo: specvalidate.Repo{
			Source: e.Repo.Source,
			Rev:    e.Repo.Rev,
			Subdir: e.Repo.Subdir,
		}}
	default:
		return specvalidate.RegistryTracking{}
	}
}

// Manifest is the resolved dependency graph of an environment, keyed by
// uuid string (pkgid.ID.Key()).
type Manifest struct {
	Entries map[string]Entry
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{Entries: make(map[string]Entry)}
}

// Clone returns a deep copy of m, including every entry's Deps and Repo
// sub-structures.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	out := &Manifest{Entries: make(map[string]Entry, len(m.Entries))}
	for k, e := range m.Entries {
		out.Entries[k] = e.clone()
	}
	return out
}

func (e Entry) clone() Entry {
	out := e
	if e.Repo != nil {
		repo := *e.Repo
		out.Repo = &repo
	}
	if e.Deps != nil {
		out.Deps = make(map[string]string, len(e.Deps))
		for k, v := range e.Deps {
			out.Deps[k] = v
		}
	}
	return out
}

// IsTransitivelyClosed reports whether every uuid referenced in any
// entry's deps is itself a key in the manifest, transitively. Since deps
// values are already uuids, a single pass checking direct membership
// suffices: if every direct reference resolves, transitive closure holds
// by induction over the (acyclic-in-practice) entry set.
func (m *Manifest) IsTransitivelyClosed() (bool, string) {
	for uuidKey, entry := range m.Entries {
		for depName, depUUID := range entry.Deps {
			if _, ok := m.Entries[depUUID]; !ok {
				return false, entry.Name + " (" + uuidKey + ") depends on " + depName + " (" + depUUID + "), which is not a manifest key"
			}
		}
	}
	return true, ""
}

// DepsMap builds the flat adjacency mapping pkgid.ID → []pkgid.ID used by
// the precompile scheduler and by depotctl graph, skipping entries already
// satisfied by the running system image (those are not present in the
// manifest at all, by construction).
func (m *Manifest) DepsMap() map[pkgid.ID][]pkgid.ID {
	out := make(map[pkgid.ID][]pkgid.ID, len(m.Entries))
	for uuidKey, entry := range m.Entries {
		id := pkgid.ID{Name: entry.Name}
		if u, err := pkgid.ParseUUID(uuidKey); err == nil {
			id.UUID = u
		}
		deps := make([]pkgid.ID, 0, len(entry.Deps))
		for depName, depUUID := range entry.Deps {
			depID := pkgid.ID{Name: depName}
			if u, err := pkgid.ParseUUID(depUUID); err == nil {
				depID.UUID = u
			}
			deps = append(deps, depID)
		}
		out[id] = deps
	}
	return out
}
