// Package envcache holds the parsed project file, manifest, and their
// on-disk snapshots for one environment, and resolves caller-supplied
// specs against whichever of the two is in scope for the running
// operation.
package envcache

import (
	"reflect"

	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

// Cache is the loaded state of one environment: the project and manifest
// as the dispatcher is about to mutate them, plus the original_* copies
// captured at load time.
type Cache struct {
	ProjectPath  string
	ManifestPath string

	Project  *manifest.Project
	Manifest *manifest.Manifest

	OriginalProject  *manifest.Project
	OriginalManifest *manifest.Manifest
}

// Load reads the project and manifest at the given paths. A missing
// project or manifest file is not an error: a fresh environment starts
// from an empty project and an empty manifest, the same way the first
// add into a new directory would.
func Load(codec manifest.ProjectCodec, projectPath, manifestPath string) (*Cache, error) {
	p, err := codec.ReadProject(projectPath)
	if err != nil {
		if deperrors.GetCode(err) != deperrors.CodeIOFailure {
			return nil, err
		}
		p = &manifest.Project{}
	}

	m, err := codec.ReadManifest(manifestPath)
	if err != nil {
		if deperrors.GetCode(err) != deperrors.CodeIOFailure {
			return nil, err
		}
		m = manifest.NewManifest()
	}

	return &Cache{
		ProjectPath:      projectPath,
		ManifestPath:     manifestPath,
		Project:          p,
		Manifest:         m,
		OriginalProject:  p.Clone(),
		OriginalManifest: m.Clone(),
	}, nil
}

// WriteOptions controls the optional undo snapshot taken by Write.
type WriteOptions struct {
	// Snapshot is called after the project and manifest are persisted but
	// before the original_* fields are refreshed, so it still sees the
	// pre-write originals alongside the post-write current state. Leave
	// nil to disable snapshotting, which the undo log's own undo/redo
	// writes do to avoid inserting a new snapshot for a materialization
	// that is itself an undo.
	Snapshot func(c *Cache) error
}

// Write atomically persists the project and manifest, optionally invokes
// a snapshot hook, then refreshes the original_* copies to match what
// was just written.
func (c *Cache) Write(codec manifest.ProjectCodec, opts WriteOptions) error {
	if err := codec.WriteProject(c.ProjectPath, c.Project); err != nil {
		return err
	}
	if err := codec.WriteManifest(c.ManifestPath, c.Manifest); err != nil {
		return err
	}
	if opts.Snapshot != nil {
		if err := opts.Snapshot(c); err != nil {
			return err
		}
	}
	c.OriginalProject = c.Project.Clone()
	c.OriginalManifest = c.Manifest.Clone()
	return nil
}

// IsDirty reports whether the current project or manifest differs from
// the snapshot captured at load (or at the last Write).
func (c *Cache) IsDirty() bool {
	return !reflect.DeepEqual(c.Project, c.OriginalProject) ||
		!reflect.DeepEqual(c.Manifest, c.OriginalManifest)
}
