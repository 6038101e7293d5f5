// Package depot implements the on-disk layout of a depot: a filesystem
// root holding content-addressed package, artifact, and clone trees, a
// mutable scratch tree, and a logs tree of usage/orphanage TOML files.
package depot

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
)

// Depot is a filesystem root containing the four content-addressed trees
// and the logs tree described by the on-disk layout.
type Depot struct {
	Root string
}

// New returns a Depot rooted at root. The directories are not created;
// callers that need them to exist should call EnsureDirs.
func New(root string) *Depot {
	return &Depot{Root: root}
}

// Slug is the implementation-defined deterministic function of name and
// tree-hash used to name a package's extraction directory. It is the
// first 8 hex characters of sha1(name + "/" + treeHash), which keeps
// directory names short while remaining collision-resistant in practice.
func Slug(name, treeHash string) string {
	sum := sha1.Sum([]byte(name + "/" + treeHash))
	return hex.EncodeToString(sum[:])[:8]
}

// PackagesDir returns packages/, the parent of every
// packages/<name>/<slug>/ extraction directory.
func (d *Depot) PackagesDir() string { return filepath.Join(d.Root, "packages") }

// PackagePath returns the extraction directory for a package with the
// given name and tree-hash.
func (d *Depot) PackagePath(name, treeHash string) string {
	return filepath.Join(d.PackagesDir(), name, Slug(name, treeHash))
}

// ArtifactsDir returns artifacts/.
func (d *Depot) ArtifactsDir() string { return filepath.Join(d.Root, "artifacts") }

// ArtifactPath returns artifacts/<sha1>/ for the given artifact tree-hash.
func (d *Depot) ArtifactPath(treeHash string) string {
	return filepath.Join(d.ArtifactsDir(), treeHash)
}

// ArtifactIndexFilename is the name of the artifacts index a package
// carries alongside its own source, recording which artifacts/<sha1>/
// trees that package's platform-specific binaries live under. It is
// keyed by the package's own tree-hash, not the artifact tree-hash it
// references — the two are independent content addresses.
const ArtifactIndexFilename = "Artifacts.toml"

// ArtifactIndexPath returns the artifacts index path for the package
// with the given name and tree-hash: packages/<name>/<slug>/Artifacts.toml.
func (d *Depot) ArtifactIndexPath(name, treeHash string) string {
	return filepath.Join(d.PackagePath(name, treeHash), ArtifactIndexFilename)
}

// ClonesDir returns clones/.
func (d *Depot) ClonesDir() string { return filepath.Join(d.Root, "clones") }

// ClonePath returns clones/<hash>/ for a git source URL, keyed by its
// CacheKey.
func (d *Depot) ClonePath(source string) string {
	return filepath.Join(d.ClonesDir(), CacheKey(source))
}

// ScratchspacesDir returns scratchspaces/.
func (d *Depot) ScratchspacesDir() string { return filepath.Join(d.Root, "scratchspaces") }

// ScratchPath returns scratchspaces/<uuid>/<name>/ for a package's scratch
// directory.
func (d *Depot) ScratchPath(uuid, name string) string {
	return filepath.Join(d.ScratchspacesDir(), uuid, name)
}

// LogsDir returns logs/.
func (d *Depot) LogsDir() string { return filepath.Join(d.Root, "logs") }

// ManifestUsagePath returns logs/manifest_usage.toml.
func (d *Depot) ManifestUsagePath() string { return filepath.Join(d.LogsDir(), "manifest_usage.toml") }

// ArtifactUsagePath returns logs/artifact_usage.toml.
func (d *Depot) ArtifactUsagePath() string { return filepath.Join(d.LogsDir(), "artifact_usage.toml") }

// ScratchUsagePath returns logs/scratch_usage.toml.
func (d *Depot) ScratchUsagePath() string { return filepath.Join(d.LogsDir(), "scratch_usage.toml") }

// OrphanedPath returns logs/orphaned.toml.
func (d *Depot) OrphanedPath() string { return filepath.Join(d.LogsDir(), "orphaned.toml") }

// CacheKey is the implementation-defined deterministic function of a git
// source URL used to key its bare mirror under clones/.
func CacheKey(source string) string {
	sum := sha1.Sum([]byte(source))
	return hex.EncodeToString(sum[:])
}
