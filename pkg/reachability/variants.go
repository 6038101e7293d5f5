package reachability

import (
	"strings"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

// PackageMark returns the ProcessFunc that reads the manifest at an index
// file's path and yields packages/<name>/<slug> for every entry carrying
// a tree-hash. Package marking must run before artifact and scratch
// marking: those consult the pending package-deletion set this variant's
// output feeds into.
func PackageMark(codec manifest.ProjectCodec, d *depot.Depot) ProcessFunc {
	return func(indexFile string) ([]string, bool) {
		m, err := codec.ReadManifest(indexFile)
		if err != nil {
			return nil, false
		}
		var paths []string
		for _, entry := range m.Entries {
			if entry.TreeHash == "" {
				continue
			}
			paths = append(paths, d.PackagePath(entry.Name, entry.TreeHash))
		}
		return paths, true
	}
}

// RepoMark returns the ProcessFunc that reads the same manifest index
// file and yields clones/<cache-key(source)> for every repo-tracked
// entry.
func RepoMark(codec manifest.ProjectCodec, d *depot.Depot) ProcessFunc {
	return func(indexFile string) ([]string, bool) {
		m, err := codec.ReadManifest(indexFile)
		if err != nil {
			return nil, false
		}
		var paths []string
		for _, entry := range m.Entries {
			if entry.Repo == nil || entry.Repo.Source == "" {
				continue
			}
			paths = append(paths, d.ClonePath(entry.Repo.Source))
		}
		return paths, true
	}
}

// ArtifactRef is one entry of an artifacts index file: a tree-hash,
// optionally scoped to a platform. The artifact downloader (out of
// scope) defines the actual on-disk index format; this is the minimal
// shape the marker needs.
type ArtifactRef struct {
	TreeHash string
	Platform string
}

// ReadArtifactIndexFunc loads the artifact references recorded at an
// index file path. Supplied by the caller since the index format is an
// external collaborator's concern.
type ReadArtifactIndexFunc func(indexFile string) ([]ArtifactRef, error)

// ArtifactMark returns the ProcessFunc for artifact marking. If an index
// file lies under any path already in packagesToDelete, it is skipped
// (counts as inactive) — its artifacts are only reachable through a
// package that is itself being deleted. Otherwise every referenced
// tree-hash yields artifacts/<hex>.
func ArtifactMark(d *depot.Depot, read ReadArtifactIndexFunc, packagesToDelete map[string]bool) ProcessFunc {
	return func(indexFile string) ([]string, bool) {
		if underAny(indexFile, packagesToDelete) {
			return nil, false
		}
		refs, err := read(indexFile)
		if err != nil {
			return nil, false
		}
		var paths []string
		for _, ref := range refs {
			paths = append(paths, d.ArtifactPath(ref.TreeHash))
		}
		return paths, true
	}
}

// ParentsOfFunc looks up the parent project files recorded for a scratch
// directory across all depots.
type ParentsOfFunc func(scratchDir string) []string

// ScratchMark returns the ProcessFunc for scratch marking. A scratch
// directory is skipped (inactive) when every one of its recorded parents
// lies under a package scheduled for deletion; otherwise it yields
// itself.
func ScratchMark(parentsOf ParentsOfFunc, packagesToDelete map[string]bool) ProcessFunc {
	return func(scratchDir string) ([]string, bool) {
		parents := parentsOf(scratchDir)
		if len(parents) == 0 {
			return nil, false
		}
		allDeleted := true
		for _, p := range parents {
			if !underAny(p, packagesToDelete) {
				allDeleted = false
				break
			}
		}
		if allDeleted {
			return nil, false
		}
		return []string{scratchDir}, true
	}
}

func underAny(path string, prefixes map[string]bool) bool {
	for prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
