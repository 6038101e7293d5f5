package depot

import (
	"os"
	"path/filepath"
)

// EnsureDirs creates every tree the depot needs, if missing.
func (d *Depot) EnsureDirs() error {
	for _, dir := range []string{d.PackagesDir(), d.ArtifactsDir(), d.ClonesDir(), d.ScratchspacesDir(), d.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Exists reports whether path exists on disk, treating any stat error
// (including permission failures) as "does not exist" — the usage
// ledger and GC driver only ever need a boolean existence check, never
// the error detail.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// DirSize recursively sums the size in bytes of every regular file under
// root. Errors walking individual entries are ignored; GC treats size
// accounting as best-effort, mirroring its deletion policy.
func DirSize(root string) int64 {
	var total int64
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil {
			return nil
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// PackageDirEntry is one directory found under packages/<name>/<slug>/.
type PackageDirEntry struct {
	Name string
	Slug string
	Path string
}

// ListPackageDirs enumerates packages/*/*/ under the depot.
func (d *Depot) ListPackageDirs() ([]PackageDirEntry, error) {
	var out []PackageDirEntry
	names, err := listDirs(d.PackagesDir())
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		slugs, err := listDirs(filepath.Join(d.PackagesDir(), name))
		if err != nil {
			continue
		}
		for _, slug := range slugs {
			out = append(out, PackageDirEntry{
				Name: name,
				Slug: slug,
				Path: filepath.Join(d.PackagesDir(), name, slug),
			})
		}
	}
	return out, nil
}

// ListArtifactDirs enumerates artifacts/* under the depot.
func (d *Depot) ListArtifactDirs() ([]string, error) {
	names, err := listDirs(d.ArtifactsDir())
	if err != nil {
		return nil, err
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(d.ArtifactsDir(), n)
	}
	return out, nil
}

// ListCloneDirs enumerates clones/* under the depot.
func (d *Depot) ListCloneDirs() ([]string, error) {
	names, err := listDirs(d.ClonesDir())
	if err != nil {
		return nil, err
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(d.ClonesDir(), n)
	}
	return out, nil
}

// ScratchDirEntry is one directory found under
// scratchspaces/<uuid>/<name>/.
type ScratchDirEntry struct {
	UUID string
	Name string
	Path string
}

// ListScratchDirs enumerates scratchspaces/*/*/ under the depot.
func (d *Depot) ListScratchDirs() ([]ScratchDirEntry, error) {
	var out []ScratchDirEntry
	uuids, err := listDirs(d.ScratchspacesDir())
	if err != nil {
		return nil, err
	}
	for _, u := range uuids {
		names, err := listDirs(filepath.Join(d.ScratchspacesDir(), u))
		if err != nil {
			continue
		}
		for _, name := range names {
			out = append(out, ScratchDirEntry{
				UUID: u,
				Name: name,
				Path: filepath.Join(d.ScratchspacesDir(), u, name),
			})
		}
	}
	return out, nil
}

// PruneEmptyDirs removes empty directories under packages/<name>/ and
// scratchspaces/<uuid>/ left behind after their contents are deleted.
func (d *Depot) PruneEmptyDirs() {
	pruneEmptySubdirs(d.PackagesDir())
	pruneEmptySubdirs(d.ScratchspacesDir())
}

func pruneEmptySubdirs(root string) {
	names, err := listDirs(root)
	if err != nil {
		return
	}
	for _, name := range names {
		dir := filepath.Join(root, name)
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) == 0 {
			os.Remove(dir)
		}
	}
}

func listDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
