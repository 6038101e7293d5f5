package ops

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/envcache"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/httputil"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
)

// Instantiate materializes every dependency named in the active
// environment's manifest into the depot: repo-tracked packages are
// cloned/fetched and checked out by tree-hash, registry-tracked packages
// have their source and artifacts downloaded, and build scripts run
// before an optional auto-precompile. If the project file is missing but
// a manifest already exists, a project is synthesized from the
// manifest's entries first (Open Question resolution: only manifest
// entries with no incoming Deps reference from any other entry are
// top-level, mirroring pkg/dag.Sources()'s in-degree-zero computation —
// see DESIGN.md).
func (d *Dispatcher) Instantiate(ctx context.Context, opts Options) error {
	projectPath, manifestPath, err := d.projectPaths()
	if err != nil {
		return err
	}

	cache, err := envcache.Load(d.Runtime.Codec, projectPath, manifestPath)
	if err != nil {
		return err
	}

	if !depot.Exists(projectPath) && len(cache.Manifest.Entries) > 0 {
		if err := synthesizeProject(cache); err != nil {
			return err
		}
	}

	for _, u := range cache.Project.Deps {
		if _, ok := cache.Manifest.Entries[u]; !ok {
			return deperrors.New(deperrors.CodeNotFound, "manifest missing entry for project dependency %s", u)
		}
	}

	// A failing registry refresh (only attempted when opts.UpdateRegistry is
	// set) is retried once with the same arguments; a second failure
	// propagates. No forced registry update is made on failure.
	if err := httputil.Retry(ctx, 2, 0, func() error {
		if err := d.refreshRegistry(ctx, opts.UpdateRegistry); err != nil {
			return &httputil.RetryableError{Err: err}
		}
		return nil
	}); err != nil {
		return err
	}

	dep := d.Runtime.PrimaryDepot()
	if dep == nil {
		return deperrors.New(deperrors.CodeIOFailure, "no depot configured")
	}
	if err := dep.EnsureDirs(); err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "prepare depot at %s", dep.Root)
	}

	keys := make([]string, 0, len(cache.Manifest.Entries))
	for k := range cache.Manifest.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var gitErr error
	for _, key := range keys {
		entry := cache.Manifest.Entries[key]
		rp := entryToResolved(key, entry)

		switch {
		case entry.Repo != nil && entry.Repo.Source != "":
			if err := d.materializeRepoTracked(ctx, dep, entry); err != nil {
				if gitErr == nil {
					gitErr = err
				}
				continue
			}
		case entry.Path != "":
			// Path-tracked (developed) packages already live at their
			// declared filesystem path; nothing to materialize.
		default:
			if d.Downloader != nil && entry.TreeHash != "" {
				destDir := dep.PackagePath(entry.Name, entry.TreeHash)
				if err := d.Downloader.FetchSource(ctx, rp, destDir); err != nil {
					return deperrors.Wrap(deperrors.CodeIOFailure, err, "fetch source for %s", entry.Name)
				}
				fetched, err := d.Downloader.FetchArtifacts(ctx, rp, dep.ArtifactsDir(), opts.Platform)
				if err != nil {
					return deperrors.Wrap(deperrors.CodeIOFailure, err, "fetch artifacts for %s", entry.Name)
				}
				if len(fetched) > 0 {
					idxPath := dep.ArtifactIndexPath(entry.Name, entry.TreeHash)
					if err := manifest.WriteArtifactIndex(idxPath, &manifest.ArtifactIndex{Artifacts: fetched}); err != nil {
						return deperrors.Wrap(deperrors.CodeIOFailure, err, "write artifact index for %s", entry.Name)
					}
				}
			}
		}

		if d.Builder != nil {
			srcDir := entry.Path
			if srcDir == "" && entry.TreeHash != "" {
				srcDir = dep.PackagePath(entry.Name, entry.TreeHash)
			}
			if srcDir != "" {
				if err := d.Builder.RunBuild(ctx, rp, srcDir); err != nil {
					return deperrors.Wrap(deperrors.CodeIOFailure, err, "build %s", entry.Name)
				}
			}
		}
	}
	if gitErr != nil {
		return gitErr
	}

	if err := cache.Write(d.Runtime.Codec, envcache.WriteOptions{Snapshot: d.Runtime.UndoLog.Snapshot}); err != nil {
		return err
	}
	d.recordManifestUsage(cache.ManifestPath)

	if d.Runtime.PrecompileAuto {
		if _, err := d.Precompile(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}

// materializeRepoTracked clones or fetches entry's repo into clones/ and
// checks the required tree-hash out into packages/. A tree-hash still
// missing after a fetch is a GitFailure, fatal to this package but not
// to the rest of instantiate (spec.md §7).
func (d *Dispatcher) materializeRepoTracked(ctx context.Context, dep *depot.Depot, entry manifest.Entry) error {
	if d.Git == nil {
		return nil
	}
	cloneDir := dep.ClonePath(entry.Repo.Source)
	if err := d.Git.CloneOrFetch(ctx, entry.Repo.Source, cloneDir); err != nil {
		return deperrors.Wrap(deperrors.CodeGitFailure, err, "clone/fetch %s", entry.Repo.Source)
	}
	if entry.TreeHash == "" {
		return nil
	}
	destDir := dep.PackagePath(entry.Name, entry.TreeHash)
	if err := d.Git.CheckoutTree(ctx, cloneDir, entry.TreeHash, destDir); err != nil {
		return deperrors.Wrap(deperrors.CodeGitFailure, err, "checkout tree %s for %s", entry.TreeHash, entry.Name)
	}
	return nil
}

// synthesizeProject fills in cache.Project.Deps from the manifest's
// top-level entries when no project file exists yet. An entry is
// top-level iff its uuid key never appears as a value in any other
// entry's Deps map (name -> uuid) — the same in-degree-zero test
// pkg/dag.Sources() applies to a built graph, computed here directly
// over the manifest since building a full *dag.DAG just to ask this one
// question would be needless indirection. Fails on a duplicate name (two
// top-level manifest entries cannot become the same project dependency
// name).
func synthesizeProject(cache *envcache.Cache) error {
	referenced := make(map[string]bool, len(cache.Manifest.Entries))
	for _, entry := range cache.Manifest.Entries {
		for _, depKey := range entry.Deps {
			referenced[depKey] = true
		}
	}

	selfKey := ""
	if selfID, ok := cache.Project.SelfID(); ok {
		selfKey = selfID.Key()
	}

	deps := make(map[string]string, len(cache.Manifest.Entries))
	for key, entry := range cache.Manifest.Entries {
		if key == selfKey || referenced[key] {
			continue
		}
		if _, dup := deps[entry.Name]; dup {
			return deperrors.New(deperrors.CodeInvalidSpec, "duplicate package name %q while synthesizing project from manifest", entry.Name)
		}
		deps[entry.Name] = key
	}
	cache.Project.Deps = deps
	return nil
}

func entryToResolved(key string, entry manifest.Entry) ResolvedPackage {
	u, _ := uuid.Parse(key)
	return ResolvedPackage{
		ID:       pkgid.ID{Name: entry.Name, UUID: u},
		Version:  entry.Version,
		TreeHash: entry.TreeHash,
		Repo:     entry.Repo,
		Path:     entry.Path,
		Pinned:   entry.Pinned,
		Deps:     entry.Deps,
	}
}
