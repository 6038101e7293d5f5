package ops

import (
	"context"

	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// ResolvedPackage is one package as the (external) version-range solver
// resolved it: a concrete uuid/version/tree-hash/tracking plus its own
// direct dependencies. The dispatcher only ever consumes this shape; it
// never computes it.
type ResolvedPackage struct {
	ID       pkgid.ID
	Version  string
	TreeHash string
	Repo     *manifest.RepoInfo
	Path     string
	Pinned   bool
	Deps     map[string]string // name -> uuid string
}

// ResolveOptions carries the caller options relevant to a resolve call:
// the preserve strictness for already-installed packages, the maximum
// version bump level, and the target platform for artifact selection.
type ResolveOptions struct {
	Preserve Preserve
	Level    Level
	Platform string
}

// VersionResolver is the external version-range solver + registry client
// collaborator (spec.md §1's out-of-scope external collaborators). Given
// a normalized, uuid-resolved spec list and the environment's current
// manifest, it returns the full set of packages that must exist in the
// manifest afterward — the requested packages plus every transitive
// dependency newly pulled in or re-pinned by the requested change.
//
// The interface has no removal method: Resolve is not consulted for
// pure removals (rm), since dropping a dependency needs no solving, only
// a prune of now-unreachable manifest entries, which the dispatcher
// performs itself (see dispatcher.go's pruneUnreachable).
type VersionResolver interface {
	Resolve(ctx context.Context, specs []specvalidate.Spec, current *manifest.Manifest, opts ResolveOptions) ([]ResolvedPackage, error)
}

// Downloader is the external artifact/source-download collaborator.
// FetchSource materializes a package's extracted source tree into
// destDir (a depot's packages/<name>/<slug>/ path). FetchArtifacts
// downloads every platform-matching artifact into its own
// content-addressed subdirectory of artifactsDir (artifacts/<sha1>/,
// one per fetched tree-hash) and reports what it fetched, since an
// artifact's tree-hash is independent of the package's own source
// tree-hash and is only known once the download completes; the caller
// records the result into the package's own Artifacts.toml so a later
// GC sweep can find it again.
type Downloader interface {
	FetchSource(ctx context.Context, pkg ResolvedPackage, destDir string) error
	FetchArtifacts(ctx context.Context, pkg ResolvedPackage, artifactsDir, platform string) ([]manifest.ArtifactIndexEntry, error)
}

// GitClient is the external git-plumbing collaborator used by
// instantiate for repo-tracked packages.
type GitClient interface {
	// CloneOrFetch ensures a bare mirror of source exists at destDir,
	// cloning it fresh or fetching updates into an existing mirror.
	CloneOrFetch(ctx context.Context, source, destDir string) error
	// CheckoutTree checks the tree named by treeHash out of the bare
	// mirror at cloneDir into destDir. Returns a GitFailure error if the
	// tree-hash is not present even after CloneOrFetch was called.
	CheckoutTree(ctx context.Context, cloneDir, treeHash, destDir string) error
}

// RegistryClient is the external registry-refresh collaborator consulted
// when an operation's UpdateRegistry option is set.
type RegistryClient interface {
	Refresh(ctx context.Context) error
}

// BuildRunner is the external build-script collaborator invoked by
// instantiate after source/artifacts are in place, and by the `build`
// dispatcher entry point for an explicit rebuild.
type BuildRunner interface {
	RunBuild(ctx context.Context, pkg ResolvedPackage, srcDir string) error
}

// TestRunner is the external test-harness collaborator invoked by the
// `test` dispatcher entry point.
type TestRunner interface {
	RunTests(ctx context.Context, ids []pkgid.ID, opts TestOptions) error
}
