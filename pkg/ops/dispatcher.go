package ops

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ravelin-dev/depotctl/pkg/envcache"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/observability"
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"github.com/ravelin-dev/depotctl/pkg/precompile"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// Dispatcher is the Operation Dispatcher (spec.md §4.9): the top-level
// entry points, each following validate → deep-copy → optionally refresh
// registry → resolve → mutate → write → snapshot → optionally
// auto-precompile.
type Dispatcher struct {
	Runtime *Runtime

	Resolver   VersionResolver
	Downloader Downloader
	Git        GitClient
	Registry   RegistryClient
	Builder    BuildRunner
	Tester     TestRunner

	// Compile and IsStale are the precompile scheduler's external
	// compile-routine and staleness-check collaborators (spec.md §4.8).
	// Nil Compile defaults to "always succeeds" (a no-op build system);
	// nil IsStale defaults to "never stale", meaning nothing recompiles
	// except packages a recompiled dependency forces.
	Compile precompile.CompileFunc
	IsStale precompile.StaleFunc

	// AfterMutate is called once a mutation is written and snapshotted,
	// before any auto-precompile run; callers (e.g. the CLI) hook it to
	// render a summary of what changed. Nil is a valid no-op.
	AfterMutate func(ctx context.Context, op specvalidate.Op, cache *envcache.Cache)
}

// projectPaths resolves the project and manifest file paths for the
// currently active project. The manifest path is derived by convention:
// the same directory, "Manifest.toml" beside "Project.toml". Callers that
// need a different convention should activate a differently-named
// project file; the dispatcher does not validate or special-case
// filenames.
func (d *Dispatcher) projectPaths() (projectPath, manifestPath string, err error) {
	projectPath = d.Runtime.ActiveProject()
	if projectPath == "" {
		return "", "", deperrors.New(deperrors.CodeInvalidSpec, "no active project; call Activate first")
	}
	manifestPath = manifestPathFor(projectPath)
	return projectPath, manifestPath, nil
}

func manifestPathFor(projectPath string) string {
	return filepath.Join(filepath.Dir(projectPath), "Manifest.toml")
}

// instrument wraps a mutating operation with the dispatcher's
// OnMutationStart/OnMutationComplete hooks, using whatever project is
// currently active (best-effort; an empty path just means no project was
// active yet).
func (d *Dispatcher) instrument(ctx context.Context, op string, fn func() error) error {
	projectPath := d.Runtime.ActiveProject()
	observability.Dispatcher().OnMutationStart(ctx, op, projectPath)
	start := time.Now()
	err := fn()
	observability.Dispatcher().OnMutationComplete(ctx, op, projectPath, time.Since(start), err)
	return err
}

// load reads the active environment.
func (d *Dispatcher) load() (*envcache.Cache, error) {
	projectPath, manifestPath, err := d.projectPaths()
	if err != nil {
		return nil, err
	}
	return envcache.Load(d.Runtime.Codec, projectPath, manifestPath)
}

// finish writes the mutated cache, snapshots it into the undo log, runs
// AfterMutate, and optionally auto-precompiles. It is the tail shared by
// every mutating dispatcher method.
func (d *Dispatcher) finish(ctx context.Context, op specvalidate.Op, cache *envcache.Cache, autoPrecompile bool) error {
	if err := cache.Write(d.Runtime.Codec, envcache.WriteOptions{Snapshot: d.Runtime.UndoLog.Snapshot}); err != nil {
		return err
	}
	if d.AfterMutate != nil {
		d.AfterMutate(ctx, op, cache)
	}
	if autoPrecompile && d.Runtime.PrecompileAuto {
		if _, err := d.Precompile(ctx, Options{}); err != nil {
			return err
		}
	}
	return nil
}

// refreshRegistry consults the RegistryClient if opts.UpdateRegistry is
// set and a client is configured. A nil Registry with UpdateRegistry set
// is not an error: it degrades to "no remote metadata available",
// matching the version-range solver / registry client being genuinely
// external, optional collaborators (spec.md §1).
func (d *Dispatcher) refreshRegistry(ctx context.Context, update bool) error {
	if !update || d.Registry == nil {
		return nil
	}
	if err := d.Registry.Refresh(ctx); err != nil {
		return deperrors.Wrap(deperrors.CodeRegistryFailure, err, "refresh registry")
	}
	return nil
}

// Add resolves and installs new dependencies into the active project.
func (d *Dispatcher) Add(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	return d.addOrDevelop(ctx, specvalidate.OpAdd, specs, opts)
}

// Develop is Add's path-tracked counterpart: `rev` is rejected on the
// repo track (developed packages are always path-tracked in practice,
// but the validator still exercises the tagged Tracking variant).
func (d *Dispatcher) Develop(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	return d.addOrDevelop(ctx, specvalidate.OpDevelop, specs, opts)
}

func (d *Dispatcher) addOrDevelop(ctx context.Context, op specvalidate.Op, specs []specvalidate.Spec, opts Options) error {
	return d.instrument(ctx, string(op), func() error { return d.addOrDevelopImpl(ctx, op, specs, opts) })
}

func (d *Dispatcher) addOrDevelopImpl(ctx context.Context, op specvalidate.Op, specs []specvalidate.Spec, opts Options) error {
	cache, err := d.load()
	if err != nil {
		return err
	}

	validated, err := specvalidate.Validate(op, specs, specvalidate.Options{ProjectSelfName: cache.Project.Name})
	if err != nil {
		return err
	}

	if err := d.refreshRegistry(ctx, opts.UpdateRegistry); err != nil {
		return err
	}

	if d.Resolver == nil {
		return deperrors.New(deperrors.CodeRegistryFailure, "no VersionResolver configured")
	}
	resolved, err := d.Resolver.Resolve(ctx, validated, cache.Manifest, ResolveOptions{
		Preserve: opts.Preserve,
		Platform: opts.Platform,
	})
	if err != nil {
		return deperrors.Wrap(deperrors.CodeRegistryFailure, err, "resolve dependencies")
	}

	applyResolved(cache, resolved)
	for _, s := range validated {
		if !s.HasName || !s.HasUUID {
			continue
		}
		if cache.Project.Deps == nil {
			cache.Project.Deps = make(map[string]string)
		}
		cache.Project.Deps[s.Name] = s.UUID.String()
	}
	// A newly-added spec's uuid comes from whichever ResolvedPackage the
	// solver returned for it, not from the spec itself (a bare-name add
	// has no uuid until the registry mints or looks one up); pick those
	// up from the resolved set keyed by name.
	byName := make(map[string]pkgid.ID, len(resolved))
	for _, rp := range resolved {
		byName[rp.ID.Name] = rp.ID
	}
	for i, s := range validated {
		if s.HasUUID || !s.HasName {
			continue
		}
		id, ok := byName[s.Name]
		if !ok {
			continue
		}
		validated[i].UUID, validated[i].HasUUID = id.UUID, true
		if cache.Project.Deps == nil {
			cache.Project.Deps = make(map[string]string)
		}
		cache.Project.Deps[s.Name] = id.UUID.String()
	}

	if ok, why := cache.Manifest.IsTransitivelyClosed(); !ok {
		return deperrors.New(deperrors.CodeUnresolvedSpec, "manifest not transitively closed after resolve: %s", why)
	}

	return d.finish(ctx, op, cache, true)
}

// Rm removes dependencies from scope (mode: project or manifest) and
// prunes any manifest entries that become unreachable as a result.
func (d *Dispatcher) Rm(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	return d.rmOrFree(ctx, specvalidate.OpRm, specs, opts)
}

// Free reverts a pinned package (or an entire scope) back to
// solver-managed versioning; unlike Rm it does not remove the dependency,
// only its pin.
func (d *Dispatcher) Free(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	return d.rmOrFree(ctx, specvalidate.OpFree, specs, opts)
}

func (d *Dispatcher) rmOrFree(ctx context.Context, op specvalidate.Op, specs []specvalidate.Spec, opts Options) error {
	return d.instrument(ctx, string(op), func() error { return d.rmOrFreeImpl(ctx, op, specs, opts) })
}

func (d *Dispatcher) rmOrFreeImpl(ctx context.Context, op specvalidate.Op, specs []specvalidate.Spec, opts Options) error {
	cache, err := d.load()
	if err != nil {
		return err
	}

	validated, err := specvalidate.Validate(op, specs, specvalidate.Options{})
	if err != nil {
		return err
	}

	mode := resolveMode(opts.Mode, specvalidate.ModeProject)
	resolved, err := resolveScoped(cache, validated, mode)
	if err != nil {
		return err
	}
	if err := envcache.EnsureResolved(resolved); err != nil {
		return err
	}

	for _, s := range resolved {
		key := s.UUID.String()
		if _, ok := cache.Manifest.Entries[key]; !ok {
			return deperrors.New(deperrors.CodeNotFound, "%s not found in manifest", s.Name)
		}
	}

	switch op {
	case specvalidate.OpRm:
		for _, s := range resolved {
			key := s.UUID.String()
			delete(cache.Manifest.Entries, key)
			for depName, depUUID := range cache.Project.Deps {
				if depUUID == key || depName == s.Name {
					delete(cache.Project.Deps, depName)
				}
			}
		}
		pruneUnreachable(cache.Project, cache.Manifest)
	case specvalidate.OpFree:
		for _, s := range resolved {
			key := s.UUID.String()
			entry := cache.Manifest.Entries[key]
			entry.Pinned = false
			cache.Manifest.Entries[key] = entry
		}
	}

	return d.finish(ctx, op, cache, true)
}

// Up re-resolves dependencies within opts.Level's allowed bump and
// opts.Mode's scope. An empty spec list means "every dependency in
// scope".
func (d *Dispatcher) Up(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	return d.instrument(ctx, string(specvalidate.OpUp), func() error { return d.upImpl(ctx, specs, opts) })
}

func (d *Dispatcher) upImpl(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	cache, err := d.load()
	if err != nil {
		return err
	}

	validated, err := specvalidate.Validate(specvalidate.OpUp, specs, specvalidate.Options{})
	if err != nil {
		return err
	}

	mode := resolveMode(opts.Mode, specvalidate.ModeManifest)
	if len(validated) == 0 {
		validated = allSpecsInScope(cache, mode)
	} else {
		validated, err = resolveScoped(cache, validated, mode)
		if err != nil {
			return err
		}
	}

	if err := d.refreshRegistry(ctx, opts.UpdateRegistry); err != nil {
		return err
	}

	level := opts.Level
	if level == "" {
		level = LevelMajor
	}
	if d.Resolver == nil {
		return deperrors.New(deperrors.CodeRegistryFailure, "no VersionResolver configured")
	}
	resolved, err := d.Resolver.Resolve(ctx, validated, cache.Manifest, ResolveOptions{Level: level, Platform: opts.Platform})
	if err != nil {
		return deperrors.Wrap(deperrors.CodeRegistryFailure, err, "resolve dependencies")
	}
	applyResolved(cache, resolved)

	if ok, why := cache.Manifest.IsTransitivelyClosed(); !ok {
		return deperrors.New(deperrors.CodeUnresolvedSpec, "manifest not transitively closed after up: %s", why)
	}

	return d.finish(ctx, specvalidate.OpUp, cache, true)
}

// Resolve is defined by spec.md §4.9 as `up` with level=fixed,
// manifest mode, and no registry refresh.
func (d *Dispatcher) Resolve(ctx context.Context) error {
	return d.Up(ctx, nil, Options{Level: LevelFixed, Mode: string(specvalidate.ModeManifest), UpdateRegistry: false})
}

// Pin fixes one or more manifest entries to their current (or an
// explicitly given exact) version and marks them pinned so future `up`
// calls leave them untouched.
func (d *Dispatcher) Pin(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	return d.instrument(ctx, string(specvalidate.OpPin), func() error { return d.pinImpl(ctx, specs, opts) })
}

func (d *Dispatcher) pinImpl(ctx context.Context, specs []specvalidate.Spec, opts Options) error {
	cache, err := d.load()
	if err != nil {
		return err
	}

	validated, err := specvalidate.Validate(specvalidate.OpPin, specs, specvalidate.Options{})
	if err != nil {
		return err
	}

	resolved, err := cache.ResolveManifest(validated)
	if err != nil {
		return err
	}
	if err := envcache.EnsureResolved(resolved); err != nil {
		return err
	}

	for _, s := range resolved {
		key := s.UUID.String()
		entry, ok := cache.Manifest.Entries[key]
		if !ok {
			return deperrors.New(deperrors.CodeNotFound, "%s not found in manifest", s.Name)
		}
		entry.Pinned = true
		if s.HasVersion && s.Version.IsExact() {
			entry.Version = s.Version.Lower
		}
		cache.Manifest.Entries[key] = entry
	}

	return d.finish(ctx, specvalidate.OpPin, cache, true)
}

// Undo moves the active project's history one step toward older.
func (d *Dispatcher) Undo(ctx context.Context) error {
	return d.instrument(ctx, "undo", func() error {
		cache, err := d.load()
		if err != nil {
			return err
		}
		return d.Runtime.UndoLog.Undo(ctx, cache, d.Runtime.Codec)
	})
}

// Redo moves the active project's history one step toward newer.
func (d *Dispatcher) Redo(ctx context.Context) error {
	return d.instrument(ctx, "redo", func() error {
		cache, err := d.load()
		if err != nil {
			return err
		}
		return d.Runtime.UndoLog.Redo(ctx, cache, d.Runtime.Codec)
	})
}

// resolveMode maps an Options.Mode string to a specvalidate.Mode,
// falling back to def when unset.
func resolveMode(raw string, def specvalidate.Mode) specvalidate.Mode {
	switch specvalidate.Mode(raw) {
	case specvalidate.ModeProject, specvalidate.ModeManifest:
		return specvalidate.Mode(raw)
	default:
		return def
	}
}

// resolveScoped resolves each spec's missing name/uuid against the scope
// named by mode.
func resolveScoped(cache *envcache.Cache, specs []specvalidate.Spec, mode specvalidate.Mode) ([]specvalidate.Spec, error) {
	if mode == specvalidate.ModeProject {
		return cache.ResolveProjectDeps(specs)
	}
	return cache.ResolveManifest(specs)
}

// allSpecsInScope builds the full spec list for an empty-spec `up`,
// meaning "every dependency currently in scope".
func allSpecsInScope(cache *envcache.Cache, mode specvalidate.Mode) []specvalidate.Spec {
	var out []specvalidate.Spec
	if mode == specvalidate.ModeProject {
		names := make([]string, 0, len(cache.Project.Deps))
		for n := range cache.Project.Deps {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			u, err := uuid.Parse(cache.Project.Deps[n])
			if err != nil {
				continue
			}
			out = append(out, specvalidate.Spec{Name: n, HasName: true, UUID: u, HasUUID: true})
		}
		return out
	}
	keys := make([]string, 0, len(cache.Manifest.Entries))
	for k := range cache.Manifest.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		u, err := uuid.Parse(k)
		if err != nil {
			continue
		}
		out = append(out, specvalidate.Spec{Name: cache.Manifest.Entries[k].Name, HasName: true, UUID: u, HasUUID: true})
	}
	return out
}

// applyResolved merges every ResolvedPackage the VersionResolver
// returned into the manifest, replacing any existing entry for the same
// uuid.
func applyResolved(cache *envcache.Cache, resolved []ResolvedPackage) {
	if cache.Manifest.Entries == nil {
		cache.Manifest.Entries = make(map[string]manifest.Entry)
	}
	for _, rp := range resolved {
		cache.Manifest.Entries[rp.ID.Key()] = manifest.Entry{
			Name:     rp.ID.Name,
			Version:  rp.Version,
			TreeHash: rp.TreeHash,
			Repo:     rp.Repo,
			Path:     rp.Path,
			Pinned:   rp.Pinned,
			Deps:     rp.Deps,
		}
	}
}

// pruneUnreachable removes every manifest entry not reachable by BFS
// from the project's direct dependencies (and its own self-identity, if
// any), keeping the manifest a true reflection of what the project
// actually needs after an `rm`.
func pruneUnreachable(p *manifest.Project, m *manifest.Manifest) {
	reachable := make(map[string]bool)
	var frontier []string
	for _, u := range p.Deps {
		frontier = append(frontier, u)
	}
	if id, ok := p.SelfID(); ok {
		frontier = append(frontier, id.Key())
	}
	for len(frontier) > 0 {
		key := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if reachable[key] {
			continue
		}
		reachable[key] = true
		entry, ok := m.Entries[key]
		if !ok {
			continue
		}
		for _, depUUID := range entry.Deps {
			if !reachable[depUUID] {
				frontier = append(frontier, depUUID)
			}
		}
	}
	for key := range m.Entries {
		if !reachable[key] {
			delete(m.Entries, key)
		}
	}
}
