package ops

import (
	"context"
	"sort"
	"strings"

	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"github.com/ravelin-dev/depotctl/pkg/precompile"
)

// Precompile runs the precompile scheduler over the active environment's
// manifest, resuming from whatever was persisted in the suspension store
// on a prior run. This is what an auto-precompile after a mutation calls;
// the CLI's explicit `depotctl precompile` invocation should call
// ManualPrecompile instead, which clears prior suspensions first per
// spec.md §4.8's "when the user invokes precompile manually ... the list
// is first cleared".
func (d *Dispatcher) Precompile(ctx context.Context, opts Options) (*precompile.Result, error) {
	return d.runPrecompile(ctx, opts, false)
}

// ManualPrecompile is the explicit, user-invoked precompile entry point:
// it clears the persisted suspension list before running.
func (d *Dispatcher) ManualPrecompile(ctx context.Context, opts Options) (*precompile.Result, error) {
	return d.runPrecompile(ctx, opts, true)
}

func (d *Dispatcher) runPrecompile(ctx context.Context, opts Options, manual bool) (*precompile.Result, error) {
	cache, err := d.load()
	if err != nil {
		return nil, err
	}

	depsMap := cache.Manifest.DepsMap()
	directDeps := make(map[pkgid.ID]bool)
	for _, u := range cache.Project.Deps {
		for id := range depsMap {
			if id.Key() == u {
				directDeps[id] = true
			}
		}
	}
	if selfID, ok := cache.Project.SelfID(); ok {
		if _, exists := depsMap[selfID]; !exists {
			var deps []pkgid.ID
			for id := range depsMap {
				if directDeps[id] {
					deps = append(deps, id)
				}
			}
			sort.Slice(deps, func(i, j int) bool { return deps[i].Key() < deps[j].Key() })
			depsMap[selfID] = deps
		}
	}

	key := precompile.SuspensionKey{ProjectPath: cache.ProjectPath, RuntimeVersion: d.Runtime.RuntimeVersion}
	if manual && d.Runtime.SuspensionStore != nil {
		if err := d.Runtime.SuspensionStore.Clear(ctx, key); err != nil {
			return nil, err
		}
	}
	suspended := make(map[string]bool)
	if d.Runtime.SuspensionStore != nil {
		suspended, err = d.Runtime.SuspensionStore.Load(ctx, key)
		if err != nil {
			return nil, err
		}
	}

	scheduler := &precompile.Scheduler{
		DepsMap:     depsMap,
		DirectDeps:  directDeps,
		Compile:     d.compileFunc(),
		IsStale:     d.IsStale,
		Concurrency: d.Runtime.PrecompileConcurrency,
		Suspended:   suspended,
	}

	result, err := scheduler.Run(ctx)
	if err != nil {
		return nil, err
	}

	if d.Runtime.SuspensionStore != nil {
		if err := d.Runtime.SuspensionStore.Save(ctx, key, result.Suspended); err != nil {
			return result, err
		}
	}

	d.recordManifestUsage(cache.ManifestPath)

	// Aggregation into a hard error only applies to a user-invoked
	// precompile, and only for direct-dep failures (spec.md §7): an
	// auto-precompile kicked off after a successful mutation must not
	// fail the mutation itself, since the manifest write and undo
	// snapshot already succeeded. Every failure, direct or transitive,
	// is still recorded per-package via observability.OnSuspended inside
	// the scheduler regardless of manual.
	if manual {
		names := make([]string, 0, len(result.Failed))
		for id := range result.Failed {
			if directDeps[id] {
				names = append(names, id.Name)
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			return result, deperrors.New(deperrors.CodePrecompileError, "failed to precompile: %s", strings.Join(names, ", "))
		}
	}
	return result, nil
}

// compileFunc resolves the effective CompileFunc: the dispatcher's own
// Compile collaborator if set, otherwise a no-op that reports every
// package as freshly compiled — the compile routine itself is an
// external, opaque call per spec.md §5.
func (d *Dispatcher) compileFunc() precompile.CompileFunc {
	if d.Compile != nil {
		return d.Compile
	}
	return func(context.Context, pkgid.ID) error { return nil }
}
