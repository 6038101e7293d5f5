package ops

import (
	"context"
	"sort"

	"github.com/ravelin-dev/depotctl/pkg/pkgid"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// StatusEntry summarizes one manifest entry for `depotctl status`.
type StatusEntry struct {
	ID       pkgid.ID
	Version  string
	TreeHash string
	Pinned   bool
	Direct   bool
}

// Status reports every manifest entry in opts.Mode's scope (default:
// manifest), flagging which ones are direct project dependencies.
func (d *Dispatcher) Status(ctx context.Context, opts Options) ([]StatusEntry, error) {
	cache, err := d.load()
	if err != nil {
		return nil, err
	}
	mode := resolveMode(opts.Mode, specvalidate.ModeManifest)

	direct := make(map[string]bool, len(cache.Project.Deps))
	for _, u := range cache.Project.Deps {
		direct[u] = true
	}

	keys := make([]string, 0, len(cache.Manifest.Entries))
	for k := range cache.Manifest.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]StatusEntry, 0, len(keys))
	for _, k := range keys {
		if mode == specvalidate.ModeProject && !direct[k] {
			continue
		}
		entry := cache.Manifest.Entries[k]
		id := entryToResolved(k, entry).ID
		out = append(out, StatusEntry{
			ID:       id,
			Version:  entry.Version,
			TreeHash: entry.TreeHash,
			Pinned:   entry.Pinned,
			Direct:   direct[k],
		})
	}
	return out, nil
}

// Test invokes the external test runner over the caller-supplied ids,
// forwarding coverage/julia_args/test_args per spec.md §6. A nil Tester
// makes Test a no-op.
func (d *Dispatcher) Test(ctx context.Context, ids []pkgid.ID, opts Options) error {
	if d.Tester == nil {
		return nil
	}
	return d.Tester.RunTests(ctx, ids, TestOptions{
		Coverage:  opts.Coverage,
		ExtraArgs: opts.JuliaArgs,
		TestArgs:  opts.TestArgs,
	})
}

// Build runs the external build script for the named manifest entries
// directly, without a full Instantiate pass.
func (d *Dispatcher) Build(ctx context.Context, ids []pkgid.ID, opts Options) error {
	if d.Builder == nil {
		return nil
	}
	cache, err := d.load()
	if err != nil {
		return err
	}
	dep := d.Runtime.PrimaryDepot()
	for _, id := range ids {
		entry, ok := cache.Manifest.Entries[id.Key()]
		if !ok {
			continue
		}
		srcDir := entry.Path
		if srcDir == "" && entry.TreeHash != "" && dep != nil {
			srcDir = dep.PackagePath(entry.Name, entry.TreeHash)
		}
		if srcDir == "" {
			continue
		}
		if err := d.Builder.RunBuild(ctx, entryToResolved(id.Key(), entry), srcDir); err != nil {
			return err
		}
	}
	return nil
}
