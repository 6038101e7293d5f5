package ops

import (
	"time"

	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/reachability"
	"github.com/ravelin-dev/depotctl/pkg/usageledger"
)

// recordManifestUsage touches manifestPath's last-use timestamp in the
// primary depot's manifest and artifact usage ledgers, so a subsequent
// GC sweep treats this environment as active and marks its content
// reachable. Every dispatcher entry point that reads or writes package
// content (instantiate, precompile) calls this; a best-effort write
// failure is swallowed the same way GC treats IO failures as "absent" —
// worst case, the environment is treated as inactive one GC cycle early.
func (d *Dispatcher) recordManifestUsage(manifestPath string) {
	dep := d.Runtime.PrimaryDepot()
	if dep == nil {
		return
	}
	now := time.Now()
	touchLedger(dep.ManifestUsagePath(), manifestPath, now, "")
	touchLedger(dep.ArtifactUsagePath(), manifestPath, now, "")
}

// recordScratchUsage touches scratchDir's last-use timestamp and records
// manifestPath as one of its parent projects, so ScratchMark keeps it
// alive as long as this environment still references it.
func (d *Dispatcher) recordScratchUsage(scratchDir, manifestPath string) {
	dep := d.Runtime.PrimaryDepot()
	if dep == nil {
		return
	}
	touchLedger(dep.ScratchUsagePath(), scratchDir, time.Now(), manifestPath)
}

func touchLedger(path, filename string, t time.Time, parentProject string) {
	l, err := usageledger.Read(path)
	if err != nil {
		l = usageledger.New()
	}
	l.Touch(filename, t, parentProject)
	_ = usageledger.Write(path, l)
}

// manifestIndexFiles returns the union of manifest-usage-ledger keys
// across every configured depot: every manifest file path that has
// touched this depot chain and is therefore a candidate root for
// reachability marking.
func (d *Dispatcher) manifestIndexFiles() []string {
	seen := make(map[string]bool)
	var out []string
	for _, dep := range d.Runtime.Depots {
		l, err := usageledger.Read(dep.ManifestUsagePath())
		if err != nil {
			continue
		}
		for filename := range l {
			if !seen[filename] {
				seen[filename] = true
				out = append(out, filename)
			}
		}
	}
	return out
}

// defaultReadArtifactIndex builds a reachability.ReadArtifactIndexFunc
// that reads a package's own Artifacts.toml: a distinct, independently
// content-addressed index a package's downloaded source carries
// alongside it (§3/§4.5), not the package's own source tree-hash.
func defaultReadArtifactIndex() reachability.ReadArtifactIndexFunc {
	return func(indexFile string) ([]reachability.ArtifactRef, error) {
		idx, err := manifest.ReadArtifactIndex(indexFile)
		if err != nil {
			return nil, err
		}
		refs := make([]reachability.ArtifactRef, 0, len(idx.Artifacts))
		for _, a := range idx.Artifacts {
			refs = append(refs, reachability.ArtifactRef{TreeHash: a.TreeHash, Platform: a.Platform})
		}
		return refs, nil
	}
}

// defaultParentsOf builds a reachability.ParentsOfFunc that looks up a
// scratch directory's recorded parent projects in scratch_usage.toml
// across every configured depot.
func (d *Dispatcher) defaultParentsOf() reachability.ParentsOfFunc {
	return func(scratchDir string) []string {
		var parents []string
		seen := make(map[string]bool)
		for _, dep := range d.Runtime.Depots {
			l, err := usageledger.Read(dep.ScratchUsagePath())
			if err != nil {
				continue
			}
			u, ok := l[scratchDir]
			if !ok {
				continue
			}
			for p := range u.ParentProjects {
				if !seen[p] {
					seen[p] = true
					parents = append(parents, p)
				}
			}
		}
		return parents
	}
}
