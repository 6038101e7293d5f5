// Package gc implements the GC Driver: the single-pass sweep that reads
// usage ledgers across every depot, computes reachability, consults the
// per-depot orphanage grace-period record, and deletes content that has
// been continuously unreachable for long enough.
package gc

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/observability"
	"github.com/ravelin-dev/depotctl/pkg/orphanage"
	"github.com/ravelin-dev/depotctl/pkg/reachability"
	"github.com/ravelin-dev/depotctl/pkg/usageledger"
)

// Driver runs the GC sweep across a set of depots sharing one pool of
// active environment manifests.
type Driver struct {
	Depots             []*depot.Depot
	ManifestCodec      manifest.ProjectCodec
	ManifestIndexFiles []string
	ReadArtifactIndex  reachability.ReadArtifactIndexFunc
	ParentsOf          reachability.ParentsOfFunc
	CollectDelay       time.Duration

	// Now returns the current time; overridable in tests. Defaults to
	// time.Now when nil.
	Now func() time.Time
}

// Report summarises one GC run.
type Report struct {
	Deleted    []string
	FreedBytes map[string]int64
	Warnings   []string
}

func (d *Driver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Run executes the ten-step sweep described for the GC Driver. It
// returns as soon as ctx is cancelled between steps; deletion within a
// single step is always allowed to finish since partial deletion passes
// are safe to resume on the next run.
func (d *Driver) Run(ctx context.Context) (Report, error) {
	label := d.label()
	start := d.now()
	observability.GC().OnSweepStart(ctx, label)
	report, err := d.run(ctx)
	observability.GC().OnSweepComplete(ctx, label, len(report.Deleted), d.now().Sub(start), err)
	return report, err
}

// label identifies this sweep's depot set for observability purposes.
func (d *Driver) label() string {
	if len(d.Depots) == 0 {
		return ""
	}
	return d.Depots[0].Root
}

func (d *Driver) run(ctx context.Context) (Report, error) {
	report := Report{FreedBytes: make(map[string]int64)}

	// Step 1-3: read, merge, existence-filter, and rewrite usage ledgers.
	manifestLedgers := make(map[*depot.Depot]usageledger.Ledger)
	artifactLedgers := make(map[*depot.Depot]usageledger.Ledger)
	scratchLedgers := make(map[*depot.Depot]usageledger.Ledger)

	for _, dep := range d.Depots {
		ml, err := usageledger.Read(dep.ManifestUsagePath())
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			ml = usageledger.New()
		}
		al, err := usageledger.Read(dep.ArtifactUsagePath())
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			al = usageledger.New()
		}
		sl, err := usageledger.Read(dep.ScratchUsagePath())
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			sl = usageledger.New()
		}
		manifestLedgers[dep] = ml
		artifactLedgers[dep] = al
		scratchLedgers[dep] = sl
	}

	if ctx.Err() != nil {
		return report, ctx.Err()
	}

	exists := func(path string) bool { return depot.Exists(path) }
	for _, dep := range d.Depots {
		filtered := manifestLedgers[dep].FilterExisting(exists, false, nil)
		if err := usageledger.Write(dep.ManifestUsagePath(), filtered); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		manifestLedgers[dep] = filtered

		filtered = artifactLedgers[dep].FilterExisting(exists, false, nil)
		if err := usageledger.Write(dep.ArtifactUsagePath(), filtered); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		artifactLedgers[dep] = filtered

		filtered = scratchLedgers[dep].FilterExisting(exists, true, exists)
		if err := usageledger.Write(dep.ScratchUsagePath(), filtered); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		scratchLedgers[dep] = filtered
	}

	// Step 4: mark packages-to-keep across all depots. A package entry's
	// path is depot-relative; a package reachable in one depot keeps the
	// identically-named/slugged directory alive in every depot, since the
	// depot stack is searched in order and any of them may be the hit.
	packagesToKeep := make(map[string]bool)
	for _, dep := range d.Depots {
		res := reachability.Mark(d.ManifestIndexFiles, reachability.PackageMark(d.ManifestCodec, dep))
		for path := range res.Marked {
			packagesToKeep[relSuffix(dep, path)] = true
		}
	}

	if ctx.Err() != nil {
		return report, ctx.Err()
	}

	// Step 5: enumerate packages/*/*/ per depot; anything not kept is a
	// package-orphan candidate. Run Orphanage with an empty "old" to get a
	// preliminary packages_to_delete set, which feeds artifact/scratch
	// marking per the §4.5 ordering note.
	packagesToDelete := make(map[string]bool)
	packageCandidatesByDepot := make(map[*depot.Depot][]string)
	packageDirsByDepot := make(map[*depot.Depot][]depot.PackageDirEntry)
	for _, dep := range d.Depots {
		dirs, err := dep.ListPackageDirs()
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			continue
		}
		packageDirsByDepot[dep] = dirs
		var candidates []string
		for _, pd := range dirs {
			if !packagesToKeep[relSuffix(dep, pd.Path)] {
				candidates = append(candidates, pd.Path)
			}
		}
		packageCandidatesByDepot[dep] = candidates
		_, prelimDeletions := orphanage.Merge(candidates, orphanage.Record{}, d.now(), d.CollectDelay)
		for _, p := range prelimDeletions {
			packagesToDelete[p] = true
		}
		// Even candidates that haven't crossed collect_delay yet should
		// not be treated as reachable by artifact/scratch marking: they
		// are pending deletion, just not deletable this cycle.
		for _, p := range candidates {
			packagesToDelete[p] = true
		}
	}

	// Step 6-7: mark artifacts/clones/scratch-to-keep, then enumerate
	// per-depot orphan candidates.
	artifactsToKeep := make(map[string]bool)
	clonesToKeep := make(map[string]bool)
	scratchToKeep := make(map[string]bool)
	for _, dep := range d.Depots {
		var artifactIndexFiles []string
		for _, pd := range packageDirsByDepot[dep] {
			artifactIndexFiles = append(artifactIndexFiles, filepath.Join(pd.Path, depot.ArtifactIndexFilename))
		}
		artRes := reachability.Mark(artifactIndexFiles, reachability.ArtifactMark(dep, d.ReadArtifactIndex, packagesToDelete))
		for path := range artRes.Marked {
			artifactsToKeep[relSuffix(dep, path)] = true
		}
		repoRes := reachability.Mark(d.ManifestIndexFiles, reachability.RepoMark(d.ManifestCodec, dep))
		for path := range repoRes.Marked {
			clonesToKeep[relSuffix(dep, path)] = true
		}
	}

	if ctx.Err() != nil {
		return report, ctx.Err()
	}

	candidatesByCategory := make(map[*depot.Depot]map[string][]string)
	for _, dep := range d.Depots {
		byCat := map[string][]string{
			"packages": packageCandidatesByDepot[dep],
		}

		artifactDirs, err := dep.ListArtifactDirs()
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		for _, p := range artifactDirs {
			if !artifactsToKeep[relSuffix(dep, p)] {
				byCat["artifacts"] = append(byCat["artifacts"], p)
			}
		}

		cloneDirs, err := dep.ListCloneDirs()
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		for _, p := range cloneDirs {
			if !clonesToKeep[relSuffix(dep, p)] {
				byCat["clones"] = append(byCat["clones"], p)
			}
		}

		scratchDirs, err := dep.ListScratchDirs()
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		for _, sd := range scratchDirs {
			scratchRes := reachability.Mark([]string{sd.Path}, reachability.ScratchMark(d.ParentsOf, packagesToDelete))
			if scratchRes.Active[sd.Path] {
				scratchToKeep[relSuffix(dep, sd.Path)] = true
			} else {
				byCat["scratch"] = append(byCat["scratch"], sd.Path)
			}
		}
		candidatesByCategory[dep] = byCat
	}

	// Step 8: merge against each depot's persisted orphanage record.
	deletionsByDepot := make(map[*depot.Depot][]string)
	for _, dep := range d.Depots {
		old, err := orphanage.Read(dep.OrphanedPath())
		if err != nil {
			report.Warnings = append(report.Warnings, err.Error())
			old = orphanage.Record{}
		}

		var allCandidates []string
		for _, cs := range candidatesByCategory[dep] {
			allCandidates = append(allCandidates, cs...)
		}

		newRecord, deletions := orphanage.Merge(allCandidates, old, d.now(), d.CollectDelay)
		for path := range newRecord {
			if _, wasOrphaned := old[path]; !wasOrphaned {
				observability.GC().OnOrphaned(ctx, categoryOf(dep, path), path)
			}
		}
		if err := orphanage.Write(dep.OrphanedPath(), newRecord); err != nil {
			report.Warnings = append(report.Warnings, err.Error())
		}
		deletionsByDepot[dep] = deletions
	}

	if ctx.Err() != nil {
		return report, ctx.Err()
	}

	// Step 9: delete, best-effort. A failure logs a warning and continues.
	for _, dep := range d.Depots {
		for _, path := range deletionsByDepot[dep] {
			category := categoryOf(dep, path)
			size := depot.DirSize(path)
			if err := os.RemoveAll(path); err != nil {
				report.Warnings = append(report.Warnings, "delete "+path+": "+err.Error())
				continue
			}
			report.Deleted = append(report.Deleted, path)
			report.FreedBytes[category] += size
		}
	}

	// Step 10: prune empty containers.
	for _, dep := range d.Depots {
		dep.PruneEmptyDirs()
	}

	return report, nil
}

// relSuffix returns path relative to dep's root, or path itself if it
// does not lie under dep (which should not happen for marks produced by
// that same depot's path helpers).
func relSuffix(dep *depot.Depot, path string) string {
	rel, err := filepath.Rel(dep.Root, path)
	if err != nil {
		return path
	}
	return rel
}

func categoryOf(dep *depot.Depot, path string) string {
	rel, err := filepath.Rel(dep.Root, path)
	if err != nil {
		return "unknown"
	}
	switch {
	case hasPrefix(rel, "packages"):
		return "packages"
	case hasPrefix(rel, "artifacts"):
		return "artifacts"
	case hasPrefix(rel, "clones"):
		return "clones"
	case hasPrefix(rel, "scratchspaces"):
		return "scratch"
	default:
		return "unknown"
	}
}

func hasPrefix(rel, prefix string) bool {
	return rel == prefix || len(rel) > len(prefix) && rel[:len(prefix)+1] == prefix+string(filepath.Separator)
}
