package gc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/reachability"
)

func newTestDriver(t *testing.T, dep *depot.Depot, manifestPath string, collectDelay time.Duration) *Driver {
	t.Helper()
	if err := dep.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return &Driver{
		Depots:             []*depot.Depot{dep},
		ManifestCodec:      manifest.TOMLCodec{},
		ManifestIndexFiles: []string{manifestPath},
		ReadArtifactIndex:  func(string) ([]reachability.ArtifactRef, error) { return nil, nil },
		ParentsOf:          func(string) []string { return nil },
		CollectDelay:       collectDelay,
	}
}

func writeManifestWithEntry(t *testing.T, dir, name, treeHash string) string {
	t.Helper()
	path := filepath.Join(dir, "Manifest.toml")
	m := manifest.NewManifest()
	m.Entries["uuid-1"] = manifest.Entry{Name: name, TreeHash: treeHash}
	if err := (manifest.TOMLCodec{}).WriteManifest(path, m); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunKeepsReachablePackage(t *testing.T) {
	depotRoot := t.TempDir()
	dep := depot.New(depotRoot)
	manifestPath := writeManifestWithEntry(t, t.TempDir(), "Foo", "abc123")

	kept := dep.PackagePath("Foo", "abc123")
	if err := os.MkdirAll(kept, 0o755); err != nil {
		t.Fatal(err)
	}

	d := newTestDriver(t, dep, manifestPath, 24*time.Hour)
	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !depot.Exists(kept) {
		t.Fatal("expected reachable package to survive")
	}
	if len(report.Deleted) != 0 {
		t.Fatalf("expected nothing deleted, got %v", report.Deleted)
	}
}

func TestRunDeletesOrphanAfterCollectDelay(t *testing.T) {
	depotRoot := t.TempDir()
	dep := depot.New(depotRoot)
	manifestPath := writeManifestWithEntry(t, t.TempDir(), "Foo", "abc123")

	orphan := dep.PackagePath("Bar", "def456")
	if err := os.MkdirAll(orphan, 0o755); err != nil {
		t.Fatal(err)
	}

	d := newTestDriver(t, dep, manifestPath, 0)
	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if depot.Exists(orphan) {
		t.Fatal("expected orphaned package to be deleted with zero collect_delay")
	}
	if len(report.Deleted) != 1 || report.Deleted[0] != orphan {
		t.Fatalf("expected %q deleted, got %v", orphan, report.Deleted)
	}
}

func TestRunKeepsOrphanWithinGracePeriod(t *testing.T) {
	depotRoot := t.TempDir()
	dep := depot.New(depotRoot)
	manifestPath := writeManifestWithEntry(t, t.TempDir(), "Foo", "abc123")

	orphan := dep.PackagePath("Bar", "def456")
	if err := os.MkdirAll(orphan, 0o755); err != nil {
		t.Fatal(err)
	}

	d := newTestDriver(t, dep, manifestPath, 24*time.Hour)
	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !depot.Exists(orphan) {
		t.Fatal("expected orphan within grace period to survive this run")
	}
	if len(report.Deleted) != 0 {
		t.Fatalf("expected nothing deleted yet, got %v", report.Deleted)
	}
}

func TestRunKeepsArtifactReferencedByPackageIndex(t *testing.T) {
	depotRoot := t.TempDir()
	dep := depot.New(depotRoot)
	manifestPath := writeManifestWithEntry(t, t.TempDir(), "Foo", "abc123")

	pkgDir := dep.PackagePath("Foo", "abc123")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	idx := &manifest.ArtifactIndex{Artifacts: []manifest.ArtifactIndexEntry{{TreeHash: "artifact789", Platform: "linux-x86_64"}}}
	if err := manifest.WriteArtifactIndex(dep.ArtifactIndexPath("Foo", "abc123"), idx); err != nil {
		t.Fatal(err)
	}

	kept := dep.ArtifactPath("artifact789")
	if err := os.MkdirAll(kept, 0o755); err != nil {
		t.Fatal(err)
	}
	orphaned := dep.ArtifactPath("stale000")
	if err := os.MkdirAll(orphaned, 0o755); err != nil {
		t.Fatal(err)
	}

	d := &Driver{
		Depots:             []*depot.Depot{dep},
		ManifestCodec:      manifest.TOMLCodec{},
		ManifestIndexFiles: []string{manifestPath},
		ReadArtifactIndex: func(indexFile string) ([]reachability.ArtifactRef, error) {
			idx, err := manifest.ReadArtifactIndex(indexFile)
			if err != nil {
				return nil, err
			}
			var refs []reachability.ArtifactRef
			for _, a := range idx.Artifacts {
				refs = append(refs, reachability.ArtifactRef{TreeHash: a.TreeHash, Platform: a.Platform})
			}
			return refs, nil
		},
		ParentsOf:    func(string) []string { return nil },
		CollectDelay: 0,
	}

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !depot.Exists(kept) {
		t.Fatal("expected artifact referenced by the package's Artifacts.toml to survive")
	}
	if depot.Exists(orphaned) {
		t.Fatal("expected artifact absent from any package's Artifacts.toml to be collected")
	}
}

func TestRunDeletesOrphanOnSecondRunPastGracePeriod(t *testing.T) {
	depotRoot := t.TempDir()
	dep := depot.New(depotRoot)
	manifestPath := writeManifestWithEntry(t, t.TempDir(), "Foo", "abc123")

	orphan := dep.PackagePath("Bar", "def456")
	if err := os.MkdirAll(orphan, 0o755); err != nil {
		t.Fatal(err)
	}

	firstRun := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	secondRun := firstRun.Add(48 * time.Hour)

	d := newTestDriver(t, dep, manifestPath, 24*time.Hour)
	d.Now = func() time.Time { return firstRun }
	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if !depot.Exists(orphan) {
		t.Fatal("expected orphan to survive the first run")
	}

	d.Now = func() time.Time { return secondRun }
	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if depot.Exists(orphan) {
		t.Fatal("expected orphan to be deleted on the second run")
	}
	if len(report.Deleted) != 1 {
		t.Fatalf("expected 1 deletion, got %v", report.Deleted)
	}
}
