package ops

import (
	"path/filepath"
	"testing"

	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

func TestDefaultReadArtifactIndexReadsPerPackageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Artifacts.toml")
	idx := &manifest.ArtifactIndex{Artifacts: []manifest.ArtifactIndexEntry{
		{TreeHash: "artifact1", Platform: "linux-x86_64"},
		{TreeHash: "artifact2", Platform: "macos-aarch64"},
	}}
	if err := manifest.WriteArtifactIndex(path, idx); err != nil {
		t.Fatal(err)
	}

	refs, err := defaultReadArtifactIndex()(path)
	if err != nil {
		t.Fatalf("defaultReadArtifactIndex: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 artifact refs, got %v", refs)
	}
	if refs[0].TreeHash != "artifact1" || refs[1].TreeHash != "artifact2" {
		t.Errorf("unexpected refs: %v", refs)
	}
}
