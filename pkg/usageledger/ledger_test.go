package usageledger

import (
	"path/filepath"
	"testing"
	"time"
)

func TestTouchTakesMaxTimestamp(t *testing.T) {
	l := New()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	l.Touch("Foo/abc", early, "")
	l.Touch("Foo/abc", late, "")
	l.Touch("Foo/abc", early, "")

	if !l["Foo/abc"].Time.Equal(late) {
		t.Fatalf("Touch did not keep the max timestamp: got %v", l["Foo/abc"].Time)
	}
}

func TestTouchUnionsParentProjects(t *testing.T) {
	l := New()
	now := time.Now()
	l.Touch("scratch/x", now, "/proj/a")
	l.Touch("scratch/x", now, "/proj/b")

	u := l["scratch/x"]
	if len(u.ParentProjects) != 2 {
		t.Fatalf("expected 2 parent projects, got %d", len(u.ParentProjects))
	}
}

func TestMergeUnionsAndTakesMax(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	a := New()
	a.Touch("Foo/abc", early, "")
	b := New()
	b.Touch("Foo/abc", late, "")
	b.Touch("Bar/def", early, "")

	merged := Merge(a, b)
	if len(merged) != 2 {
		t.Fatalf("expected 2 filenames, got %d", len(merged))
	}
	if !merged["Foo/abc"].Time.Equal(late) {
		t.Fatal("Merge did not take the max timestamp")
	}
}

func TestFilterExistingDropsMissingFiles(t *testing.T) {
	l := New()
	l.Touch("Foo/abc", time.Now(), "")
	l.Touch("Bar/def", time.Now(), "")

	exists := func(filename string) bool { return filename == "Foo/abc" }
	filtered := l.FilterExisting(exists, false, nil)

	if _, ok := filtered["Foo/abc"]; !ok {
		t.Fatal("expected Foo/abc to survive")
	}
	if _, ok := filtered["Bar/def"]; ok {
		t.Fatal("expected Bar/def to be dropped")
	}
}

func TestFilterExistingDropsScratchWithNoSurvivingParent(t *testing.T) {
	l := New()
	l.Touch("scratch/x", time.Now(), "/proj/gone")

	exists := func(string) bool { return true }
	parentExists := func(string) bool { return false }
	filtered := l.FilterExisting(exists, true, parentExists)

	if _, ok := filtered["scratch/x"]; ok {
		t.Fatal("expected scratch entry with no surviving parent to be dropped")
	}
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest_usage.toml")

	l := New()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	l.Touch("Foo/abc", now, "")
	l.Touch("Bar/def", now, "")

	if err := Write(path, l); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries after round-trip, got %d", len(got))
	}
	if !got["Foo/abc"].Time.Equal(now) {
		t.Fatalf("round-trip timestamp mismatch: got %v want %v", got["Foo/abc"].Time, now)
	}
}

func TestWriteThenReadRoundTripsParentProjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scratch_usage.toml")

	l := New()
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	l.Touch("uuid/Foo", now, "/proj/a")
	l.Touch("uuid/Foo", now, "/proj/b")

	if err := Write(path, l); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got["uuid/Foo"].ParentProjects) != 2 {
		t.Fatalf("expected 2 parent projects after round-trip, got %d", len(got["uuid/Foo"].ParentProjects))
	}
}

func TestReadMissingFileReturnsEmptyLedger(t *testing.T) {
	l, err := Read(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be treated as empty, got error: %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("expected empty ledger, got %d entries", len(l))
	}
}
