package precompile

import (
	"context"
	"testing"
)

func TestFileSuspensionStoreSaveThenLoadRoundTrips(t *testing.T) {
	store := FileSuspensionStore{Dir: t.TempDir()}
	key := SuspensionKey{ProjectPath: "/home/dev/Project.toml", RuntimeVersion: "1.21"}

	suspended := map[string]bool{"uuid-1": true, "uuid-2": true}
	if err := store.Save(context.Background(), key, suspended); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || !got["uuid-1"] || !got["uuid-2"] {
		t.Fatalf("unexpected round-trip result: %v", got)
	}
}

func TestFileSuspensionStoreLoadMissingReturnsEmpty(t *testing.T) {
	store := FileSuspensionStore{Dir: t.TempDir()}
	key := SuspensionKey{ProjectPath: "/nowhere/Project.toml", RuntimeVersion: "1.21"}

	got, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("expected missing file to be treated as empty, got: %v", err)
	}
	if len(got) != 0 {
		t.Fatal("expected empty suspension set")
	}
}

func TestFileSuspensionStoreKeysByProjectAndRuntimeVersion(t *testing.T) {
	store := FileSuspensionStore{Dir: t.TempDir()}
	keyA := SuspensionKey{ProjectPath: "/a/Project.toml", RuntimeVersion: "1.21"}
	keyB := SuspensionKey{ProjectPath: "/b/Project.toml", RuntimeVersion: "1.21"}

	if err := store.Save(context.Background(), keyA, map[string]bool{"uuid-1": true}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(context.Background(), keyB)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatal("expected keyB's suspension list to be independent of keyA's")
	}
}

func TestFileSuspensionStoreClearRemovesFile(t *testing.T) {
	store := FileSuspensionStore{Dir: t.TempDir()}
	key := SuspensionKey{ProjectPath: "/a/Project.toml", RuntimeVersion: "1.21"}

	if err := store.Save(context.Background(), key, map[string]bool{"uuid-1": true}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(context.Background(), key); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := store.Load(context.Background(), key)
	if err != nil {
		t.Fatalf("Load after Clear: %v", err)
	}
	if len(got) != 0 {
		t.Fatal("expected cleared suspension list to load empty")
	}
}

func TestFileSuspensionStoreClearMissingIsNotAnError(t *testing.T) {
	store := FileSuspensionStore{Dir: t.TempDir()}
	key := SuspensionKey{ProjectPath: "/never/saved/Project.toml", RuntimeVersion: "1.21"}

	if err := store.Clear(context.Background(), key); err != nil {
		t.Fatalf("expected Clear of a never-saved key to be a no-op, got: %v", err)
	}
}
