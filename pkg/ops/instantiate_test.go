package ops

import (
	"testing"

	"github.com/ravelin-dev/depotctl/pkg/envcache"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

// uuids below are arbitrary but fixed, so failures name a stable id.
const (
	fooUUID   = "00000000-0000-0000-0000-000000000001"
	barUUID   = "00000000-0000-0000-0000-000000000002"
	transUUID = "00000000-0000-0000-0000-000000000003"
)

func TestSynthesizeProjectOnlyTopLevel(t *testing.T) {
	cache := &envcache.Cache{
		Project: &manifest.Project{},
		Manifest: &manifest.Manifest{
			Entries: map[string]manifest.Entry{
				fooUUID: {
					Name: "Foo",
					Deps: map[string]string{"Transitive": transUUID},
				},
				barUUID:   {Name: "Bar"},
				transUUID: {Name: "Transitive"},
			},
		},
	}

	if err := synthesizeProject(cache); err != nil {
		t.Fatalf("synthesizeProject: %v", err)
	}

	if len(cache.Project.Deps) != 2 {
		t.Fatalf("expected 2 top-level deps, got %v", cache.Project.Deps)
	}
	if _, ok := cache.Project.Deps["Foo"]; !ok {
		t.Errorf("expected Foo (top-level) to be synthesized, got %v", cache.Project.Deps)
	}
	if _, ok := cache.Project.Deps["Bar"]; !ok {
		t.Errorf("expected Bar (top-level) to be synthesized, got %v", cache.Project.Deps)
	}
	if _, ok := cache.Project.Deps["Transitive"]; ok {
		t.Errorf("expected Transitive (referenced by Foo) to be excluded, got %v", cache.Project.Deps)
	}
}

func TestSynthesizeProjectExcludesSelf(t *testing.T) {
	cache := &envcache.Cache{
		Project: &manifest.Project{Name: "MyPkg", UUID: fooUUID},
		Manifest: &manifest.Manifest{
			Entries: map[string]manifest.Entry{
				fooUUID: {Name: "MyPkg"},
				barUUID: {Name: "Bar"},
			},
		},
	}

	if err := synthesizeProject(cache); err != nil {
		t.Fatalf("synthesizeProject: %v", err)
	}

	if _, ok := cache.Project.Deps["MyPkg"]; ok {
		t.Errorf("expected the project's own entry to be excluded from its own deps, got %v", cache.Project.Deps)
	}
	if _, ok := cache.Project.Deps["Bar"]; !ok {
		t.Errorf("expected Bar to be synthesized, got %v", cache.Project.Deps)
	}
}

func TestSynthesizeProjectDuplicateNameFails(t *testing.T) {
	cache := &envcache.Cache{
		Project: &manifest.Project{},
		Manifest: &manifest.Manifest{
			Entries: map[string]manifest.Entry{
				fooUUID: {Name: "Dup"},
				barUUID: {Name: "Dup"},
			},
		},
	}

	if err := synthesizeProject(cache); err == nil {
		t.Fatal("expected duplicate top-level name to fail")
	}
}
