package visualize

import (
	"strings"
	"testing"

	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

func TestBuildGraphAndToDOT(t *testing.T) {
	m := manifest.NewManifest()
	m.Entries["a"] = manifest.Entry{Name: "Foo", Version: "1.0.0", Deps: map[string]string{"Bar": "b"}}
	m.Entries["b"] = manifest.Entry{Name: "Bar", Version: "2.0.0"}

	g := BuildGraph(m)
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}

	dot := ToDOT(g, Names(m))
	if !strings.Contains(dot, "Foo") || !strings.Contains(dot, "Bar") {
		t.Fatalf("expected DOT output to contain package names, got %s", dot)
	}
}

func TestBuildGraphMarksCycles(t *testing.T) {
	m := manifest.NewManifest()
	m.Entries["a"] = manifest.Entry{Name: "Foo", Deps: map[string]string{"Bar": "b"}}
	m.Entries["b"] = manifest.Entry{Name: "Bar", Deps: map[string]string{"Foo": "a"}}

	g := BuildGraph(m)
	dot := ToDOT(g, Names(m))
	if !strings.Contains(dot, "#c0392b") {
		t.Fatalf("expected cyclic nodes to be highlighted, got %s", dot)
	}
}
