package transform

import (
	"testing"

	"github.com/ravelin-dev/depotctl/pkg/dag"
)

func mustAddNode(t *testing.T, g *dag.DAG, id string, row int) {
	t.Helper()
	if err := g.AddNode(dag.Node{ID: id, Row: row}); err != nil {
		t.Fatalf("AddNode(%q): %v", id, err)
	}
}

func mustAddEdge(t *testing.T, g *dag.DAG, from, to string) {
	t.Helper()
	if err := g.AddEdge(dag.Edge{From: from, To: to}); err != nil {
		t.Fatalf("AddEdge(%q, %q): %v", from, to, err)
	}
}

func TestDetectCycles_NoCycles(t *testing.T) {
	g := dag.New(nil)
	mustAddNode(t, g, "a", 0)
	mustAddNode(t, g, "b", 1)
	mustAddEdge(t, g, "a", "b")

	cyclic := DetectCycles(g)
	if len(cyclic) != 0 {
		t.Fatalf("expected no cyclic nodes, got %v", cyclic)
	}
}

func TestDetectCycles_SimpleCycle(t *testing.T) {
	g := dag.New(nil)
	mustAddNode(t, g, "a", 0)
	mustAddNode(t, g, "b", 1)
	mustAddEdge(t, g, "a", "b")
	mustAddEdge(t, g, "b", "a")

	cyclic := DetectCycles(g)
	if !cyclic["a"] || !cyclic["b"] {
		t.Fatalf("expected a and b to be cyclic, got %v", cyclic)
	}
}

func TestDetectCycles_DoesNotMutate(t *testing.T) {
	g := dag.New(nil)
	mustAddNode(t, g, "a", 0)
	mustAddNode(t, g, "b", 1)
	mustAddEdge(t, g, "a", "b")
	mustAddEdge(t, g, "b", "a")

	DetectCycles(g)

	if g.EdgeCount() != 2 {
		t.Fatalf("DetectCycles must not remove edges, got %d edges", g.EdgeCount())
	}
}

func TestDetectCycles_TriangleCycle(t *testing.T) {
	g := dag.New(nil)
	mustAddNode(t, g, "a", 0)
	mustAddNode(t, g, "b", 1)
	mustAddNode(t, g, "c", 2)
	mustAddEdge(t, g, "a", "b")
	mustAddEdge(t, g, "b", "c")
	mustAddEdge(t, g, "c", "a")

	cyclic := DetectCycles(g)
	for _, id := range []string{"a", "b", "c"} {
		if !cyclic[id] {
			t.Fatalf("expected %s to be cyclic, got %v", id, cyclic)
		}
	}
}

func TestDetectCycles_EmptyGraph(t *testing.T) {
	g := dag.New(nil)
	cyclic := DetectCycles(g)
	if len(cyclic) != 0 {
		t.Fatalf("expected no cyclic nodes for empty graph, got %v", cyclic)
	}
}
