// Package visualize renders a manifest's dependency graph as a Graphviz
// DOT/SVG/PNG diagram, in the same DOT-emission style as the teacher's
// node-link renderer, applied to the manifest's own package/deps
// adjacency instead of a parsed third-party package graph.
package visualize

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ravelin-dev/depotctl/pkg/dag"
	"github.com/ravelin-dev/depotctl/pkg/dag/transform"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
)

// BuildGraph turns a manifest into a flat DAG: one node per entry, one
// edge per dependency. Every node is placed on row 0 — the manifest's
// dependency graph has no meaningful layered layout of its own, unlike
// the teacher's tower diagrams, so rows are unused here and Validate is
// never called on the result.
func BuildGraph(m *manifest.Manifest) *dag.DAG {
	g := dag.New(nil)
	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		e := m.Entries[k]
		meta := dag.Metadata{"version": e.Version}
		if e.Pinned {
			meta["pinned"] = true
		}
		_ = g.AddNode(dag.Node{ID: k, Meta: meta})
	}
	for _, k := range keys {
		e := m.Entries[k]
		depKeys := make([]string, 0, len(e.Deps))
		for _, depUUID := range e.Deps {
			depKeys = append(depKeys, depUUID)
		}
		sort.Strings(depKeys)
		for _, dst := range depKeys {
			if _, ok := m.Entries[dst]; !ok {
				continue
			}
			_ = g.AddEdge(dag.Edge{From: k, To: dst})
		}
	}
	return g
}

// ToDOT renders g as Graphviz DOT, labeling nodes with their package name
// (falling back to the raw key) and version, and marking any node that
// participates in a cycle — surfaced rather than silently dropped, unlike
// the teacher's BreakCycles, since a cyclic manifest is exactly what
// spec.md §4.9's `circular` reporting needs to describe.
func ToDOT(g *dag.DAG, names map[string]string) string {
	cyclic := transform.DetectCycles(g)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, names)
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if cyclic[n.ID] {
			attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#c0392b\"")
		}
		if pinned, _ := n.Meta["pinned"].(bool); pinned {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}
	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *dag.Node, names map[string]string) string {
	name := names[n.ID]
	if name == "" {
		name = n.ID
	}
	if v, ok := n.Meta["version"].(string); ok && v != "" {
		return name + "\n" + v
	}
	return name
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// Names extracts a key→display-name map from a manifest, for ToDOT's
// label lookup.
func Names(m *manifest.Manifest) map[string]string {
	names := make(map[string]string, len(m.Entries))
	for k, e := range m.Entries {
		names[k] = e.Name
	}
	return names
}
