// Package dag provides a directed acyclic graph (DAG) with support for
// row-based layered layouts.
//
// # Overview
//
// The graph organizes nodes into horizontal rows (layers), with edges
// connecting nodes in consecutive rows only. In depotctl it holds a
// manifest's dependency graph for `depotctl graph` (pkg/visualize) and for
// the precompile scheduler's cycle detection (pkg/precompile).
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]. Nodes must have unique IDs, and edges can only connect
// existing nodes in consecutive rows (From.Row+1 == To.Row):
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "app", Row: 0})
//	g.AddNode(dag.Node{ID: "lib", Row: 1})
//	g.AddEdge(dag.Edge{From: "app", To: "lib"})
//
// Query the graph structure with [DAG.Children], [DAG.Parents], [DAG.NodesInRow],
// and related methods. Use [DAG.Validate] to verify structural integrity before
// rendering or transformations.
//
// # Node Types
//
// The package supports three node kinds to handle real-world graph structures:
//
//   - [NodeKindRegular]: Original graph vertices from dependency data
//   - [NodeKindSubdivider]: Synthetic nodes that break long edges into segments
//   - [NodeKindAuxiliary]: Helper nodes for layout (e.g., separator beams)
//
// Subdivider nodes maintain a [Node.MasterID] linking back to their origin,
// allowing them to be visually merged into continuous vertical blocks during
// rendering. Auxiliary nodes act as "separator beams" that resolve impossible
// crossing patterns by grouping edges through a shared intermediate.
//
// # Metadata
//
// Both nodes and the graph itself support arbitrary metadata via [Metadata] maps.
// pkg/visualize stores a package's version and pinned flag there. Metadata maps
// are never nil after creation - empty maps are automatically initialized.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Callers must synchronize access
// if multiple goroutines read or modify the same graph. Read-only queries on a
// graph that no goroutine modifies can safely run in parallel.
//
// # Related Packages
//
// The [transform] subpackage provides cycle handling:
//   - DetectCycles reports the nodes that lie on a cycle, without changing the graph
//   - BreakCycles removes back edges until the graph is acyclic
//
// [transform]: github.com/ravelin-dev/depotctl/pkg/dag/transform
package dag
