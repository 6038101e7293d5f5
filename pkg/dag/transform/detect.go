package transform

import "github.com/ravelin-dev/depotctl/pkg/dag"

// DetectCycles reports the set of node IDs that participate in at least one
// cycle, without modifying g. Nodes are visited in the same order as
// BreakCycles (sources first, then any remaining unvisited node) so the two
// functions agree on which back-edges close a cycle.
func DetectCycles(g *dag.DAG) map[string]bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	cyclic := make(map[string]bool)
	var stack []string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		stack = append(stack, node)
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				// The back-edge node -> child closes a cycle running from
				// child to node along the current DFS stack; mark every
				// node on that segment, not just the two endpoints.
				for i := len(stack) - 1; i >= 0; i-- {
					cyclic[stack[i]] = true
					if stack[i] == child {
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return cyclic
}
