// Package transform provides cycle analysis for dependency graphs rendered
// by depotctl graph.
//
// Real manifests are meant to be acyclic, but the on-disk data a depot
// accumulates over time can still contain cycles (hand-edited manifests,
// bugs in an external resolver). This package offers two ways to deal with
// that:
//
//   - [DetectCycles] reports the set of nodes participating in a cycle
//     without mutating the graph, mirroring the precompile scheduler's
//     own circular-package detection (see pkg/precompile).
//   - [BreakCycles] removes back-edges so the graph can still be rendered
//     as a DAG.
package transform
