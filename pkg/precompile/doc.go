// Package precompile schedules parallel compilation over a dependency
// graph: cycle detection up front, then one task per package that waits
// on every dependency's one-shot processed latch before running its own
// staleness check and, if needed, an external compile call.
//
// Open question: what happens to a package whose dependency ended in
// Failed, PrecompErr, or Skipped rather than Compiled? The scheduler
// design only guarantees a package starts after its dependencies reach
// any terminal state, not specifically Compiled. This package resolves
// that ambiguity by letting the dependent proceed to its own staleness
// check unconditionally: if the failed dependency means the dependent's
// own compile is bound to fail too, that failure surfaces from the
// dependent's own compile call (the build system reports its own
// missing/stale input), rather than the scheduler pre-emptively marking
// every downstream package Skipped. This keeps the scheduler's only
// cross-package signal to "dependency reached processed" and pushes the
// domain knowledge of what a missing dependency means to the compile
// routine, which already owns that knowledge.
package precompile
