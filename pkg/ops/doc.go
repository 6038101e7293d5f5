// Package ops implements the Operation Dispatcher: the top-level entry
// points (add, develop, rm, up, pin, free, instantiate, resolve,
// precompile, gc, status, activate, undo, redo, test, build) that every
// caller — the CLI, the admin HTTP surface, or a future REPL — drives the
// core through.
//
// Each mutating operation follows the same skeleton: validate the caller's
// specs (pkg/specvalidate), resolve them against the loaded environment
// (pkg/envcache), delegate the actual dependency-graph resolution to the
// external VersionResolver collaborator, apply the result to the project
// and manifest in memory, write the environment atomically, snapshot it
// into the undo log (pkg/undo), and optionally kick off an auto-precompile
// run (pkg/precompile). The version-range solver, the registry client, git
// plumbing, and the artifact downloader are external collaborators
// consumed only through the interfaces in interfaces.go; this package
// never implements version constraint solving itself.
package ops
