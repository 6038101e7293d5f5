// Package pkg holds the core libraries of depotctl, a package, artifact and
// precompilation manager for a source-distributed module ecosystem.
//
// # Packages
//
// Environment model and mutation:
//
//   - pkgid: the package identifier (name, uuid)
//   - specvalidate: the Spec Validator for operation arguments
//   - manifest: the Project/Manifest data model, its TOML codec, and the
//     per-package artifact index
//   - envcache: the Environment Cache (load/write of a project and its
//     manifest, name/uuid resolution)
//   - undo: the Undo Log, an in-memory history with a pluggable Store
//   - ops: the Operation Dispatcher and the per-invocation Runtime
//
// Depot storage and garbage collection:
//
//   - depot: the depot filesystem layout and content-addressed paths
//   - usageledger: the per-depot last-use logs
//   - reachability: the Reachability Marker and its package, repo,
//     artifact and scratch variants
//   - orphanage: grace-period tracking of unreachable entries
//   - gc: the GC Driver and its lock-holding Runner
//   - lock: a Redis-backed distributed lock
//
// Precompilation and graphs:
//
//   - precompile: the Precompile Scheduler and the suspended-package store
//   - dag, dag/transform: the dependency graph structure and cycle handling
//   - visualize: DOT/SVG/PNG rendering of a manifest's dependency graph
//
// Support:
//
//   - errors: error codes and input validation helpers
//   - httputil: a file-based JSON cache and a retry helper
//   - observability: swappable hook interfaces for GC, precompile and
//     dispatcher events
//   - admin: the optional HTTP admin surface served by `depotctl serve`
//   - buildinfo: ldflags-injected version information
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...        # All tests
//	go test ./pkg/dag/...    # Specific package
//	go test -run Example     # Examples only
package pkg
