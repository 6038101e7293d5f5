// Package reachability implements the Reachability Marker: given a set
// of index files and a process function, it returns the union of
// content paths those index files reference, plus which index files
// were "active" (successfully read).
//
// Four process_fn variants sit on top of the single Mark primitive:
// PackageMark, RepoMark, ArtifactMark, and ScratchMark. Calling order is
// load-bearing. Package marking must run first and its Marked set
// (turned into a packagesToDelete set by the GC driver) is what
// ArtifactMark and ScratchMark consult to skip index files that live
// entirely under a package already scheduled for deletion — an artifact
// or scratchspace orphaned only by a package deletion should not be
// kept alive on the strength of that soon-to-be-deleted package's
// index file. Running artifact or scratch marking before package
// marking would mark content reachable that the package pass is about
// to orphan.
package reachability
