package reachability

// ProcessFunc inspects one index file and returns the depot paths it
// marks as reachable. ok is false when the file could not be read or
// parsed (per GC's "treat as absent" policy) — in which case paths is
// ignored and the index file does not count as active.
type ProcessFunc func(indexFile string) (paths []string, ok bool)

// Result is the outcome of a Mark pass.
type Result struct {
	// Marked is the union of every path yielded by an active index file.
	Marked map[string]bool
	// Active is the set of index files process_fn successfully read.
	Active map[string]bool
}

// Mark runs process over every index file and unions the results. This is
// the single primitive behind all four process_fn variants (package,
// repo, artifact, scratch); callers differ only in which ProcessFunc they
// supply and in what order they call Mark (package marking must run
// before artifact/scratch marking — see the variants in this package).
func Mark(indexFiles []string, process ProcessFunc) Result {
	res := Result{Marked: make(map[string]bool), Active: make(map[string]bool)}
	for _, idx := range indexFiles {
		paths, ok := process(idx)
		if !ok {
			continue
		}
		res.Active[idx] = true
		for _, p := range paths {
			res.Marked[p] = true
		}
	}
	return res
}
