package cli

import (
	"context"

	"github.com/ravelin-dev/depotctl/pkg/envcache"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// afterMutate is wired as the Dispatcher's AfterMutate hook: it renders a
// one-line summary of the mutation the way the teacher's parse/render
// commands report a completed stage, once the environment has already
// been written and snapshotted.
func afterMutate(_ context.Context, op specvalidate.Op, cache *envcache.Cache) {
	printSuccess("%s (%d direct deps, %d manifest entries)", op, len(cache.Project.Deps), len(cache.Manifest.Entries))
	printFile(cache.ProjectPath)
}
