package ops

import (
	"context"
	"time"

	"github.com/ravelin-dev/depotctl/pkg/gc"
)

// DefaultCollectDelay is spec.md §6's documented default grace period.
const DefaultCollectDelay = 7 * 24 * time.Hour

// GC runs the GC Driver's sweep across every configured depot. Its
// ManifestIndexFiles are the accumulated keys of each depot's
// manifest_usage.toml, i.e. every environment that has touched the depot
// chain since content was last swept; opts.CollectDelay overrides the
// default grace period when non-zero.
func (d *Dispatcher) GC(ctx context.Context, opts Options) (gc.Report, error) {
	delay := opts.CollectDelay
	if delay <= 0 {
		delay = DefaultCollectDelay
	}

	driver := &gc.Driver{
		Depots:             d.Runtime.Depots,
		ManifestCodec:      d.Runtime.Codec,
		ManifestIndexFiles: d.manifestIndexFiles(),
		ReadArtifactIndex:  defaultReadArtifactIndex(),
		ParentsOf:          d.defaultParentsOf(),
		CollectDelay:       delay,
	}

	if d.Runtime.Locker == nil {
		return driver.Run(ctx)
	}
	runner := gc.NewRunner(driver, d.Runtime.Locker, d.Runtime.ActiveProject())
	return runner.Run(ctx)
}
