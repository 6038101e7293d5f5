package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newGCCmd builds `depotctl gc`.
func newGCCmd(d *ops.Dispatcher) *cobra.Command {
	var collectDelay time.Duration

	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Reclaim depot content unreachable from every tracked environment past its grace period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			report, err := d.GC(cmd.Context(), ops.Options{CollectDelay: collectDelay})
			if err != nil {
				return err
			}
			var freed int64
			for _, n := range report.FreedBytes {
				freed += n
			}
			for _, w := range report.Warnings {
				printWarning("%s", w)
			}
			prog.done(newSizeSummary(len(report.Deleted), freed))
			return nil
		},
	}

	cmd.Flags().DurationVar(&collectDelay, "collect-delay", ops.DefaultCollectDelay, "grace period before orphaned content is deleted")
	return cmd
}

func newSizeSummary(deleted int, freedBytes int64) string {
	return prettyCount(deleted, "entries") + " deleted, " + prettyBytes(freedBytes) + " freed"
}
