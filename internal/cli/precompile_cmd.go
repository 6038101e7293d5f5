package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
	"github.com/ravelin-dev/depotctl/pkg/precompile"
)

// newPrecompileCmd builds `depotctl precompile`. A manual invocation
// clears any persisted suspension list before running, per spec.md §4.8.
func newPrecompileCmd(d *ops.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precompile",
		Short: "Precompile every stale package in the active environment's dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			result, err := d.ManualPrecompile(cmd.Context(), ops.Options{})
			if result != nil {
				printPrecompileResult(result)
			}
			if err != nil {
				return err
			}
			prog.done("Precompile finished")
			return nil
		},
	}
	return cmd
}

// printPrecompileResult reports a precompile run's headline counts.
func printPrecompileResult(r *precompile.Result) {
	printInfo("compiled %d, skipped %d, circular %d, suspended %d", len(r.Compiled), len(r.Skipped), len(r.Circular), len(r.Suspended))
	for id, reason := range r.Failed {
		printError("%s: %s", id.Name, reason)
	}
}
