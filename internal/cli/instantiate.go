package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newInstantiateCmd builds `depotctl instantiate`.
func newInstantiateCmd(d *ops.Dispatcher) *cobra.Command {
	var updateRegistry bool
	var platform string

	cmd := &cobra.Command{
		Use:   "instantiate",
		Short: "Materialize the active environment's manifest onto disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			prog := newProgress(logger)
			if err := d.Instantiate(cmd.Context(), ops.Options{UpdateRegistry: updateRegistry, Platform: platform}); err != nil {
				return err
			}
			prog.done("Instantiated environment")
			return nil
		},
	}

	cmd.Flags().BoolVar(&updateRegistry, "update-registry", false, "force a registry refresh before instantiating")
	cmd.Flags().StringVar(&platform, "platform", "", "target platform for artifact selection")

	return cmd
}
