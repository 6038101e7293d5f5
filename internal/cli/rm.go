package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newRmCmd builds `depotctl rm NAME...`.
func newRmCmd(d *ops.Dispatcher) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "rm NAME...",
		Short: "Remove one or more dependencies from the active project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.Rm(cmd.Context(), parseSpecArgs(args), ops.Options{Mode: mode})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "project", "scope to remove from: project or manifest")
	return cmd
}

// newFreeCmd builds `depotctl free NAME...`.
func newFreeCmd(d *ops.Dispatcher) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "free NAME...",
		Short: "Revert one or more pinned dependencies back to solver-managed versioning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.Free(cmd.Context(), parseSpecArgs(args), ops.Options{Mode: mode})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "project", "scope to free within: project or manifest")
	return cmd
}
