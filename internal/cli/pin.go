package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newPinCmd builds `depotctl pin NAME[@VERSION]...`.
func newPinCmd(d *ops.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin NAME[@VERSION]...",
		Short: "Fix one or more dependencies to their current (or given) version",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.Pin(cmd.Context(), parseSpecArgs(args), ops.Options{})
		},
	}
	return cmd
}
