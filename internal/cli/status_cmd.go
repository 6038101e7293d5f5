package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newStatusCmd builds `depotctl status`.
func newStatusCmd(d *ops.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List every dependency in the active environment's manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := d.Status(cmd.Context(), ops.Options{})
			if err != nil {
				return err
			}
			for _, e := range entries {
				marker := "  "
				if e.Direct {
					marker = "+ "
				}
				if e.Pinned {
					marker += "(pinned) "
				}
				printKeyValue(marker+e.ID.Name, e.Version)
			}
			return nil
		},
	}
	return cmd
}
