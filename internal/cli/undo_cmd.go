package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newUndoCmd builds `depotctl undo`.
func newUndoCmd(d *ops.Dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Revert the active project and manifest to their state before the last mutation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.Undo(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Undone")
			return nil
		},
	}
}

// newRedoCmd builds `depotctl redo`.
func newRedoCmd(d *ops.Dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the mutation most recently undone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.Redo(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Redone")
			return nil
		},
	}
}
