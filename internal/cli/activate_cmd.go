package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newActivateCmd builds `depotctl activate PATH`: it takes exactly one
// argument and sets PATH's Project.toml (PATH itself if it already names
// Project.toml) as the process's active project. It runs no trailing
// command.
func newActivateCmd(d *ops.Dispatcher) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activate PATH",
		Short: "Activate the project at PATH for the duration of this command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if filepath.Base(path) != "Project.toml" {
				path = filepath.Join(path, "Project.toml")
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			d.Runtime.SetActiveProject(abs)
			printSuccess("Activated %s", abs)
			return nil
		},
	}
	return cmd
}
