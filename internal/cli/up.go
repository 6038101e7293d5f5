package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newUpCmd builds `depotctl up [NAME...]`.
func newUpCmd(d *ops.Dispatcher) *cobra.Command {
	var mode, level string
	var updateRegistry bool

	cmd := &cobra.Command{
		Use:   "up [NAME...]",
		Short: "Upgrade dependencies within the allowed bump level, or all of them if none are named",
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.Up(cmd.Context(), parseSpecArgs(args), ops.Options{
				Mode:           mode,
				Level:          ops.Level(level),
				UpdateRegistry: updateRegistry,
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "manifest", "scope to upgrade within: project or manifest")
	cmd.Flags().StringVar(&level, "level", string(ops.LevelMajor), "maximum version bump: fixed, patch, minor, major")
	cmd.Flags().BoolVar(&updateRegistry, "update-registry", true, "refresh the registry before resolving")

	return cmd
}

// newResolveCmd builds `depotctl resolve`: up with level=fixed and no
// registry refresh, per spec.md §4.9.
func newResolveCmd(d *ops.Dispatcher) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Re-resolve the manifest against the project without bumping any version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return d.Resolve(cmd.Context())
		},
	}
}
