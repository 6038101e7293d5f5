package cli

import (
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/ops"
	"github.com/ravelin-dev/depotctl/pkg/specvalidate"
)

// newAddCmd builds `depotctl add NAME[@VERSION]...`.
func newAddCmd(d *ops.Dispatcher) *cobra.Command {
	var repo, rev, subdir string
	var preserve string
	var updateRegistry bool

	cmd := &cobra.Command{
		Use:   "add NAME[@VERSION]...",
		Short: "Add one or more dependencies to the active project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := parseSpecArgs(args)
			if repo != "" {
				if len(specs) != 1 {
					return errMultipleReposNotSupported
				}
				specs[0].Tracking = specvalidate.RepoTracking{Repo: specvalidate.Repo{Source: repo, Rev: rev, Subdir: subdir}}
			}
			return d.Add(cmd.Context(), specs, ops.Options{
				Preserve:       ops.Preserve(preserve),
				UpdateRegistry: updateRegistry,
			})
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "git repository URL (single package only)")
	cmd.Flags().StringVar(&rev, "rev", "", "git revision (branch, tag, or commit) for --repo")
	cmd.Flags().StringVar(&subdir, "subdir", "", "subdirectory within --repo containing the package")
	cmd.Flags().StringVar(&preserve, "preserve", string(ops.PreserveTiered), "dependency preservation strategy: tiered, all, direct, semver, none")
	cmd.Flags().BoolVar(&updateRegistry, "update-registry", true, "refresh the registry before resolving")

	return cmd
}

// newDevelopCmd builds `depotctl develop NAME --path PATH`.
func newDevelopCmd(d *ops.Dispatcher) *cobra.Command {
	var path string
	var updateRegistry bool

	cmd := &cobra.Command{
		Use:   "develop NAME",
		Short: "Track a dependency at a local filesystem path instead of a fixed version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errDevelopRequiresPath
			}
			spec := parseSpecArg(args[0])
			spec.Tracking = specvalidate.PathTracking{Path: path}
			return d.Develop(cmd.Context(), []specvalidate.Spec{spec}, ops.Options{UpdateRegistry: updateRegistry})
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "local filesystem path to develop against")
	cmd.Flags().BoolVar(&updateRegistry, "update-registry", true, "refresh the registry before resolving")

	return cmd
}
