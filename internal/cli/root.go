// Package cli implements the depotctl command-line interface: a thin
// cobra shell around pkg/ops.Dispatcher, following the layout of the
// teacher's own internal/cli package (root command construction, a
// shared logger threaded through context.Context, styled status output).
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/depot"
	"github.com/ravelin-dev/depotctl/pkg/manifest"
	"github.com/ravelin-dev/depotctl/pkg/ops"
	"github.com/ravelin-dev/depotctl/pkg/precompile"
	"github.com/ravelin-dev/depotctl/pkg/undo"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. Called
// by main during initialization with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the depotctl CLI and returns an error if any command
// fails. It builds a Dispatcher rooted at the depot the --depot flag (or
// DEPOTCTL_DEPOT) names, and registers the dispatcher's operations as
// subcommands; test and build have no subcommand.
func Execute(ctx context.Context) error {
	var verbose bool
	var depotRoot string
	var projectFlag string

	dispatcher := &ops.Dispatcher{AfterMutate: afterMutate}

	root := &cobra.Command{
		Use:          "depotctl",
		Short:        "depotctl manages packages, artifacts and precompilation for a source-distributed module ecosystem",
		Long:         `depotctl mutates package environments (add/rm/up/pin/free), materializes them onto disk (instantiate), schedules parallel precompilation, and reclaims unreachable content in the shared depot (gc).`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmdCtx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(cmdCtx)

			root, err := resolveDepotRoot(depotRoot)
			if err != nil {
				return err
			}
			dep := depot.New(root)
			if err := dep.EnsureDirs(); err != nil {
				return fmt.Errorf("prepare depot at %s: %w", root, err)
			}

			rt := ops.NewRuntime(
				manifest.TOMLCodec{},
				[]*depot.Depot{dep},
				precompile.FileSuspensionStore{Dir: dep.LogsDir()},
				undo.NewLog(nil),
			)
			if redisAddr := os.Getenv("DEPOTCTL_REDIS_ADDR"); redisAddr != "" {
				rt.Locker = redis.NewClient(&redis.Options{Addr: redisAddr})
			}

			projectPath, err := resolveProjectPath(projectFlag)
			if err != nil {
				return err
			}
			rt.SetActiveProject(projectPath)
			dispatcher.Runtime = rt
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("depotctl %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&depotRoot, "depot", "", "depot root directory (default $DEPOTCTL_DEPOT or ~/.depotctl/depot)")
	root.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "path to Project.toml (default ./Project.toml)")

	root.AddCommand(newAddCmd(dispatcher))
	root.AddCommand(newDevelopCmd(dispatcher))
	root.AddCommand(newRmCmd(dispatcher))
	root.AddCommand(newFreeCmd(dispatcher))
	root.AddCommand(newUpCmd(dispatcher))
	root.AddCommand(newResolveCmd(dispatcher))
	root.AddCommand(newPinCmd(dispatcher))
	root.AddCommand(newInstantiateCmd(dispatcher))
	root.AddCommand(newPrecompileCmd(dispatcher))
	root.AddCommand(newGCCmd(dispatcher))
	root.AddCommand(newStatusCmd(dispatcher))
	root.AddCommand(newActivateCmd(dispatcher))
	root.AddCommand(newUndoCmd(dispatcher))
	root.AddCommand(newRedoCmd(dispatcher))
	root.AddCommand(newGraphCmd(dispatcher))
	root.AddCommand(newServeCmd(dispatcher))

	return root.ExecuteContext(ctx)
}

// resolveDepotRoot picks the depot root in order: --depot flag,
// DEPOTCTL_DEPOT env var, ~/.depotctl/depot.
func resolveDepotRoot(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("DEPOTCTL_DEPOT"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve default depot root: %w", err)
	}
	return filepath.Join(home, ".depotctl", "depot"), nil
}

// resolveProjectPath picks the active Project.toml in order: --project
// flag, ./Project.toml relative to the working directory.
func resolveProjectPath(flag string) (string, error) {
	if flag != "" {
		abs, err := filepath.Abs(flag)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, "Project.toml"), nil
}
