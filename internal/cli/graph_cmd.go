package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/envcache"
	"github.com/ravelin-dev/depotctl/pkg/ops"
	"github.com/ravelin-dev/depotctl/pkg/visualize"
)

// newGraphCmd builds `depotctl graph`: renders the active manifest's
// dependency graph as DOT, SVG, or PNG.
func newGraphCmd(d *ops.Dispatcher) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the active manifest's dependency graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectPath := d.Runtime.ActiveProject()
			manifestPath := manifestSiblingPath(projectPath)
			cache, err := envcache.Load(d.Runtime.Codec, projectPath, manifestPath)
			if err != nil {
				return err
			}

			g := visualize.BuildGraph(cache.Manifest)
			dot := visualize.ToDOT(g, visualize.Names(cache.Manifest))

			var data []byte
			switch format {
			case "dot":
				data = []byte(dot)
			case "svg":
				data, err = visualize.RenderSVG(cmd.Context(), dot)
			case "png":
				data, err = visualize.RenderPNG(cmd.Context(), dot)
			default:
				return errUnknownGraphFormat
			}
			if err != nil {
				return err
			}

			if output == "" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "dot", "output format: dot, svg, or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}
