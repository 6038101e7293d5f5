package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ravelin-dev/depotctl/pkg/admin"
	"github.com/ravelin-dev/depotctl/pkg/ops"
)

// newServeCmd builds `depotctl serve`: runs the admin HTTP surface over
// the active environment until the context is cancelled.
func newServeCmd(d *ops.Dispatcher) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin HTTP surface (GET /status, POST /gc, POST /precompile) over the active environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			server := admin.New(d, logger)
			httpServer := &http.Server{Addr: addr, Handler: server}

			errCh := make(chan error, 1)
			go func() { errCh <- httpServer.ListenAndServe() }()

			printInfo("Listening on %s", addr)
			select {
			case <-cmd.Context().Done():
				return httpServer.Close()
			case err := <-errCh:
				if err == http.ErrServerClosed {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8787", "address to listen on")
	return cmd
}
