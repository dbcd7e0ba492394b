package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/componentscope/pkg/observability"
	"github.com/matzehuels/componentscope/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noStore bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve the analysis pipeline and the run store over HTTP.

POST a design file to /v1/analyze, or pass ?file_key= to fetch one with the
configured token. Prometheus metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("open result cache: %w", err)
			}
			defer runner.Close()

			if client, err := c.newFigmaClient(ctx, false); err == nil {
				runner.Fetcher = client
			} else {
				c.Logger.Warn("file keys disabled, only uploaded documents can be analyzed", "reason", err)
			}

			cfg := server.Config{
				Runner:        runner,
				KeepArtifacts: c.Config.Analysis.KeepArtifacts,
				Logger:        c.Logger,
			}
			if !noStore {
				store, err := c.newStore(ctx)
				if err != nil {
					return fmt.Errorf("open run store: %w", err)
				}
				defer store.Close()
				cfg.Store = store
			}

			observability.NewPrometheusHooks().Install()
			defer observability.Reset()

			return server.New(cfg).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr from config)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record runs")
	return cmd
}
