package cli

import (
	"github.com/spf13/cobra"

	"github.com/crn-tools/crnident/internal/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		maxBudget int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve runs the crnident HTTP API. Networks travel inline in JSON request
bodies; see the api package documentation for the endpoint list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store := c.newCache(ctx, noCache)
			defer store.Close()

			srv := api.NewServer(c.Logger, store)
			srv.MaxBudget = maxBudget
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Serve.Addr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the result cache")
	cmd.Flags().Int64Var(&maxBudget, "max-budget", 10_000_000, "server-side cap on per-request search budgets (0 = none)")

	return cmd
}
