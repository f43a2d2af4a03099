package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		lf      layoutFlags
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

The API lives under /api/v1 (validate, graph, layout, analyze, snap, routes
and history). Layout flags set the defaults that query parameters override
per request. The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if addr != "" {
				cfg.Addr = addr
			}

			runner, err := c.newRunner(ctx, noCache || !cfg.CacheLayouts)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			store, err := c.openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Options{
				Runner:  runner,
				History: store,
				Logger:  c.Logger,
				Layout:  c.layoutOptions(cmd, &lf),
				Align:   c.Config.Align,
				HTTP:    cfg,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	lf.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, then :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}
