package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/deploygraph/internal/server"
	"github.com/matzehuels/deploygraph/pkg/workspace"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve deployment graphs over HTTP",
		Long: `Serve deployment graphs of open documents over HTTP.

Clients open a document, then request its graph. With --watch, open
documents are recompiled when their files change, so the next request
sees the edit.`,
		Example: `  deploygraph serve
  deploygraph serve --addr :8080 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := c.config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				cfg.Watch = watch
			}
			return c.runServe(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:7340)")
	cmd.Flags().BoolVar(&watch, "watch", false, "recompile open documents when their files change")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, cfg ServerConfig) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	reg := prometheus.NewRegistry()
	server.NewMetrics(reg).Install()

	ws := workspace.New(workspace.Options{Build: c.buildOptions(), Logger: logger})
	srv := server.New(ws, server.Options{Logger: logger, Gatherer: reg})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(ctx, cfg.Addr) })
	if cfg.Watch {
		g.Go(func() error { return ws.Watch(ctx, cfg.Debounce) })
		logger.Info("watching open documents", "debounce", cfg.Debounce)
	}
	return g.Wait()
}
