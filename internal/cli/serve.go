package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dpshade/contract-desk/internal/api"
	"github.com/dpshade/contract-desk/internal/library"
)

func (c *CLI) serveCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Serve the matter, library and review operations over HTTP.

Docs are served at /api/docs and Prometheus metrics at /metrics. With
--watch and a library directory, library edits are picked up without a
restart.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{modeAnnotation: "serve"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cmd.Flags().Changed("watch") {
				c.cfg.WatchLibrary = watch
			}

			g, ctx := errgroup.WithContext(ctx)
			srv := api.NewAPIServer(c.service, api.Options{
				Port:    c.cfg.Port,
				Metrics: c.metrics,
				Logger:  c.logger,
			})
			g.Go(func() error { return srv.Run(ctx) })

			if dir := c.cfg.ResolvedLibraryDir(); c.cfg.WatchLibrary && dir != "" {
				w, err := library.NewWatcher(dir, 0, c.logger, c.service.ReplaceLibrary)
				if err != nil {
					stop()
					_ = g.Wait()
					return err
				}
				g.Go(func() error { return w.Run(ctx) })
			} else if c.cfg.WatchLibrary {
				c.logger.Warn("library watch requested without a library directory")
			}

			err := g.Wait()
			if err == nil || err == context.Canceled {
				c.logger.Info("server stopped")
				return nil
			}
			c.logger.Error("server failed", zap.Error(err))
			return err
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the library directory when its files change")
	return cmd
}
