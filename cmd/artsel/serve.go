package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/artwork-select/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the artworks table as a JSON HTTP API",
		Example: `  # Serve on the configured address
  artsel serve

  # Serve on a different port
  artsel serve --addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// First page is loaded up front; a failure shows up in GET /api/page
			if err := a.session.GoToPage(ctx, 0); err != nil {
				a.logger.Warn().Err(err).Msg("Initial page load failed")
			}

			return server.New(a.session).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}
