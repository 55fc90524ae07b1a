package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ha1tch/reseau/internal/server"
	"github.com/ha1tch/reseau/internal/ui"
	"github.com/ha1tch/reseau/pkg/medias"
	"github.com/ha1tch/reseau/pkg/metrics"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live layout sessions over HTTP",
		Long: `Host interactive sessions: each client creates a session, sends pointer,
touch and view events and polls the laid out scene as JSON.

  POST   /sessions               create a session
  POST   /sessions/:id/pointer   {"type":"down","x":10,"y":20,"button":"primary"}
  POST   /sessions/:id/touch     {"type":"move","touches":[{"x":10,"y":20}]}
  POST   /sessions/:id/view      {"action":"zoom-in"}
  GET    /sessions/:id/state     current scene
  DELETE /sessions/:id           close a session
  GET    /health, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Serve.Addr
			}

			var reg *metrics.Registry
			if a.cfg.Serve.Metrics {
				reg = a.metrics
			}

			srv := server.New(server.Options{
				Config:  a.cfg,
				Metrics: reg,
				Source: func(ctx context.Context) (medias.Dataset, error) {
					return a.dataset(ctx)
				},
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.ErrOrStderr(), "  %s on %s\n", ui.Brand.Sprint("serving"), addr)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default: serve.addr)")
	return cmd
}
