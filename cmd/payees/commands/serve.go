package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R3E-Network/payee_manager/internal/app/runtime"
)

// serve: run the HTTP server until SIGINT or SIGTERM.
func serveCmd(opts *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the payee API and manager routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := runtime.NewApplication(ctx, opts.cfg, opts.log)
			if err != nil {
				return err
			}

			runErr := application.Run(ctx)
			opts.log.Info("shutting down")
			if err := application.Shutdown(context.Background()); err != nil {
				opts.log.WithError(err).Warn("shutdown")
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
