package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/gambit"
	httpAdapter "github.com/aretw0/gambit/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the Gambit engine as a JSON API over HTTP.
Requests identify the player with the X-User-ID header. Prometheus metrics are
served on /metrics and per-user events on /events (Server-Sent Events).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		streams := httpAdapter.NewStreamManager(nil)
		a, err := bootstrap(cmd, streams.Hooks())
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetString("port")
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(a.logger),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithVersion(gambit.Version),
		}
		if a.metrics != nil {
			opts = append(opts, httpAdapter.WithMetricsHandler(a.metrics.Handler()))
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(a.engine, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			a.logger.Info("starting gambit server", "address", srv.Addr, "catalog", a.cfg.CatalogPath, "store", a.cfg.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			a.logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				a.logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			a.logger.Info("gambit server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (GAMBIT_PORT, default 8080)")
}
