package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Watson-W722/cat-feeding-app/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host      string
		port      int
		publicURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve feeding-log tools over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			if cmd.Flags().Changed("public-url") {
				a.cfg.PublicURL = publicURL
			}

			store, engine, err := a.openEngine()
			if err != nil {
				return err
			}
			defer store.Close()

			srv, err := server.NewFeedingLogServer(&server.Config{
				Host:      a.cfg.Host,
				Port:      a.cfg.Port,
				PublicURL: a.cfg.PublicURL,
				Logger:    a.logger,
			}, engine)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case <-sigCh:
				a.logger.Info("received shutdown signal")
			case err := <-errCh:
				if err != nil {
					a.logger.Error("server error", "error", err)
				}
				return err
			}

			a.logger.Info("shutting down")
			cancel()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			return srv.Stop(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Host address (FEEDING_HOST)")
	cmd.Flags().IntVar(&port, "port", 8011, "Port for HTTP transport (FEEDING_PORT)")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "Base URL announced to MCP clients (FEEDING_PUBLIC_URL)")
	return cmd
}
