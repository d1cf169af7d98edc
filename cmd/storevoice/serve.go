package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nadzzz/storevoice/internal/health"
	"github.com/nadzzz/storevoice/internal/transport"
	grpctransport "github.com/nadzzz/storevoice/internal/transport/grpc"
	httptransport "github.com/nadzzz/storevoice/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storevoice daemon",
	Long: `Starts the enabled transports (HTTP, gRPC) and the health server.
The HTTP transport serves POST /classify and POST /speech for storefront
clients alongside the session endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		slog.Info("storevoice starting", "version", version)

		// Create root context with signal handling for graceful shutdown.
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		svc, archive, err := newService(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				slog.Error("service close error", "error", err)
			}
			if archive != nil {
				_ = archive.Close()
			}
		}()

		var transports []transport.Transport
		if cfg.Transports.GRPC.Enabled {
			transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
		}
		if cfg.Transports.HTTP.Enabled {
			transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
		}
		if len(transports) == 0 {
			return errors.New("no transports enabled, enable at least one in config")
		}

		healthServer := health.New(cfg.Server.HealthPort)
		if archive != nil {
			healthServer.AddCheck("redis", archive.Ping)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return healthServer.ListenAndServe(gctx) })
		g.Go(func() error {
			svc.Sweep(gctx, time.Minute)
			return nil
		})
		for _, t := range transports {
			g.Go(func() error {
				slog.Info("starting transport", "name", t.Name())
				return t.Listen(gctx, svc)
			})
		}

		healthServer.SetReady(true)
		slog.Info("storevoice ready",
			"transports", len(transports),
			"classifier", cfg.Classifier.Backend,
			"health_port", cfg.Server.HealthPort)

		<-gctx.Done()
		slog.Info("shutdown signal received, draining...")
		healthServer.SetReady(false)

		for _, t := range transports {
			if err := t.Close(); err != nil {
				slog.Error("transport close error", "name", t.Name(), "error", err)
			}
		}

		err = g.Wait()
		slog.Info("storevoice stopped")
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
