package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/syntrixbase/wordlog/internal/services"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and the realtime feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	mgr := services.NewManager(a.cfg, services.Options{RunAPI: true})
	if err := mgr.Init(ctx); err != nil {
		shutdown(mgr, a)
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	slog.Info("Starting wordlog", "pid", os.Getpid(),
		"storage", a.cfg.Storage.Type, "pubsub", a.cfg.PubSub.Type)
	mgr.Start(ctx)

	var err error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down services...")
	case err = <-mgr.Errors():
	}

	shutdown(mgr, a)
	slog.Info("All services stopped")
	return err
}

func shutdown(mgr *services.Manager, a *app) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	mgr.Shutdown(ctx)
}
