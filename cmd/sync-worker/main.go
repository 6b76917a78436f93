package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rosamendez/emberglow-backend/internal/catalog"
	"github.com/rosamendez/emberglow-backend/internal/content"
	syncpkg "github.com/rosamendez/emberglow-backend/internal/sync"
	"github.com/rosamendez/emberglow-backend/pkg/config"
	"github.com/rosamendez/emberglow-backend/pkg/db"
	"github.com/rosamendez/emberglow-backend/pkg/instance"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
	"github.com/rosamendez/emberglow-backend/pkg/metrics"
	"github.com/rosamendez/emberglow-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	entries, err := localstore.New(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create entry store", err)
		os.Exit(1)
	}

	remoteClient, err := catalog.NewRemoteClient(cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create remote catalog client", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(entries, remoteClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	contentService, err := content.NewService(entries, remoteClient, logg, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)

	poller, err := syncpkg.NewPoller(remoteClient, catalogService, contentService, syncMetrics, logg, syncpkg.Options{
		BaseInterval: cfg.Catalog.PollInterval,
		MaxBackoff:   cfg.Catalog.PollMaxBackoff,
		Debounce:     cfg.Catalog.Debounce,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := poller.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start sync poller", err)
		os.Exit(1)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"worker_id": instance.GetID(),
		"interval":  cfg.Catalog.PollInterval.String(),
	}), "sync worker started")

	// Kick an immediate cycle so a fresh deploy converges without waiting a
	// full interval.
	poller.Trigger()

	<-ctx.Done()
	poller.Stop()
	logg.Info(context.Background(), "sync worker stopped")
}
