package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rosamendez/emberglow-backend/api/routes"
	"github.com/rosamendez/emberglow-backend/internal/admin"
	"github.com/rosamendez/emberglow-backend/internal/cart"
	"github.com/rosamendez/emberglow-backend/internal/catalog"
	checkoutsvc "github.com/rosamendez/emberglow-backend/internal/checkout"
	"github.com/rosamendez/emberglow-backend/internal/content"
	syncpkg "github.com/rosamendez/emberglow-backend/internal/sync"
	"github.com/rosamendez/emberglow-backend/pkg/config"
	"github.com/rosamendez/emberglow-backend/pkg/db"
	"github.com/rosamendez/emberglow-backend/pkg/localstore"
	"github.com/rosamendez/emberglow-backend/pkg/logger"
	"github.com/rosamendez/emberglow-backend/pkg/migrate"
	"github.com/rosamendez/emberglow-backend/pkg/redis"
	"github.com/rosamendez/emberglow-backend/pkg/square"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

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

	cartService, err := cart.NewService(entries, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(entries, remoteClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	renderer, err := catalog.NewRenderer(catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog renderer", err)
		os.Exit(1)
	}

	contentService, err := content.NewService(entries, remoteClient, logg, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create content service", err)
		os.Exit(1)
	}

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, squareClient, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	adminSessions, err := admin.NewService(cfg.Admin, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin sessions", err)
		os.Exit(1)
	}

	poller, err := syncpkg.NewPoller(remoteClient, catalogService, contentService, nil, logg, syncpkg.Options{
		BaseInterval: cfg.Catalog.PollInterval,
		MaxBackoff:   cfg.Catalog.PollMaxBackoff,
		Debounce:     cfg.Catalog.Debounce,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync poller", err)
		os.Exit(1)
	}
	if err := poller.Start(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to start sync poller", err)
		os.Exit(1)
	}
	defer poller.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			CartService:     cartService,
			CatalogService:  catalogService,
			Renderer:        renderer,
			ContentService:  contentService,
			CheckoutService: checkoutService,
			AdminSessions:   adminSessions,
			Poller:          poller,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
