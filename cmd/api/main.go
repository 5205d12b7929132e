package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fulfilment-application/monolith/api/routes"
	"github.com/fulfilment-application/monolith/internal/fulfillment"
	"github.com/fulfilment-application/monolith/internal/locations"
	"github.com/fulfilment-application/monolith/internal/products"
	"github.com/fulfilment-application/monolith/internal/stores"
	"github.com/fulfilment-application/monolith/internal/warehouses"
	"github.com/fulfilment-application/monolith/pkg/config"
	"github.com/fulfilment-application/monolith/pkg/db"
	"github.com/fulfilment-application/monolith/pkg/logger"
	"github.com/fulfilment-application/monolith/pkg/metrics"
	"github.com/fulfilment-application/monolith/pkg/migrate"
	"github.com/fulfilment-application/monolith/pkg/outbox"
	"github.com/fulfilment-application/monolith/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	locks, err := redis.NewMutationLocks(redisClient, cfg.Locks)
	if err != nil {
		logg.Error(context.Background(), "failed to create mutation locks", err)
		os.Exit(1)
	}

	warehouseRepo := warehouses.NewRepository(dbClient.DB())
	warehouseValidator, err := warehouses.NewValidator(warehouseRepo, locations.NewGateway())
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse validator", err)
		os.Exit(1)
	}
	warehouseService, err := warehouses.NewService(warehouses.ServiceParams{
		Repository: warehouseRepo,
		Validator:  warehouseValidator,
		DB:         dbClient,
		Locks:      locks,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create warehouse service", err)
		os.Exit(1)
	}

	fulfillmentService, err := fulfillment.NewService(fulfillment.ServiceParams{
		Repository: fulfillment.NewRepository(dbClient.DB()),
		Warehouses: warehouseRepo,
		Locks:      locks,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	storeService, err := stores.NewService(stores.ServiceParams{
		Repository: stores.NewRepository(dbClient.DB()),
		DB:         dbClient,
		Outbox:     outboxService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			httpMetrics,
			warehouseService,
			fulfillmentService,
			storeService,
			productService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}
}
