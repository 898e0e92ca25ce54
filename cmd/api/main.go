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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/uncoverhq/ops-backend/api/routes"
	"github.com/uncoverhq/ops-backend/internal/activity"
	"github.com/uncoverhq/ops-backend/internal/fulfillment"
	"github.com/uncoverhq/ops-backend/internal/inventory"
	"github.com/uncoverhq/ops-backend/internal/mappings"
	"github.com/uncoverhq/ops-backend/internal/orders"
	"github.com/uncoverhq/ops-backend/internal/requests"
	"github.com/uncoverhq/ops-backend/internal/shipments"
	"github.com/uncoverhq/ops-backend/internal/transfers"
	"github.com/uncoverhq/ops-backend/internal/warehouses"
	"github.com/uncoverhq/ops-backend/pkg/config"
	"github.com/uncoverhq/ops-backend/pkg/currency"
	"github.com/uncoverhq/ops-backend/pkg/db"
	"github.com/uncoverhq/ops-backend/pkg/logger"
	"github.com/uncoverhq/ops-backend/pkg/metrics"
	"github.com/uncoverhq/ops-backend/pkg/migrate"
	"github.com/uncoverhq/ops-backend/pkg/redis"
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

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	inventoryMetrics := metrics.NewInventoryMetrics(promRegistry)

	converter, err := currency.NewConverter(cfg.FX)
	if err != nil {
		logg.Error(context.Background(), "failed to build currency converter", err)
		os.Exit(1)
	}

	svcs, err := buildServices(dbClient, inventoryMetrics, converter, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, promRegistry, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func buildServices(dbClient *db.Client, m *metrics.InventoryMetrics, converter *currency.Converter, logg *logger.Logger) (routes.Services, error) {
	gormDB := dbClient.DB()

	activitySvc, err := activity.NewService(activity.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	inventoryRepo := inventory.NewRepository(gormDB)
	inventorySvc, err := inventory.NewService(inventoryRepo, dbClient, activitySvc, m, logg)
	if err != nil {
		return routes.Services{}, err
	}

	warehousesSvc, err := warehouses.NewService(warehouses.NewRepository(gormDB), inventoryRepo, activitySvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	transfersSvc, err := transfers.NewService(inventoryRepo, warehousesSvc, dbClient, activitySvc, m, logg)
	if err != nil {
		return routes.Services{}, err
	}

	debitor, err := fulfillment.NewDebitor(inventoryRepo, m, logg)
	if err != nil {
		return routes.Services{}, err
	}

	ordersSvc, err := orders.NewService(orders.NewRepository(gormDB), inventoryRepo, dbClient, debitor, converter, activitySvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	shipmentsSvc, err := shipments.NewService(shipments.NewRepository(gormDB), inventoryRepo, warehousesSvc, dbClient, debitor, activitySvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	mappingsSvc, err := mappings.NewService(mappings.NewRepository(gormDB), inventoryRepo, dbClient, activitySvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	requestsSvc, err := requests.NewService(requests.NewRepository(gormDB), inventoryRepo, dbClient, activitySvc, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Inventory:  inventorySvc,
		Transfers:  transfersSvc,
		Orders:     ordersSvc,
		Shipments:  shipmentsSvc,
		Warehouses: warehousesSvc,
		Mappings:   mappingsSvc,
		Requests:   requestsSvc,
		Activity:   activitySvc,
	}, nil
}
