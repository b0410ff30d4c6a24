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
	"go.uber.org/multierr"

	"github.com/angelmondragon/laundry-backend/api/routes"
	"github.com/angelmondragon/laundry-backend/internal/catalog"
	"github.com/angelmondragon/laundry-backend/internal/discounts"
	"github.com/angelmondragon/laundry-backend/internal/ledger"
	"github.com/angelmondragon/laundry-backend/internal/orders"
	"github.com/angelmondragon/laundry-backend/internal/payments"
	"github.com/angelmondragon/laundry-backend/internal/pricing"
	"github.com/angelmondragon/laundry-backend/internal/reports"
	"github.com/angelmondragon/laundry-backend/pkg/config"
	"github.com/angelmondragon/laundry-backend/pkg/db"
	"github.com/angelmondragon/laundry-backend/pkg/logger"
	"github.com/angelmondragon/laundry-backend/pkg/metrics"
	"github.com/angelmondragon/laundry-backend/pkg/migrate"
	"github.com/angelmondragon/laundry-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return 1
	}

	logg = logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		WarnStack:   cfg.Log.WarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if failed(ctx, logg, "database", err) {
		return 1
	}

	var redisClient *redis.Client
	defer func() {
		errs := dbClient.Close()
		if redisClient != nil {
			errs = multierr.Append(errs, redisClient.Close())
		}
		if errs != nil {
			logg.Error(ctx, "closing connections", errs)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		return 1
	}

	if cfg.Redis.Enabled {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if failed(ctx, logg, "redis", err) {
			return 1
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewLaundryMetrics(reg)

	conn := dbClient.DB()
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	if failed(ctx, logg, "catalog service", err) {
		return 1
	}

	discountSvc, err := discounts.NewService(discounts.NewRepository(conn), time.Now)
	if failed(ctx, logg, "discount service", err) {
		return 1
	}

	engine, err := pricing.NewEngine(catalogSvc, discountSvc, pricing.WithMinimumWeight(cfg.Pricing.MinimumCourierWeight()))
	if failed(ctx, logg, "pricing engine", err) {
		return 1
	}

	ordersRepo := orders.NewRepository(conn)
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, engine, catalogSvc, logg, orders.WithMetrics(m))
	if failed(ctx, logg, "order service", err) {
		return 1
	}

	events, err := ledger.NewService(ledger.NewRepository(conn))
	if failed(ctx, logg, "payment ledger", err) {
		return 1
	}

	paymentsSvc, err := payments.NewService(ordersRepo, events, catalogSvc, dbClient, logg, m)
	if failed(ctx, logg, "payment service", err) {
		return 1
	}

	reportsSvc, err := reports.NewService(reports.NewRepository(conn), logg)
	if failed(ctx, logg, "report service", err) {
		return 1
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:        dbClient,
			Redis:     redisClient,
			Gatherer:  reg,
			Metrics:   m,
			Catalog:   catalogSvc,
			Discounts: discountSvc,
			Pricer:    engine,
			Orders:    ordersSvc,
			Payments:  paymentsSvc,
			Reports:   reportsSvc,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"redis": redisClient != nil,
	})
	logg.Info(serverCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutting down api server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(serverCtx, "api server shutdown", err)
		exitCode = 1
	}
	return exitCode
}

func failed(ctx context.Context, logg *logger.Logger, resource string, err error) bool {
	if err == nil {
		return false
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	return true
}
