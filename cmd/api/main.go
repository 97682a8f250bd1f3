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

	"github.com/angelmondragon/stockroom-backend/api/controllers"
	"github.com/angelmondragon/stockroom-backend/api/routes"
	"github.com/angelmondragon/stockroom-backend/internal/inventorylog"
	"github.com/angelmondragon/stockroom-backend/internal/products"
	"github.com/angelmondragon/stockroom-backend/internal/reports"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/internal/summary"
	"github.com/angelmondragon/stockroom-backend/internal/transactions"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/migrate"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	loc, err := cfg.App.Location()
	if err != nil {
		logg.Error(context.Background(), "invalid report timezone", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	// Redis is optional for the API; without it the summary is rebuilt on
	// every request and Idempotency-Key headers are ignored.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			_ = dbClient.Close()
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; summary cache and idempotency disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	inventoryMetrics := metrics.NewInventoryMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	conn := dbClient.DB()
	stockRepo := stock.NewRepository(conn)
	logRepo := inventorylog.NewRepository(conn)

	stockService, err := stock.NewService(stock.ServiceParams{
		StockRepo: stockRepo,
		LogRepo:   logRepo,
		Metrics:   inventoryMetrics,
	})
	mustService(logg, "stock", err)

	summaryParams := summary.ServiceParams{
		Logs:     logRepo,
		Stock:    stockRepo,
		CacheTTL: cfg.Summary.CacheTTL,
		Metrics:  inventoryMetrics,
		Logger:   logg,
		Location: loc,
	}
	if redisClient != nil {
		summaryParams.Cache = redisClient
	}
	summaryService, err := summary.NewService(summaryParams)
	mustService(logg, "summary", err)

	productService, err := products.NewService(products.ServiceParams{
		DB:          dbClient,
		Repo:        products.NewRepository(conn),
		StockRepo:   stockRepo,
		Stock:       stockService,
		Invalidator: summaryService,
		Logger:      logg,
	})
	mustService(logg, "product", err)

	transactionService, err := transactions.NewService(transactions.ServiceParams{
		DB:          dbClient,
		Repo:        transactions.NewRepository(conn),
		Stock:       stockService,
		Invalidator: summaryService,
		Logger:      logg,
		Location:    loc,
	})
	mustService(logg, "transaction", err)

	reportService, err := reports.NewService(logRepo, loc)
	mustService(logg, "report", err)

	var (
		cachePinger controllers.Pinger
		idemStore   redis.IdempotencyStore
	)
	if redisClient != nil {
		cachePinger = redisClient
		idemStore = redisClient
	}

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			cachePinger,
			idemStore,
			registry,
			httpMetrics,
			productService,
			transactionService,
			summaryService,
			reportService,
		),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			exitCode = 1
		}
		cancel()
	}

	closeErr := multierr.Append(dbClient.Close(), redisClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		exitCode = 1
	}
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}

func mustService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
