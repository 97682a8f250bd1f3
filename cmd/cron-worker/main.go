package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/stockroom-backend/internal/cron"
	"github.com/angelmondragon/stockroom-backend/internal/inventorylog"
	"github.com/angelmondragon/stockroom-backend/internal/stock"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/db"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
	"github.com/angelmondragon/stockroom-backend/pkg/migrate"
	"github.com/angelmondragon/stockroom-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	exitCode := run(cfg, logg, dbClient, redisClient, *once)

	if err := multierr.Append(dbClient.Close(), redisClient.Close()); err != nil {
		logg.Error(context.Background(), "error closing resources", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func run(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, once bool) int {
	conn := dbClient.DB()
	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	inventoryMetrics := metrics.NewInventoryMetrics(prometheus.DefaultRegisterer)

	// A crashed holder frees the lock after two intervals.
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron:"+lockScope(cfg.App.Env)), 2*cfg.Cron.Interval)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		return 1
	}

	driftJob, err := cron.NewStockDriftJob(cron.StockDriftJobParams{
		Logger:  logg,
		Ledger:  inventorylog.NewRepository(conn),
		Stock:   stock.NewRepository(conn),
		Metrics: inventoryMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stock drift job", err)
		return 1
	}

	registry := cron.NewRegistry()
	if err := registry.Register(driftJob); err != nil {
		logg.Error(context.Background(), "failed to register cron job", err)
		return 1
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
		"once":     once,
	})
	logg.Info(ctx, "starting cron worker")

	if once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			return 1
		}
		return 0
	}

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		return 1
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
	return 0
}

func lockScope(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
