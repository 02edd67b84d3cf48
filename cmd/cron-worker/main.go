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

	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/internal/cron"
	"github.com/smartkisan/kisan-backend/internal/crops"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/metrics"
	"github.com/smartkisan/kisan-backend/pkg/migrate"
	"github.com/smartkisan/kisan-backend/pkg/redis"
)

const guestCartPageSize = 200

func main() {
	once := flag.Bool("once", false, "run every job a single time and exit")
	jobName := flag.String("job", "", "run only the named job once and exit")
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
		Format:      cfg.App.LogFormat,
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

	jobMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker:"+lockEnv(cfg.App.Env)), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	cropExpiry, err := cron.NewCropExpiryJob(cron.CropExpiryJobParams{
		Logger:  logg,
		Crops:   crops.NewRepository(dbClient.DB()),
		Metrics: jobMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create crop expiry job", err)
		os.Exit(1)
	}
	guestCarts, err := cron.NewGuestCartCleanupJob(cron.GuestCartCleanupJobParams{
		Logger:   logg,
		Carts:    cart.NewRepository(dbClient.DB()),
		Metrics:  jobMetrics,
		TTL:      cfg.Cron.GuestCartTTL,
		PageSize: guestCartPageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create guest cart cleanup job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(cropExpiry, guestCarts),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
		"once":     *once,
	})

	if *jobName != "" {
		logg.Info(logg.WithField(ctx, "job", *jobName), "running single cron job")
		if err := service.RunJob(ctx, *jobName); err != nil {
			logg.Error(ctx, "cron job failed", err)
			os.Exit(1)
		}
		return
	}

	if *once {
		logg.Info(ctx, "running cron jobs once")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockEnv(env string) string {
	if env == "" {
		return "local"
	}
	return env
}
