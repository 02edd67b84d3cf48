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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/smartkisan/kisan-backend/api/middleware"
	"github.com/smartkisan/kisan-backend/api/responses"
	"github.com/smartkisan/kisan-backend/api/routes"
	"github.com/smartkisan/kisan-backend/internal/auth"
	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/internal/crops"
	"github.com/smartkisan/kisan-backend/internal/orders"
	"github.com/smartkisan/kisan-backend/internal/users"
	"github.com/smartkisan/kisan-backend/internal/weather"
	"github.com/smartkisan/kisan-backend/pkg/auth/session"
	"github.com/smartkisan/kisan-backend/pkg/config"
	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/logger"
	"github.com/smartkisan/kisan-backend/pkg/metrics"
	"github.com/smartkisan/kisan-backend/pkg/migrate"
	"github.com/smartkisan/kisan-backend/pkg/openweather"
	"github.com/smartkisan/kisan-backend/pkg/redis"
	"github.com/smartkisan/kisan-backend/pkg/security"
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
		Format:      cfg.App.LogFormat,
	})
	responses.ExposeStacks(cfg.App.IsDev())

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	usersRepo := users.NewRepository(dbClient.DB())
	cropsRepo := crops.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Hasher:         security.NewHasher(cfg.Password),
		JWTConfig:      cfg.JWT,
	})
	mustService(logg, "auth", err)

	cropService, err := crops.NewService(crops.ServiceParams{
		Repo:  cropsRepo,
		Users: usersRepo,
	})
	mustService(logg, "crops", err)

	cartService, err := cart.NewService(cartRepo, cropsRepo)
	mustService(logg, "cart", err)

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:  orders.NewRepository(dbClient.DB()),
		Tx:    dbClient,
		Carts: cartRepo,
		Catalog: func(tx *gorm.DB) orders.CropCatalog {
			return cropsRepo.WithTx(tx)
		},
	})
	mustService(logg, "orders", err)

	weatherService, err := weather.NewService(weather.ServiceParams{
		Upstream: weatherUpstream(cfg.Weather, logg),
		Cache:    redisClient,
		CacheTTL: cfg.Weather.CacheTTL,
		Metrics:  metrics.NewWeatherMetrics(registry),
		Logger:   logg,
	})
	mustService(logg, "weather", err)

	authParams := middleware.AuthParams{
		JWT:      cfg.JWT,
		Sessions: sessionManager,
		Users:    usersRepo,
		Logger:   logg,
	}
	if cfg.DemoAuthAllowed() {
		authParams.DemoToken = cfg.DemoAuth.Token
	}
	authenticator, err := middleware.NewAuthenticator(authParams)
	mustService(logg, "authenticator", err)

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Authenticator:  authenticator,
			AuthService:    authService,
			CartService:    cartService,
			OrderService:   orderService,
			CropService:    cropService,
			WeatherService: weatherService,
			HTTPMetrics:    metrics.NewHTTPMetrics(registry),
			MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	err = multierr.Append(err, dbClient.Close())
	err = multierr.Append(err, redisClient.Close())
	if err != nil {
		logg.Error(ctx, "error during shutdown", err)
		exitCode = 1
	}
	logg.Info(ctx, "api server stopped")
	os.Exit(exitCode)
}

// weatherUpstream returns nil in mock mode.
func weatherUpstream(cfg config.WeatherConfig, logg *logger.Logger) weather.Upstream {
	if cfg.UseMock() {
		logg.Warn(context.Background(), "openweather api key not configured, serving mock weather")
		return nil
	}
	client, err := openweather.NewClient(cfg.APIKey,
		openweather.WithBaseURL(cfg.BaseURL),
		openweather.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		openweather.WithRateLimit(cfg.RatePerSecond, cfg.Burst),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create openweather client, serving mock weather", err)
		return nil
	}
	return client
}

func mustService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
