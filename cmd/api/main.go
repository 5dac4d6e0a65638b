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

	"github.com/angelmondragon/tillbook-backend/api/controllers"
	"github.com/angelmondragon/tillbook-backend/api/routes"
	"github.com/angelmondragon/tillbook-backend/internal/pricing"
	"github.com/angelmondragon/tillbook-backend/pkg/config"
	"github.com/angelmondragon/tillbook-backend/pkg/db"
	"github.com/angelmondragon/tillbook-backend/pkg/instance"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
	"github.com/angelmondragon/tillbook-backend/pkg/metrics"
	"github.com/angelmondragon/tillbook-backend/pkg/migrate"
	"github.com/angelmondragon/tillbook-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pricingMetrics := metrics.NewPricingMetrics(registry)

	var store pricing.Store = pricing.NewRepository(dbClient.DB())

	// Left as a nil interface when Redis is off so readiness reports it disabled.
	var redisPinger controllers.Pinger
	if cfg.Redis.Enabled() {
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
		redisPinger = redisClient
		if cfg.Pricing.CacheEnabled {
			store = pricing.NewCachedStore(store, redisClient, cfg.Pricing.CacheTTL, logg, pricingMetrics)
		}
	} else if cfg.Pricing.CacheEnabled {
		logg.Warn(context.Background(), "pricing cache enabled without redis; reading through to the database")
	}

	policy, err := cfg.Pricing.ParsedPolicy()
	if err != nil {
		logg.Error(context.Background(), "invalid pricing policy", err)
		os.Exit(1)
	}
	pricingService, err := pricing.NewService(pricing.ServiceParams{
		Store:         store,
		Logger:        logg,
		Metrics:       pricingMetrics,
		Policy:        policy,
		MaxBatchLines: cfg.Pricing.MaxBatchLines,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"policy":   policy.String(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisPinger, registry, pricingService),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
