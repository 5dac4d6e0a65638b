package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/tillbook-backend/internal/cron"
	"github.com/angelmondragon/tillbook-backend/internal/pricing"
	"github.com/angelmondragon/tillbook-backend/pkg/config"
	"github.com/angelmondragon/tillbook-backend/pkg/db"
	"github.com/angelmondragon/tillbook-backend/pkg/instance"
	"github.com/angelmondragon/tillbook-backend/pkg/logger"
	"github.com/angelmondragon/tillbook-backend/pkg/metrics"
	"github.com/angelmondragon/tillbook-backend/pkg/migrate"
	"github.com/angelmondragon/tillbook-backend/pkg/redis"
)

const lockName = "cron-worker:%s"

func main() {
	once := flag.Bool("once", false, "run every audit a single time and exit non-zero on failures or findings")
	jobs := flag.String("jobs", "", "comma separated job names to run; empty runs all")
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

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	var lock cron.Lock = cron.NewLocalLock()
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
		lock, err = cron.NewRedisLock(redisClient, redisClient.LockKey(lockKey(cfg.App.Env)), cfg.Cron.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured; cron lock is process-local, run a single replica")
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	repo := pricing.NewRepository(dbClient.DB())

	contractJob, err := cron.NewContractIntegrityJob(cron.ContractIntegrityJobParams{Logger: logg, Repository: repo})
	if err != nil {
		logg.Error(context.Background(), "failed to create contract integrity job", err)
		os.Exit(1)
	}
	recordJob, err := cron.NewPricingRecordIntegrityJob(cron.PricingRecordIntegrityJobParams{Logger: logg, Repository: repo})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing record integrity job", err)
		os.Exit(1)
	}

	registry, err := cron.NewRegistry(contractJob, recordJob).Select(splitJobs(*jobs)...)
	if err != nil {
		logg.Error(context.Background(), "invalid -jobs", err)
		os.Exit(1)
	}
	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metricsCollector,
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
		"interval":    cfg.Cron.Interval.String(),
	})
	if *once {
		// The audit lock is released inside RunOnce, so exiting here is safe.
		if code := runOnce(ctx, logg, service); code != 0 {
			os.Exit(code)
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

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockName, env)
}

// runOnce is for operators and CI: exit 1 on any failed audit, 2 when the
// audits found bad pricing data.
func runOnce(ctx context.Context, logg *logger.Logger, service *cron.Service) int {
	report, err := service.RunOnce(ctx)
	switch {
	case err != nil:
		logg.Error(ctx, "audit cycle aborted", err)
		return 1
	case report.Skipped:
		logg.Warn(ctx, "audit lock held by another worker")
		return 1
	case report.Err != nil:
		logg.Error(ctx, "audit jobs failed", report.Err)
		return 1
	case report.TotalFindings() > 0:
		logg.Warn(logg.WithField(ctx, "findings", report.Findings), "pricing data needs attention")
		return 2
	}
	return 0
}

func splitJobs(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, ",")
}
