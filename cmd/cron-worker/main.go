package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/cron"
	"github.com/hirekitlabs/hirekit-backend/internal/exports"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db"
	"github.com/hirekitlabs/hirekit-backend/pkg/instance"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/metrics"
	"github.com/hirekitlabs/hirekit-backend/pkg/migrate"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/redis"
	"github.com/hirekitlabs/hirekit-backend/pkg/storage/gcs"
)

func main() {
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage client", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing storage client", err)
		}
	}()

	exportsRepo := exports.NewRepository(dbClient.DB())
	auditRecorder := audit.NewRecorder(dbClient.DB())
	outboxRepo := outbox.NewRepository(dbClient.DB())

	timeoutJob, err := cron.NewExportJobTimeoutJob(cron.ExportJobTimeoutJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    exportsRepo,
		Audit:         auditRecorder,
		ProcessingTTL: cfg.Exports.JobProcessingTTL,
		QueuedTTL:     cfg.Exports.JobQueuedTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create export timeout job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewExportRetentionJob(cron.ExportRetentionJobParams{
		Logger:     logg,
		Repository: exportsRepo,
		Storage:    gcsClient,
		Bucket:     cfg.GCS.BucketName,
		MaxAge:     cfg.Exports.CacheTTL + cfg.Exports.RetentionGrace,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create export retention job", err)
		os.Exit(1)
	}

	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		MaxAge:     cfg.Cron.OutboxRetentionAge,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	registry.Register(timeoutJob, cfg.Cron.ExportTimeoutEvery)
	registry.Register(retentionJob, cfg.Cron.ExportRetentionEvery)
	registry.Register(outboxJob, cfg.Cron.OutboxRetentionEvery)

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.Cron.LockKey, cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.TickInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	metricsServer := metrics.NewServer(":" + cfg.App.MetricsPort)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "metrics server stopped unexpectedly", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error closing metrics server", err)
		}
	}()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(base, env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("%s:%s", base, env)
}
