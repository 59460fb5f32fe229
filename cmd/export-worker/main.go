package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/exports"
	"github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/internal/orders"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db"
	"github.com/hirekitlabs/hirekit-backend/pkg/instance"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/metrics"
	"github.com/hirekitlabs/hirekit-backend/pkg/migrate"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/pubsub"
	"github.com/hirekitlabs/hirekit-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "export-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "export-worker"

	logg = logger.New(logger.Options{
		ServiceName: "export-worker",
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub client", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	kitRepo := kits.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	exportRepo := exports.NewRepository(dbClient.DB())
	auditRecorder := audit.NewRecorder(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersService, err := orders.NewService(orderRepo, kitRepo, dbClient, outboxService, auditRecorder, cfg.Plans.ReviewThresholdCents)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	renderer, err := exports.NewHTTPRenderer(cfg.Exports)
	if err != nil {
		logg.Error(context.Background(), "failed to create export renderer", err)
		os.Exit(1)
	}

	exportQueue, err := exports.NewPubSubQueue(pubsubClient.ExportsPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create export job queue", err)
		os.Exit(1)
	}

	exportsService, err := exports.NewService(
		exportRepo,
		kitRepo,
		orderRepo,
		ordersService,
		renderer,
		gcsClient,
		cfg.GCS.BucketName,
		exportQueue,
		dbClient,
		outboxService,
		auditRecorder,
		logg,
		cfg.Exports,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create exports service", err)
		os.Exit(1)
	}

	jobMetrics := metrics.NewExportJobMetrics(prometheus.DefaultRegisterer)
	worker, err := exports.NewWorker(pubsubClient.ExportsSubscription(), exportsService, logg, jobMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create export worker", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config: cfg,
		Logger: logg,
		DB:     dbClient,
		PubSub: pubsubClient,
		GCS:    gcsClient,
		Worker: worker,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create export worker service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting export worker")

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
		logg.Error(ctx, "export worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "export worker shutting down gracefully")
}
