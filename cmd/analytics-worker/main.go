package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/hirekitlabs/hirekit-backend/internal/analytics/router"
	"github.com/hirekitlabs/hirekit-backend/internal/analytics/worker"
	"github.com/hirekitlabs/hirekit-backend/internal/analytics/writer"
	"github.com/hirekitlabs/hirekit-backend/pkg/bigquery"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/instance"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox/idempotency"
	"github.com/hirekitlabs/hirekit-backend/pkg/pubsub"
	"github.com/hirekitlabs/hirekit-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "analytics-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "analytics-worker"

	logg = logger.New(logger.Options{
		ServiceName: "analytics-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery client", err)
		}
	}()

	service, err := buildWorker(cfg, logg, redisClient, pubsubClient, bqClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build analytics worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(ctx, "starting analytics worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "analytics worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "analytics worker shutting down gracefully")
}

func buildWorker(cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, pubsubClient *pubsub.Client, bqClient *bigquery.Client) (*worker.Service, error) {
	subscription := pubsubClient.AnalyticsSubscription()
	if subscription == nil {
		return nil, errors.New("analytics subscription not configured")
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	if err != nil {
		return nil, err
	}

	analyticsWriter, err := writer.New(bqClient, writer.Config{
		OrderEventsTable: cfg.BigQuery.OrderEventsTable,
	})
	if err != nil {
		return nil, err
	}

	routingHandler, err := router.NewRouter(analyticsWriter, logg, nil)
	if err != nil {
		return nil, err
	}

	return worker.NewService(subscription, routingHandler, manager, logg)
}
