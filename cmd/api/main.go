package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/hirekitlabs/hirekit-backend/api/routes"
	"github.com/hirekitlabs/hirekit-backend/internal/audit"
	"github.com/hirekitlabs/hirekit-backend/internal/checkout"
	"github.com/hirekitlabs/hirekit-backend/internal/exports"
	"github.com/hirekitlabs/hirekit-backend/internal/generation"
	"github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/internal/orders"
	"github.com/hirekitlabs/hirekit-backend/internal/users"
	stripewebhook "github.com/hirekitlabs/hirekit-backend/internal/webhooks/stripe"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/migrate"
	"github.com/hirekitlabs/hirekit-backend/pkg/outbox"
	"github.com/hirekitlabs/hirekit-backend/pkg/pubsub"
	"github.com/hirekitlabs/hirekit-backend/pkg/redis"
	"github.com/hirekitlabs/hirekit-backend/pkg/storage/gcs"
	"github.com/hirekitlabs/hirekit-backend/pkg/stripe"
)

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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	kitRepo := kits.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	exportRepo := exports.NewRepository(dbClient.DB())
	auditRecorder := audit.NewRecorder(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	generator, err := generation.NewOpenAIGenerator(cfg.OpenAI)
	if err != nil {
		logg.Error(context.Background(), "failed to create content generator", err)
		os.Exit(1)
	}

	kitsService, err := kits.NewService(kitRepo, orderRepo, generator, dbClient, outboxService, auditRecorder, cfg.Plans.FreeRegenLimit)
	if err != nil {
		logg.Error(context.Background(), "failed to create kits service", err)
		os.Exit(1)
	}

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

	checkoutService, err := checkout.NewService(
		kitRepo,
		orderRepo,
		checkout.NewStripeClient(stripeClient),
		checkout.NewCatalog(cfg.Plans),
		dbClient,
		outboxService,
		auditRecorder,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookGate, err := stripewebhook.NewGate(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook gate", err)
		os.Exit(1)
	}

	stripeWebhookService, err := stripewebhook.NewService(webhookGate, ordersService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	if err := users.EnsureAdmin(context.Background(), users.BootstrapParams{
		DB:       dbClient,
		Logger:   logg,
		Password: cfg.Password,
		Admin:    cfg.Bootstrap,
	}); err != nil {
		logg.Error(context.Background(), "failed to seed bootstrap admin", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  id,
		"stripeEnv": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gcsClient,
			kitsService,
			checkoutService,
			exportsService,
			ordersService,
			stripeClient,
			stripeWebhookService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
