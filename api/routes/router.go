package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hirekitlabs/hirekit-backend/api/controllers"
	webhookcontrollers "github.com/hirekitlabs/hirekit-backend/api/controllers/webhooks"
	"github.com/hirekitlabs/hirekit-backend/api/middleware"
	checkoutsvc "github.com/hirekitlabs/hirekit-backend/internal/checkout"
	"github.com/hirekitlabs/hirekit-backend/internal/exports"
	"github.com/hirekitlabs/hirekit-backend/internal/kits"
	"github.com/hirekitlabs/hirekit-backend/internal/orders"
	stripewebhook "github.com/hirekitlabs/hirekit-backend/internal/webhooks/stripe"
	"github.com/hirekitlabs/hirekit-backend/pkg/config"
	"github.com/hirekitlabs/hirekit-backend/pkg/db"
	"github.com/hirekitlabs/hirekit-backend/pkg/logger"
	"github.com/hirekitlabs/hirekit-backend/pkg/redis"
	"github.com/hirekitlabs/hirekit-backend/pkg/storage/gcs"
	"github.com/hirekitlabs/hirekit-backend/pkg/stripe"
)

// NewRouter assembles the HTTP surface: health probes, the signed Stripe
// webhook, the authenticated client API, and the admin review API. Mutating
// client and admin routes sit behind the Idempotency-Key middleware.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	kitsService kits.Service,
	checkoutService checkoutsvc.Service,
	exportsService exports.Service,
	ordersService orders.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Convert only a live client so a nil *redis.Client disables replay
	// protection instead of becoming a typed-nil interface.
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Stripe authenticates with its signature header, not a JWT.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/plans", controllers.CheckoutPlans(checkoutService, logg))

		r.Route("/kits", func(r chi.Router) {
			r.Post("/", controllers.KitCreate(kitsService, logg))
			r.Get("/{kitId}", controllers.KitDetail(kitsService, logg))
			r.Post("/{kitId}/sections/{section}/regenerate", controllers.KitRegenerateSection(kitsService, logg))
			r.Post("/{kitId}/exports", controllers.ExportRequest(exportsService, logg))
		})
		r.Get("/exports/jobs/{jobId}", controllers.ExportJobStatus(exportsService, logg))
		r.Post("/checkout", controllers.CheckoutCreate(checkoutService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/kits", func(r chi.Router) {
			r.Get("/", controllers.AdminKitList(kitsService, logg))
			r.Get("/{kitId}", controllers.AdminKitDetail(kitsService, logg))
			r.Put("/{kitId}/sections/{section}", controllers.AdminKitEditSection(kitsService, logg))
			r.Post("/{kitId}/approve", controllers.AdminKitApprove(ordersService, kitsService, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(ordersService, logg))
			r.Post("/{orderId}/mark-paid", controllers.AdminMarkPaid(ordersService, logg))
			r.Post("/{orderId}/notes", controllers.AdminOrderNote(ordersService, logg))
			r.Post("/{orderId}/resend-email", controllers.AdminResendEmail(ordersService, logg))
		})
	})

	return r
}
