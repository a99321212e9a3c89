// Package routes wires the repositories, services and handlers together
// and registers every route the API serves.
package routes

import (
	"time"

	"velvet/internal/config"
	"velvet/internal/handlers"
	"velvet/internal/middleware"
	"velvet/internal/relay"
	"velvet/internal/repositories"
	"velvet/internal/repositories/cache"
	"velvet/internal/services/billing"
	"velvet/internal/services/catalog"
	"velvet/internal/services/checkout"
	"velvet/internal/services/crm"
	"velvet/internal/services/notifier"
	"velvet/internal/services/reconcile"
	"velvet/internal/services/wallet"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services bundles the shared service instances so cmd/server can reuse
// them (the catalog sync ticker runs outside the request path).
type Services struct {
	Catalog catalog.Service
}

// SetupRoutes builds the dependency graph on top of the initialized
// global database and cache, and registers all routes.
func SetupRoutes(app *fiber.App, log zerolog.Logger) *Services {
	// Repositories
	userRepo := repositories.NewUserRepository(repositories.DB)
	walletRepo := repositories.NewWalletRepository(repositories.DB)
	ledgerRepo := repositories.NewLedgerRepository(repositories.DB)
	purchaseRepo := repositories.NewPurchaseRepository(repositories.DB)
	productRepo := repositories.NewProductRepository(repositories.DB)
	agentRepo := repositories.NewAgentRepository(repositories.DB)
	callRepo := repositories.NewCallRepository(repositories.DB)

	walletCache := cache.NewRedisCache(
		repositories.CacheService.Client(),
		config.GetDurationEnv("WALLET_CACHE_TTL", 5*time.Minute),
	)

	// CRM client, shared by the notifier and the catalog sync
	crmClient := crm.NewClient(crm.Config{
		BaseURL:      config.GetEnv("CRM_BASE_URL", "https://services.leadconnectorhq.com"),
		APIKey:       config.GetEnv("CRM_API_KEY", ""),
		LocationID:   config.GetEnv("CRM_LOCATION_ID", ""),
		BusinessName: config.GetEnv("CRM_BUSINESS_NAME", "Velvet"),
		Timeout:      config.GetDurationEnv("CRM_TIMEOUT", 10*time.Second),
	}, log)

	// Services
	walletService := wallet.NewService(ledgerRepo, walletRepo, walletCache, wallet.NewPrometheusCollector(), log)

	checkoutService := checkout.NewService(
		productRepo,
		purchaseRepo,
		checkout.NewStripeClient(config.GetEnv("STRIPE_SECRET_KEY", "")),
		checkout.Config{
			SuccessURL: config.GetEnv("CHECKOUT_SUCCESS_URL", "http://localhost:5173/purchase/success"),
			CancelURL:  config.GetEnv("CHECKOUT_CANCEL_URL", "http://localhost:5173/purchase/cancel"),
		},
		log,
	)

	notifierService := notifier.NewService(
		crmClient,
		userRepo,
		config.GetDurationEnv("NOTIFIER_TIMEOUT", 15*time.Second),
		log,
	)

	reconcileService := reconcile.NewService(
		reconcile.NewStripeVerifier(config.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		purchaseRepo,
		walletCache,
		notifierService,
		log,
	)

	catalogService := catalog.NewService(crmClient, productRepo, config.GetEnv("CRM_LOCATION_ID", ""), log)
	billingService := billing.NewService(agentRepo, callRepo, walletService, log)

	// Handlers
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, log)
	stripeWebhook := handlers.NewStripeWebhookHandler(reconcileService, log)
	agentWebhook := handlers.NewAgentWebhookHandler(agentRepo, config.GetEnv("CRM_WEBHOOK_TOKEN", ""), log)
	walletHandler := handlers.NewWalletHandler(walletService, log)
	userHandler := handlers.NewUserHandler(userRepo, walletService, log)
	productHandler := handlers.NewProductHandler(catalogService, log)
	agentHandler := handlers.NewAgentHandler(agentRepo, log)
	callHandler := handlers.NewCallHandler(billingService, log)
	voiceHandler := handlers.NewVoiceHandler(relay.Config{
		UpstreamURL:      config.GetEnv("VOICE_WS_URL", "wss://api.elevenlabs.io/v1/convai/conversation"),
		APIKey:           config.GetEnv("VOICE_API_KEY", ""),
		HandshakeTimeout: config.GetDurationEnv("VOICE_HANDSHAKE_TIMEOUT", 10*time.Second),
	}, log)

	// Probes and metrics
	app.Get("/health", handlers.Health)
	app.Get("/ready", handlers.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Webhooks, no auth: the stripe route authenticates by signature, the
	// CRM route by shared token.
	webhooks := app.Group("/webhooks")
	webhooks.Post("/stripe", stripeWebhook.Handle)
	webhooks.Post("/crm/agents", agentWebhook.Handle)

	// Authenticated API
	api := app.Group("/api", middleware.Auth())

	api.Get("/user", userHandler.Me)

	api.Get("/wallet", walletHandler.GetBalance)
	api.Get("/wallet/history", walletHandler.GetHistory)

	api.Get("/products", productHandler.List)

	api.Post("/checkout", limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	}), checkoutHandler.CreateSession)

	api.Get("/agents", agentHandler.List)
	api.Post("/calls", callHandler.Record)
	api.Get("/calls", callHandler.List)

	// Voice relay websocket
	app.Use("/ws/voice", voiceHandler.Upgrade)
	app.Get("/ws/voice", voiceHandler.Stream())

	// Admin
	admin := app.Group("/api/admin", middleware.Auth(), middleware.AdminOnly)
	admin.Post("/catalog/sync", productHandler.Sync)

	return &Services{Catalog: catalogService}
}
