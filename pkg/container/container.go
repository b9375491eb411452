package container

import (
	"context"
	"fmt"

	"github.com/AfroSamurai-hub/OzzServe/internal/config"
	bookinghandler "github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/handler"
	bookingjob "github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/job"
	bookingrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/repository"
	bookingservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/booking/service"
	cataloghandler "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/handler"
	catalogrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/repository"
	catalogservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/catalog/service"
	outboxrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/notification/repository"
	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/gateway"
	gatewaymock "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/gateway/mock"
	gatewaystripe "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/gateway/stripe"
	paymenthandler "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/handler"
	paymentrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/repository"
	paymentservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/service"
	providerhandler "github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/handler"
	providerrepo "github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/repository"
	providerservice "github.com/AfroSamurai-hub/OzzServe/internal/domains/provider/service"
	infracache "github.com/AfroSamurai-hub/OzzServe/internal/infrastructure/cache"
	"github.com/AfroSamurai-hub/OzzServe/internal/infrastructure/database"
	"github.com/AfroSamurai-hub/OzzServe/pkg/cache"
	"github.com/AfroSamurai-hub/OzzServe/pkg/ident"
	"github.com/AfroSamurai-hub/OzzServe/pkg/jwt"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// =====================================================
// DEPENDENCY CONTAINER
// =====================================================

// Container wires every layer once at startup. cmd/api and cmd/worker
// both build one and pick the pieces they serve.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache
	JWT    *jwt.Manager

	BookingService bookingservice.BookingService
	WebhookService paymentservice.WebhookService

	BookingHandler  *bookinghandler.BookingHandler
	WebhookHandler  *paymenthandler.WebhookHandler
	CatalogHandler  *cataloghandler.CatalogHandler
	ProviderHandler *providerhandler.ProviderHandler

	BookingJobs *bookingjob.BookingJobs
}

// New connects the infrastructure, runs migrations and wires the domains.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Database.
	db := database.NewPostgresDB(database.DefaultDBConfig(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.SSLMode,
		cfg.Database.MaxConns,
		cfg.Database.MinConns,
	))
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// 2. Cache. A dead redis degrades the catalogue cache, nothing else.
	redisCache, err := infracache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, catalogue cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		redisCache = nil
	}

	// 3. Payment gateway: real Stripe when a key is configured, mock flow
	// otherwise.
	var stripeGateway gateway.StripeGateway
	if cfg.Stripe.SecretKey != "" {
		stripeGateway, err = gatewaystripe.NewClient(cfg.Stripe.SecretKey, cfg.Stripe.APIURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("build stripe client: %w", err)
		}
		logger.Info("stripe gateway enabled", nil)
	} else {
		stripeGateway = gatewaymock.NewMockStripeGateway()
		logger.Info("stripe key absent, mock payment flow active", nil)
	}

	clock := ident.SystemClock{}

	// 4. Repositories.
	intentRepo := paymentrepo.NewIntentRepository(db.Pool)
	webhookRepo := paymentrepo.NewWebhookRepository(db.Pool)
	bookingRepo := bookingrepo.NewBookingRepository(db.Pool)
	serviceRepo := catalogrepo.NewServiceRepository(db.Pool)
	provRepo := providerrepo.NewProviderRepository(db)
	outbox := outboxrepo.NewOutboxRepository()

	// 5. Services.
	catalogSvc := catalogservice.NewCatalogService(serviceRepo, redisCache)
	providerSvc := providerservice.NewProviderService(provRepo)
	paymentSvc := paymentservice.NewPaymentService(intentRepo, stripeGateway, clock)
	bookingSvc := bookingservice.NewBookingService(db, bookingRepo, outbox, paymentSvc, catalogSvc, providerSvc, clock)

	webhookSvc := paymentservice.NewWebhookService(db, webhookRepo, intentRepo, cfg.Stripe.WebhookSecret, cfg.IsProduction())
	// The booking engine is the webhook pipeline's authorizer; set after
	// both exist to keep the dependency direction booking -> payment.
	webhookSvc.SetBookingAuthorizer(bookingSvc)

	return &Container{
		Config: cfg,
		DB:     db,
		Cache:  redisCache,
		JWT:    jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry),

		BookingService: bookingSvc,
		WebhookService: webhookSvc,

		BookingHandler:  bookinghandler.NewBookingHandler(bookingSvc),
		WebhookHandler:  paymenthandler.NewWebhookHandler(webhookSvc),
		CatalogHandler:  cataloghandler.NewCatalogHandler(catalogSvc),
		ProviderHandler: providerhandler.NewProviderHandler(providerSvc),

		BookingJobs: bookingjob.NewBookingJobs(bookingSvc),
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}
