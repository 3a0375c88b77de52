// Package app assembles the HTTP application from its collaborators.
package app

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"farmconnect/internal/config"
	"farmconnect/internal/handlers"
	"farmconnect/internal/identity"
	"farmconnect/internal/middleware"
	"farmconnect/internal/repositories"
	"farmconnect/internal/services"
	"farmconnect/pkg/cache"
	"farmconnect/pkg/logger"
	"farmconnect/pkg/metrics"
)

// Deps are the long-lived resources the application is built from.
// Publisher and Cache are optional.
type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *logger.Logger
	Gatherer  prometheus.Gatherer
	Metrics   *metrics.OrderMetrics
	Publisher services.EventPublisher
	Cache     cache.Cache
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// New builds the fiber application with every route registered.
func New(d Deps) *fiber.App {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	respond := handlers.NewErrorResponder(log)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	listingRepo := repositories.NewGORMListingRepository(d.DB)
	orderRepo := repositories.NewGORMOrderRepository(d.DB)
	ledgerRepo := repositories.NewGORMLedgerRepository(d.DB)
	marketRepo := repositories.NewGORMMarketRepository(d.DB)
	transactor := repositories.NewGORMTransactor(d.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, d.Config.JWT.Secret, d.Config.JWT.TTL)
	listingService := services.NewListingService(listingRepo)
	orderService := services.NewOrderService(orderRepo, listingRepo, transactor, services.OrderOptions{
		Publisher:   d.Publisher,
		Metrics:     d.Metrics,
		Logger:      log,
		StrictStock: d.Config.Orders.StrictStock,
	})
	ledgerService := services.NewLedgerService(ledgerRepo, listingRepo)
	dashboardService := services.NewDashboardService(orderRepo, ledgerRepo, listingRepo)
	marketService := services.NewMarketService(marketRepo, d.Cache, d.Config.Redis.MarketCacheTTL, log)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService, respond)
	listingHandler := handlers.NewListingHandler(listingService, respond)
	orderHandler := handlers.NewOrderHandler(orderService, respond)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, respond)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, respond)
	marketHandler := handlers.NewMarketHandler(marketService, respond)

	app := fiber.New(fiber.Config{
		AppName:      "farmconnect",
		ErrorHandler: handlers.FiberErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestContext(log))
	if d.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}

	// The database is required; a failing cache only degrades the report
	// since market reads fall back to the database.
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		code := fiber.StatusOK
		cacheStatus := "disabled"
		if p, ok := d.Cache.(pinger); ok {
			cacheStatus = "up"
			if err := ping(c.UserContext(), p); err != nil {
				log.Warn(c.UserContext(), "health check cache ping failed", err)
				status = "degraded"
				cacheStatus = "down"
			}
		}
		if err := pingDB(c.UserContext(), d.DB); err != nil {
			log.Warn(c.UserContext(), "health check database ping failed", err)
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"cache":  cacheStatus,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService, log, respond))
	farmerOnly := middleware.RequireRole(identity.RoleFarmer, respond)
	consumerOnly := middleware.RequireRole(identity.RoleConsumer, respond)

	listingHandler.RegisterRoutes(protected, farmerOnly, consumerOnly)
	orderHandler.RegisterRoutes(protected, consumerOnly)
	ledgerHandler.RegisterRoutes(protected, farmerOnly)
	dashboardHandler.RegisterRoutes(protected, farmerOnly, consumerOnly)
	marketHandler.RegisterRoutes(protected)

	return app
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(ctx context.Context, p pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Ping(ctx)
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
