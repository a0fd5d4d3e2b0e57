package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rentloop/rentloop/internal/auth"
	"github.com/rentloop/rentloop/internal/booking"
	"github.com/rentloop/rentloop/internal/config"
	"github.com/rentloop/rentloop/internal/identity"
	"github.com/rentloop/rentloop/internal/ledger"
	"github.com/rentloop/rentloop/internal/middleware"
	"github.com/rentloop/rentloop/internal/notification"
	"github.com/rentloop/rentloop/internal/vehicle"
	"github.com/rentloop/rentloop/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// No fallbacks outside of dev, even though main also checks.
	if !isDev(d.Cfg.Env) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	RegisterHealthRoutes(app, d)

	notifier := notification.NewLoggerNotifier(d.Logger)

	// Storage backends. Without a database the settlement store runs in
	// memory and doubles as the wallet ledger, so both views agree.
	var (
		bookingStore  booking.Store
		ledgerBackend ledger.Ledger
		vehicleRepo   vehicle.Repository
		identityRepo  identity.Repository
	)
	if d.DB != nil {
		bookingStore = booking.NewPostgresStore(d.DB)
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
		vehicleRepo = vehicle.NewPostgresRepository(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		bookingStore = booking.NewInMemory()
		ledgerBackend = bookingStore.(ledger.Ledger)
		vehicleRepo = syncedVehicles{Repository: vehicle.NewMemoryRepository(), store: bookingStore}
		identityRepo = identity.NewMemoryRepository()
	}

	walletSvc := wallet.NewService(ledgerBackend)
	vehicleSvc := vehicle.NewService(vehicleRepo)
	bookingSvc := booking.NewService(bookingStore, notifier)
	identitySvc := identity.NewService(identityRepo, walletSvc)
	tokenSvc := auth.NewService(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL)
	otpSvc := auth.NewOTPService(d.Cache, notifier, d.Cfg.OTPTTL)

	identityHandler := identity.NewHandler(identitySvc, tokenSvc)
	authHandler := auth.NewHandler(otpSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	vehicleHandler := vehicle.NewHandler(vehicleSvc)
	bookingHandler := booking.NewHandler(bookingSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterUserRoutes(api, identityHandler, rateLimiter)
	RegisterAuthRoutes(api, authHandler, d.Cache != nil)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(tokenSvc))
	protected.Get("/me", identityHandler.Me)
	RegisterVehicleRoutes(api, protected, vehicleHandler, middleware.RequireRole(identity.RoleOwner))
	RegisterBookingRoutes(api, protected, bookingHandler)
	RegisterWalletRoutes(protected, walletHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
