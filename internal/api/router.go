package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/roomsync/reservation-system/internal/api/handler"
	"github.com/roomsync/reservation-system/internal/api/middleware"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/event"
	"github.com/roomsync/reservation-system/internal/core/ports"
	"github.com/roomsync/reservation-system/internal/core/service"
	"github.com/roomsync/reservation-system/internal/infrastructure/config"
	mongodb "github.com/roomsync/reservation-system/internal/infrastructure/db/mongo"
	redisdb "github.com/roomsync/reservation-system/internal/infrastructure/db/redis"
	"github.com/roomsync/reservation-system/internal/infrastructure/mail"
)

// Deps carries the external resources the router wires together.
type Deps struct {
	Config     *config.Config
	Mongo      *mongo.Database
	Redis      *redis.Client
	Dispatcher *event.Dispatcher
	// Mailer is the notification boundary; defaults to the log-backed
	// implementation when nil.
	Mailer ports.Mailer
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("reservation"))

	// --- Persistence, wired to the post-commit event dispatch hook ---
	afterWrite := mongodb.WriteHook(d.Dispatcher.DispatchForAggregate)
	userRepo := mongodb.NewUserRepository(d.Mongo, afterWrite)
	reservationRepo := mongodb.NewReservationRepository(d.Mongo, afterWrite)
	refreshStore := redisdb.NewRefreshTokenStore(d.Redis)
	resetStore := redisdb.NewResetTokenStore(d.Redis)

	if d.Mailer == nil {
		d.Mailer = mail.NewLogMailer(d.Log)
	}

	// --- Services ---
	tokenService := service.NewTokenService(
		d.Config.JWTSecret, d.Config.AccessTokenTTL, d.Config.RefreshTokenTTL, refreshStore, d.Log)
	authService := service.NewAuthService(
		userRepo, tokenService, resetStore, d.Mailer, d.Dispatcher,
		d.Config.BcryptCost, d.Config.ResetTokenTTL, d.Log)
	reservationService := service.NewReservationService(reservationRepo, d.Dispatcher, d.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(authService)
	reservationHandler := handler.NewReservationHandler(reservationService)

	authn := middleware.Auth(tokenService)
	authnWithUser := middleware.Auth(tokenService, middleware.WithUserFetch(userRepo))
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleMember)

	// --- Auth routes ---
	e.POST("/users/register", authHandler.Register)
	e.POST("/users/login", authHandler.Login)
	e.POST("/users/refresh", authHandler.Refresh)
	e.POST("/users/reset-password", authHandler.RequestReset)
	e.POST("/users/reset-password/confirm", authHandler.ConfirmReset)

	// --- User routes ---
	e.POST("/users", userHandler.Create, authn, adminOnly)
	e.GET("/users/me", userHandler.Me, authnWithUser)

	// --- Reservation routes ---
	e.POST("/reservations", reservationHandler.Create, authn, anyRole)
	e.GET("/reservations", reservationHandler.List, authn, anyRole)
	e.GET("/reservations/:id", reservationHandler.Get, authn, anyRole)
	e.POST("/reservations/:id/confirm", reservationHandler.Confirm, authn, anyRole)
	e.DELETE("/reservations/:id", reservationHandler.Cancel, authn, anyRole)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
