package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/sweetshop/sweet-inventory/internal/api/handler"
	"github.com/sweetshop/sweet-inventory/internal/api/middleware"
	"github.com/sweetshop/sweet-inventory/internal/core/domain"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
	"github.com/sweetshop/sweet-inventory/pkg/logger"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Auth       ports.AuthService
	Sweets     ports.SweetService
	Categories ports.CategoryService

	// Readiness lists the dependencies pinged by GET /health/ready.
	Readiness map[string]handler.Pinger

	// Logger defaults to the process logger when nil.
	Logger *zerolog.Logger
	Cookie handler.CookieOptions

	// LoginRatePerMinute caps login attempts per client IP.
	LoginRatePerMinute int

	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	log := logger.Get()
	if deps.Logger != nil {
		log = *deps.Logger
	}
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "sweetshop",
		Subsystem:  "http",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/swagger")
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookie)
	sweetHandler := handler.NewSweetHandler(deps.Sweets)
	categoryHandler := handler.NewCategoryHandler(deps.Categories)
	session := middleware.Session(deps.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login, loginRateLimiter(deps.LoginRatePerMinute))
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, session)

	// --- Catalog routes ---
	// Ownership of a sweet is checked by the service once the record is loaded.
	sweets := e.Group("/sweets", session)
	sweets.GET("", sweetHandler.List)
	sweets.GET("/search", sweetHandler.Search)
	sweets.GET("/:id", sweetHandler.Get)
	sweets.POST("", sweetHandler.Create, adminOnly)
	sweets.PUT("/:id", sweetHandler.Update, adminOnly)
	sweets.DELETE("/:id", sweetHandler.Delete, adminOnly)
	sweets.POST("/:id/purchase", sweetHandler.Purchase)
	sweets.POST("/:id/restock", sweetHandler.Restock, adminOnly)

	categories := e.Group("/category", session)
	categories.GET("", categoryHandler.List)
	categories.POST("", categoryHandler.Create, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{registry, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// loginRateLimiter allows perMinute attempts per client IP with an equal burst.
func loginRateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = 10
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{Store: store})
}
