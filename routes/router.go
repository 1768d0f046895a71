package routes

import (
	"net/http"
	"time"

	"credibly/internal/handlers"
	"credibly/internal/middleware"
	"credibly/internal/observability"
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Rating     *handlers.RatingHandler
	User       *handlers.UserHandler
	Connection *handlers.ConnectionHandler
	Report     *handlers.ReportHandler
	Feed       *handlers.FeedHandler
	Admin      *handlers.AdminHandler
	Health     *handlers.HealthHandler
}

type RouterConfig struct {
	Logger         *logger.Logger
	Metrics        *observability.Metrics
	MetricsHandler http.Handler
	AuthService    services.AuthService
	RateLimiter    *middleware.RateLimiter
	RequestTimeout time.Duration
	AllowedOrigins []string
	TrustedProxies []string
}

// SetupRouter builds the engine with the global middleware chain and every
// route group.
func SetupRouter(cfg *RouterConfig, h *Handlers) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		cfg.Logger.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(cfg.Logger, cfg.Metrics))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", h.Health.Health)
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := router.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware())
	}
	api.Use(middleware.TimeoutMiddleware(cfg.RequestTimeout))

	auth := middleware.AuthRequired(cfg.AuthService)

	SetupAuthRoutes(api, h.Auth)
	SetupRatingRoutes(api, auth, h.Rating)
	SetupUserRoutes(api, auth, h.User, h.Feed)
	SetupRelationshipRoutes(api, auth, h.Connection, h.Report)
	SetupAdminRoutes(api, auth, h.Admin)

	router.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "route")
	})

	return router
}
