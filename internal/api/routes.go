package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/tooldex/internal/auth"
	"github.com/jonesrussell/tooldex/internal/config"
	"github.com/jonesrussell/tooldex/internal/handler"
	"github.com/jonesrussell/tooldex/internal/metrics"
	"github.com/jonesrussell/tooldex/internal/middleware"
)

// Dependencies bundles everything the routes need.
type Dependencies struct {
	Health      *handler.HealthHandler
	Redirect    *handler.RedirectHandler
	Submissions *handler.SubmissionsHandler
	Bootstrap   *handler.BootstrapHandler
	Search      *handler.SearchHandler
	Metrics     *metrics.Metrics

	Verifier  auth.TokenVerifier
	AllowList *auth.AllowList
	Claims    auth.ClaimStore
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, cfg *config.Config, deps *Dependencies) {
	router.GET("/health", deps.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Outbound redirect with bot filter and per-IP rate limiting
	rateLimitWindow := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	out := router.Group("")
	out.Use(middleware.BotFilter())
	out.Use(middleware.RateLimiter(cfg.RateLimit.MaxRedirectsPerMinute, rateLimitWindow))
	out.GET("/out", deps.Redirect.HandleRedirect)

	api := router.Group("/api")
	api.POST("/submissions", deps.Submissions.Submit)
	api.GET("/search/tools", deps.Search.Tools)

	// Bootstrap authenticates inside the handler; it must be reachable
	// before the caller holds the admin claim.
	api.POST("/admin/bootstrap", deps.Bootstrap.Bootstrap)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(deps.Verifier, deps.AllowList, deps.Claims))
	admin.GET("/submissions", deps.Submissions.List)
	admin.POST("/submissions/:id/status", deps.Submissions.SetStatus)
	admin.POST("/submissions/:id/reopen", deps.Submissions.Reopen)
}
