package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/handler"
	"github.com/rareminds/testportal/internal/metrics"
	"github.com/rareminds/testportal/internal/middleware"
	"github.com/rareminds/testportal/internal/response"
	"github.com/rareminds/testportal/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth   *handler.AuthHandler
	Portal *handler.PortalHandler
	WS     *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work owned by the router, such as rate limiter cleanup.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(metrics.Middleware())
	router.Use(middleware.Brotli())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// 30 login or signup attempts per minute per IP.
	authLimiter := middleware.NewRateLimiter(ctx, 30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/student/login", authLimiter.Middleware(), handlers.Auth.StudentLogin)
		auth.POST("/student/signup", authLimiter.Middleware(), handlers.Auth.StudentSignup)

		authed := auth.Group("/student")
		authed.Use(
			middleware.RequireStudentJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
		)
		authed.POST("/logout", handlers.Auth.StudentLogout)
		authed.GET("/me", handlers.Auth.GetStudentProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/dashboard", handlers.Portal.GetDashboard)
		studentAPI.GET("/profile/tests", handlers.Portal.GetTestProfile)
		studentAPI.GET("/results/latest", handlers.Portal.GetLatestResult)
		studentAPI.POST("/support", handlers.Portal.CreateSupportRequest)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	// Browsers cannot set headers on upgrades, so the token rides in ?token=.
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		ws.GET("/student/test/stream", handlers.WS.TestStream)
	}

	return router
}
