package api

import (
	"adminpanel/internal/devserver"
	"adminpanel/internal/metrics"
	"adminpanel/internal/middleware"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Tokens   *devserver.TokenIssuer
	Accounts *devserver.Accounts
	Admins   *devserver.Admins
	Limiter  *middleware.RateLimiter
	// Origins limits CORS; empty allows any origin.
	Origins []string
	// BasePath prefixes every API route, e.g. "/admin".
	BasePath string
}

func RegisterRoutes(cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.Cors(cfg.Origins),
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.GinZapRecovery(),
		middleware.HttpMiddleware(),
	)
	r.SetTrustedProxies(nil)

	authHandler := NewAuthHandler(cfg.Tokens, cfg.Accounts)
	adminHandler := NewAdminHandler(cfg.Admins)
	dashHandler := NewDashboardHandler(cfg.Admins)

	r.GET("/health", dashHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	writeLimiter := func(c *gin.Context) { c.Next() }
	if cfg.Limiter != nil {
		writeLimiter = cfg.Limiter.Middleware()
	}

	base := r.Group(cfg.BasePath)

	public := base.Group("")
	{
		public.POST("/auth/login", writeLimiter, authHandler.Login)
		public.POST("/auth/verify-2fa", writeLimiter, authHandler.VerifyTwoFactor)
		public.POST("/auth/refresh", authHandler.Refresh)
		public.POST("/auth/logout", authHandler.Logout)
		public.POST("/password/forgot-password", writeLimiter, authHandler.ForgotPassword)
		public.POST("/password/verify-otp", writeLimiter, authHandler.VerifyOTP)
		public.POST("/password/reset-password", writeLimiter, authHandler.ResetPassword)
	}

	protected := base.Group("")
	protected.Use(middleware.JWTMiddleware(cfg.Tokens))
	{
		protected.GET("/profile", authHandler.GetProfile)
		protected.PUT("/profile/update", authHandler.UpdateProfile)
		protected.POST("/password/change-password", writeLimiter, authHandler.ChangePassword)

		protected.GET("/dashboard/stats", dashHandler.Stats)
		protected.GET("/dashboard/analytics/revenue", dashHandler.Series("revenue"))
		protected.GET("/dashboard/analytics/users", dashHandler.Series("users"))
		protected.GET("/dashboard/analytics/enquiries", dashHandler.Series("enquiries"))

		protected.GET("/admins", adminHandler.List)
		protected.GET("/admins/:id", adminHandler.Get)
		protected.POST("/admins", writeLimiter, adminHandler.Create)
		protected.PUT("/admins/:id", writeLimiter, adminHandler.Update)
		protected.PATCH("/admins/:id/toggle-status", writeLimiter, adminHandler.ToggleStatus)
		protected.DELETE("/admins/:id", writeLimiter, adminHandler.Delete)
	}
	return r
}
