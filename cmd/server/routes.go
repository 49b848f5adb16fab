package main

import (
	"github.com/codemule/adminbase/backend/internal/middleware"
	"github.com/codemule/adminbase/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	// Rate limiter for credential-bearing routes
	authLimiter := middleware.NewRateLimiter(5, 10)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	adminOnly := middleware.AdminRequired(func(userID uint) (string, error) {
		user, err := svc.authService.Identify(userID)
		if err != nil {
			return "", err
		}
		return user.Role, nil
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public, rate limited)
		auth := api.Group("/auth", authLimiter.Middleware())
		{
			auth.POST("/login", svc.authHandler.Login)
			auth.POST("/mfa/verify", svc.authHandler.VerifyMFA)
			auth.POST("/refresh", svc.authHandler.Refresh)
			auth.POST("/forgot-password", svc.authHandler.ForgotPassword)
			auth.POST("/reset-password", svc.authHandler.ResetPassword)
			auth.GET("/config", svc.authHandler.GetAuthConfig)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.AuditLog())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/logout-all", svc.authHandler.LogoutAll)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// MFA enrollment
			protected.POST("/auth/mfa/enroll", svc.mfaHandler.BeginEnrollment)
			protected.POST("/auth/mfa/enroll/confirm", svc.mfaHandler.ConfirmEnrollment)
			protected.POST("/auth/mfa/disable", svc.mfaHandler.Disable)
			protected.POST("/auth/mfa/backup-codes", svc.mfaHandler.RegenerateBackupCodes)

			// Sessions
			protected.GET("/sessions", svc.sessionHandler.List)
			protected.DELETE("/sessions/:id", svc.sessionHandler.Terminate)
			protected.POST("/sessions/terminate-others", svc.sessionHandler.TerminateOthers)

			// Profile
			protected.PUT("/profile", svc.userHandler.UpdateProfile)

			// Admin routes
			admin := protected.Group("", adminOnly)
			{
				// Users
				admin.GET("/users", svc.userHandler.List)
				admin.GET("/users/:id", svc.userHandler.Get)
				admin.POST("/users", svc.userHandler.Create)
				admin.PUT("/users/:id", svc.userHandler.Update)
				admin.DELETE("/users/:id", svc.userHandler.Delete)

				// Roles
				admin.GET("/roles", svc.roleHandler.List)
				admin.POST("/roles", svc.roleHandler.Create)
				admin.PUT("/roles/:id", svc.roleHandler.Update)
				admin.DELETE("/roles/:id", svc.roleHandler.Delete)

				// Settings
				admin.GET("/settings", svc.configHandler.List)
				admin.PUT("/settings", svc.configHandler.Update)

				// System logs
				admin.GET("/logs", svc.logHandler.List)
				admin.POST("/logs/cleanup", svc.logHandler.Cleanup)

				// Maintenance
				admin.POST("/admin/token-cleanup", svc.healthHandler.TriggerTokenCleanup)
			}
		}
	}
}
