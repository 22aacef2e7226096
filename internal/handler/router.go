package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kitforge/backend/internal/model"
	"github.com/kitforge/backend/internal/ratelimit"
	"github.com/kitforge/backend/internal/service"
)

type RouterConfig struct {
	Auth    *service.AuthService
	Users   *service.UserService
	Avatars *service.AvatarService
	DB      Pinger
	Limiter ratelimit.Limiter
	Log     *slog.Logger

	AllowedOrigins []string
	Production     bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Log))
	router.Use(SecurityHeaders(cfg.Production))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	expose := !cfg.Production
	gate := NewGate(cfg.Auth, expose)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Avatars, expose)
	adminHandler := NewAdminHandler(cfg.Users, expose)
	healthHandler := NewHealthHandler(cfg.DB)

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.Limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{RateLimit(cfg.Limiter, cfg.Log), h}
	}

	router.GET("/", Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/openapi.json", OpenAPIDoc)

	auth := router.Group("/auth")
	{
		auth.POST("/register", limited(authHandler.Register)...)
		auth.POST("/login", limited(authHandler.Login)...)
		auth.POST("/refresh-token", limited(authHandler.RefreshToken)...)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/verify-email/:token", limited(authHandler.VerifyEmail)...)
		auth.POST("/forgot-password", limited(authHandler.ForgotPassword)...)
		auth.POST("/reset-password", limited(authHandler.ResetPassword)...)
		auth.GET("/session", gate.Optional(), authHandler.Session)

		protected := auth.Group("", gate.Required())
		protected.GET("/profile", authHandler.Profile)
		protected.PUT("/profile", authHandler.UpdateProfile)
		protected.PUT("/change-password", authHandler.ChangePassword)
		protected.POST("/resend-verification", limited(authHandler.ResendVerification)...)
		protected.GET("/login-history", authHandler.LoginHistory)
		protected.POST("/profile/avatar", RequireVerifiedEmail(), authHandler.AvatarUpload)
	}

	admin := router.Group("/admin", gate.Required())
	{
		admin.GET("/users", RequireRoles(model.RoleAdmin, model.RoleModerator), adminHandler.ListUsers)
		admin.PATCH("/users/:id/status", RequireRoles(model.RoleAdmin), adminHandler.UpdateUserStatus)
	}

	return router
}
