package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/container"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   repo.UserRepository
}

func NewAuthModule(h *handlers.AuthHandler, users repo.UserRepository) *AuthModule {
	return &AuthModule{Handler: h, Users: users}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits. Requests from private or
	// loopback addresses (health checks, local tooling) bypass the limits.
	allowInternal := middleware.AllowPrivateIP()
	registerLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), allowInternal)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), allowInternal)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), allowInternal)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/googlesignin", registerLimiter, m.Handler.GoogleSignIn)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.GET("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/forgotPassword", forgotLimiter, m.Handler.ForgotPassword)
	rg.GET("/auth/isValidToken/:resettoken", m.Handler.ValidateResetToken)
	rg.PUT("/auth/resetpassword/:resettoken", m.Handler.ResetPassword)

	// Protected. Password changes are additionally limited per account.
	passwordLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByUserID(), nil)

	auth := rg.Group("/auth")
	auth.Use(middleware.Protect(m.Users, container.GetJWT()))
	{
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/updateDetails", m.Handler.UpdateDetails)
		auth.PUT("/updatePassword", passwordLimiter, m.Handler.UpdatePassword)
	}
}
