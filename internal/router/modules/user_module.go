package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

// UserModule exposes the admin CRUD plus the public email lookup the
// sign-up form uses.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   repo.UserRepository
}

func NewUserModule(h *handlers.UserHandler, users repo.UserRepository) *UserModule {
	return &UserModule{Handler: h, Users: users}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.GET("/users/user/:email", m.Handler.GetByEmail)

	admin := rg.Group("/users")
	admin.Use(middleware.Protect(m.Users, container.GetJWT()), middleware.Authorize(entity.RoleAdmin))
	{
		admin.GET("", m.Handler.List)
		admin.POST("", m.Handler.Create)
		admin.GET("/:id", m.Handler.Get)
		admin.PUT("/:id", m.Handler.Update)
		admin.DELETE("/:id", m.Handler.Delete)
	}
}
