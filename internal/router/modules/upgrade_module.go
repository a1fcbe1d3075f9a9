package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

type UpgradeModule struct {
	Handler *handlers.UpgradeHandler
	Users   repo.UserRepository
}

func NewUpgradeModule(h *handlers.UpgradeHandler, users repo.UserRepository) *UpgradeModule {
	return &UpgradeModule{Handler: h, Users: users}
}

func (m *UpgradeModule) Register(rg *gin.RouterGroup) {
	protect := middleware.Protect(m.Users, container.GetJWT())
	admins := middleware.Authorize(entity.RoleAdmin)

	reqs := rg.Group("/upgradeRequest")
	reqs.Use(protect)
	{
		reqs.POST("", m.Handler.Submit)
		reqs.GET("/user/:id", m.Handler.GetByUser)
		reqs.GET("", admins, m.Handler.List)
		reqs.GET("/accept/:id", admins, m.Handler.Accept)
		reqs.GET("/reject/:id", admins, m.Handler.Reject)
	}
}
