package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

type ReviewModule struct {
	Handler *handlers.ReviewHandler
	Users   repo.UserRepository
}

func NewReviewModule(h *handlers.ReviewHandler, users repo.UserRepository) *ReviewModule {
	return &ReviewModule{Handler: h, Users: users}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	protect := middleware.Protect(m.Users, container.GetJWT())
	reviewers := middleware.Authorize(entity.RoleUser, entity.RoleAdmin)

	rg.GET("/reviews", m.Handler.List)
	rg.GET("/reviews/:id", m.Handler.Get)
	rg.PUT("/reviews/:id", protect, reviewers, m.Handler.Update)
	rg.DELETE("/reviews/:id", protect, reviewers, m.Handler.Delete)
}
