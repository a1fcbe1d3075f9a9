package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

type CourseModule struct {
	Handler *handlers.CourseHandler
	Users   repo.UserRepository
}

func NewCourseModule(h *handlers.CourseHandler, users repo.UserRepository) *CourseModule {
	return &CourseModule{Handler: h, Users: users}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	protect := middleware.Protect(m.Users, container.GetJWT())
	publishers := middleware.Authorize(entity.RolePublisher, entity.RoleAdmin)

	rg.GET("/courses", m.Handler.List)
	rg.GET("/courses/:id", m.Handler.Get)
	rg.PUT("/courses/:id", protect, publishers, m.Handler.Update)
	rg.DELETE("/courses/:id", protect, publishers, m.Handler.Delete)
}
