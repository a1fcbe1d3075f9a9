package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/container"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

// BootcampModule also mounts the nested course and review routes that live
// under a bootcamp.
type BootcampModule struct {
	Handler *handlers.BootcampHandler
	Courses *handlers.CourseHandler
	Reviews *handlers.ReviewHandler
	Users   repo.UserRepository
}

func NewBootcampModule(h *handlers.BootcampHandler, courses *handlers.CourseHandler, reviews *handlers.ReviewHandler, users repo.UserRepository) *BootcampModule {
	return &BootcampModule{Handler: h, Courses: courses, Reviews: reviews, Users: users}
}

func (m *BootcampModule) Register(rg *gin.RouterGroup) {
	protect := middleware.Protect(m.Users, container.GetJWT())
	publishers := middleware.Authorize(entity.RolePublisher, entity.RoleAdmin)
	reviewers := middleware.Authorize(entity.RoleUser, entity.RoleAdmin)

	rg.GET("/bootcamps", m.Handler.List)
	rg.GET("/bootcamps/search", m.Handler.Search)
	rg.GET("/bootcamps/radius/:zipcode/:distance", m.Handler.WithinRadius)
	rg.GET("/bootcamps/user/:id", m.Handler.GetByOwner)
	rg.GET("/bootcamps/:id", m.Handler.Get)
	rg.GET("/bootcamps/:id/courses", m.Courses.ListByBootcamp)
	rg.GET("/bootcamps/:id/reviews", m.Reviews.ListByBootcamp)

	rg.POST("/bootcamps", protect, publishers, m.Handler.Create)
	rg.PUT("/bootcamps/:id", protect, publishers, m.Handler.Update)
	rg.DELETE("/bootcamps/:id", protect, publishers, m.Handler.Delete)
	rg.PUT("/bootcamps/:id/photos", protect, publishers, m.Handler.UploadPhoto)
	rg.POST("/bootcamps/:id/courses", protect, publishers, m.Courses.Create)
	rg.POST("/bootcamps/:id/reviews", protect, reviewers, m.Reviews.Create)
}
