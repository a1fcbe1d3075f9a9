package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/response"
	"github.com/devtrail/bootcamp-api/pkg/validation"
)

// Course payloads honor the legacy "course" envelope key.
type CourseHandler struct {
	Svc    *app.CourseService
	Policy *query.FieldPolicy
	Logger *logrus.Logger
}

func NewCourseHandler(svc *app.CourseService, policy *query.FieldPolicy, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Svc: svc, Policy: policy, Logger: logger}
}

func (h *CourseHandler) List(c *gin.Context) {
	params, err := query.ParseListParams(c.Request.URL.Query(), h.Policy)
	if err != nil {
		respondErr(c, err)
		return
	}
	res, err := h.Svc.List(c.Request.Context(), params)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.List(c, http.StatusOK, res)
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "course", course)
}

// ListByBootcamp serves GET /bootcamps/:id/courses.
func (h *CourseHandler) ListByBootcamp(c *gin.Context) {
	courses, err := h.Svc.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Slice(c, http.StatusOK, courses, len(courses))
}

// Create serves POST /bootcamps/:id/courses.
func (h *CourseHandler) Create(c *gin.Context) {
	var req app.CourseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	course, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusCreated, "course", course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	var req app.CourseUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	course, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "course", course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "course", gin.H{})
}
