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

type ReviewHandler struct {
	Svc    *app.ReviewService
	Policy *query.FieldPolicy
	Logger *logrus.Logger
}

func NewReviewHandler(svc *app.ReviewService, policy *query.FieldPolicy, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Policy: policy, Logger: logger}
}

func (h *ReviewHandler) List(c *gin.Context) {
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

func (h *ReviewHandler) Get(c *gin.Context) {
	r, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, r)
}

// ListByBootcamp serves GET /bootcamps/:id/reviews.
func (h *ReviewHandler) ListByBootcamp(c *gin.Context) {
	rs, err := h.Svc.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Slice(c, http.StatusOK, rs, len(rs))
}

// Create serves POST /bootcamps/:id/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req app.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusCreated, r)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var req app.ReviewUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	r, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, r)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{})
}
