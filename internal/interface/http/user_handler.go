package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/response"
	"github.com/devtrail/bootcamp-api/pkg/validation"
)

// User payloads honor the legacy "user" envelope key.
type UserHandler struct {
	Svc    *app.UserService
	Policy *query.FieldPolicy
	Logger *logrus.Logger
}

func NewUserHandler(svc *app.UserService, policy *query.FieldPolicy, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Policy: policy, Logger: logger}
}

func (h *UserHandler) List(c *gin.Context) {
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

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "user", u)
}

// GetByEmail is the public existence lookup the sign-up form polls.
func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.Svc.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "user", u)
}

func (h *UserHandler) Create(c *gin.Context) {
	var req app.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusCreated, "user", u)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req app.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "user", u)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "user", gin.H{})
}
