package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/response"
)

type UpgradeHandler struct {
	Svc    *app.UpgradeService
	Policy *query.FieldPolicy
	Logger *logrus.Logger
}

func NewUpgradeHandler(svc *app.UpgradeService, policy *query.FieldPolicy, logger *logrus.Logger) *UpgradeHandler {
	return &UpgradeHandler{Svc: svc, Policy: policy, Logger: logger}
}

func (h *UpgradeHandler) List(c *gin.Context) {
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

// Submit files a publisher request for the calling user.
func (h *UpgradeHandler) Submit(c *gin.Context) {
	req, err := h.Svc.Submit(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusCreated, req)
}

// GetByUser serves GET /upgradeRequest/user/:id where :id is a user id.
func (h *UpgradeHandler) GetByUser(c *gin.Context) {
	req, err := h.Svc.GetByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, req)
}

func (h *UpgradeHandler) Accept(c *gin.Context) {
	u, err := h.Svc.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "user", u)
}

func (h *UpgradeHandler) Reject(c *gin.Context) {
	if err := h.Svc.Reject(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{})
}
