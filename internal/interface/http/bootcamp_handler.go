package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/response"
	"github.com/devtrail/bootcamp-api/pkg/validation"
)

type BootcampHandler struct {
	Svc    *app.BootcampService
	Policy *query.FieldPolicy
	Logger *logrus.Logger
}

func NewBootcampHandler(svc *app.BootcampService, policy *query.FieldPolicy, logger *logrus.Logger) *BootcampHandler {
	return &BootcampHandler{Svc: svc, Policy: policy, Logger: logger}
}

func (h *BootcampHandler) List(c *gin.Context) {
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

func (h *BootcampHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, b)
}

func (h *BootcampHandler) GetByOwner(c *gin.Context) {
	bs, err := h.Svc.GetByOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Slice(c, http.StatusOK, bs, len(bs))
}

func (h *BootcampHandler) Create(c *gin.Context) {
	var req app.BootcampInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusCreated, b)
}

func (h *BootcampHandler) Update(c *gin.Context) {
	var req app.BootcampUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, b)
}

func (h *BootcampHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, gin.H{})
}

func (h *BootcampHandler) WithinRadius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "distance must be a number")
		return
	}
	bs, err := h.Svc.WithinRadius(c.Request.Context(), c.Param("zipcode"), distance)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Slice(c, http.StatusOK, bs, len(bs))
}

// UploadPhoto accepts a multipart upload under the "files" field.
func (h *BootcampHandler) UploadPhoto(c *gin.Context) {
	fh, err := c.FormFile("files")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "please upload a file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondErr(c, err)
		return
	}
	defer f.Close()

	b, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"),
		fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, b)
}

func (h *BootcampHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error(c, http.StatusBadRequest, "query parameter q is required")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Slice(c, http.StatusOK, hits, len(hits))
}
