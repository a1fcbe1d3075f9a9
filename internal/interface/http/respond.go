package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/response"
)

// respondErr translates application errors into the error envelope.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, query.ErrInvalidQuery):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrValidation):
		response.Error(c, http.StatusBadRequest, "validation failed")
	case errors.Is(err, app.ErrBootcampExists):
		response.Error(c, http.StatusBadRequest, app.ErrBootcampExists.Error())
	case errors.Is(err, app.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, app.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "not authorized to access this route")
	case errors.Is(err, app.ErrForbidden):
		response.Error(c, http.StatusForbidden, "not authorized to modify this resource")
	case errors.Is(err, app.ErrNotFound):
		response.Error(c, http.StatusNotFound, "resource not found")
	case errors.Is(err, app.ErrConflict):
		response.Error(c, http.StatusConflict, app.ErrConflict.Error())
	case errors.Is(err, app.ErrUpstream):
		response.Error(c, http.StatusBadGateway, app.ErrUpstream.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "server error")
	}
}
