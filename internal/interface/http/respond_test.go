package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

func TestRespondErr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"invalid query", query.ErrInvalidQuery, http.StatusBadRequest, "invalid comparison query"},
		{"validation", app.ErrValidation, http.StatusBadRequest, "validation failed"},
		{"bootcamp exists", app.ErrBootcampExists, http.StatusBadRequest, app.ErrBootcampExists.Error()},
		{"invalid credentials", app.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"unauthorized", app.ErrUnauthorized, http.StatusUnauthorized, "not authorized to access this route"},
		{"forbidden", app.ErrForbidden, http.StatusForbidden, "not authorized to modify this resource"},
		{"not found", app.ErrNotFound, http.StatusNotFound, "resource not found"},
		{"conflict", app.ErrConflict, http.StatusConflict, app.ErrConflict.Error()},
		{"upstream", app.ErrUpstream, http.StatusBadGateway, app.ErrUpstream.Error()},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondErr(c, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)

			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.wantMessage, body.Error)
		})
	}
}

func TestRespondErr_WrappedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondErr(c, errors.Join(errors.New("context"), app.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
