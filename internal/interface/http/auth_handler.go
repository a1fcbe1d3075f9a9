package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/response"
	"github.com/devtrail/bootcamp-api/pkg/validation"
)

type AuthHandler struct {
	Svc     *app.AuthService
	JWT     *helpers.JWTManager
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *app.AuthService, jwt *helpers.JWTManager, logger *logrus.Logger, cookies *helpers.CookieManager) *AuthHandler {
	return &AuthHandler{Svc: svc, JWT: jwt, Logger: logger, Cookies: cookies}
}

// sendToken issues the session JWT as both a cookie and a body field.
func (h *AuthHandler) sendToken(c *gin.Context, status int, u *entity.User) {
	token, exp, err := h.JWT.Generate(u.ID.Hex(), u.Role)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.Cookies.SetToken(c, token, exp)
	c.JSON(status, gin.H{"success": true, "token": token, "user": u})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req app.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, u)
}

type googleSignInRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Image string `json:"image" binding:"omitempty"`
}

func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req googleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.GoogleSignIn(c.Request.Context(), req.Name, req.Email, req.Image)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Data(c, http.StatusOK, gin.H{})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Error(c, http.StatusUnauthorized, "not authorized to access this route")
		return
	}
	response.Keyed(c, http.StatusOK, "user", u)
}

func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	var req app.UpdateDetailsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.UpdateDetails(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	response.Keyed(c, http.StatusOK, "user", u)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.UpdatePassword(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, "email sent")
}

func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	if err := h.Svc.ValidateResetToken(c.Request.Context(), c.Param("resettoken")); err != nil {
		respondErr(c, err)
		return
	}
	response.Data(c, http.StatusOK, "token valid")
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.Message(err))
		return
	}
	u, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("resettoken"), req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u)
}
