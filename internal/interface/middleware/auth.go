package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// Protect validates the session token from the "token" cookie or the
// Authorization bearer header, loads the account, and sets "user" and
// "userID" in the Gin context.
func Protect(users repo.UserRepository, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "not authorized to access this route")
			c.Abort()
			return
		}
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "not authorized to access this route")
			c.Abort()
			return
		}
		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "not authorized to access this route")
			c.Abort()
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID.Hex())
		c.Next()
	}
}

// Authorize allows only the listed roles through. Must run after Protect.
func Authorize(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		role := currentRole(c)
		if !allowed[role] {
			response.Error(c, http.StatusForbidden, "user role '"+role+"' is not authorized to access this route")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account Protect stored on the context, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(helpers.CookieName); err == nil && cookie != "" && cookie != "none" {
		return cookie
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

func currentRole(c *gin.Context) string {
	u := CurrentUser(c)
	if u == nil {
		return ""
	}
	return u.Role
}
