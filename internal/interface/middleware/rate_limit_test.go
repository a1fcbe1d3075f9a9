package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devtrail/bootcamp-api/internal/interface/middleware"
)

func limiterCtx(t *testing.T, remoteAddr, path string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, path, nil)
	c.Request.RemoteAddr = remoteAddr
	return c
}

func TestKeyByIP(t *testing.T) {
	t.Parallel()

	c := limiterCtx(t, "203.0.113.9:4321", "/api/v1/auth/login")
	assert.Equal(t, "rl:ip:203.0.113.9", middleware.KeyByIP()(c))
}

func TestKeyByIPAndPath(t *testing.T) {
	t.Parallel()

	c := limiterCtx(t, "203.0.113.9:4321", "/api/v1/auth/login")
	assert.Equal(t, "rl:path:/api/v1/auth/login:ip:203.0.113.9", middleware.KeyByIPAndPath()(c))
}

func TestKeyByUserID(t *testing.T) {
	t.Parallel()

	c := limiterCtx(t, "203.0.113.9:4321", "/api/v1/auth/updatePassword")
	assert.Equal(t, "rl:user:anon:ip:203.0.113.9", middleware.KeyByUserID()(c), "anonymous callers fall back to IP")

	c.Set(middleware.CtxUserIDKey, "abc123")
	assert.Equal(t, "rl:user:abc123", middleware.KeyByUserID()(c))
}

func TestAllowPrivateIP(t *testing.T) {
	t.Parallel()

	allow := middleware.AllowPrivateIP()
	cases := []struct {
		name   string
		remote string
		want   bool
	}{
		{"loopback", "127.0.0.1:9999", true},
		{"rfc1918", "192.168.1.20:9999", true},
		{"public", "203.0.113.9:9999", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := limiterCtx(t, tc.remote, "/health")
			assert.Equal(t, tc.want, allow(c))
		})
	}
}

func TestRateLimit_NoRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/ping", middleware.RateLimit(nil, 1, time.Minute, middleware.KeyByIP(), nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	}
}
