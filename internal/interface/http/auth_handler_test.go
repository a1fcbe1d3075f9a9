package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	handlers "github.com/devtrail/bootcamp-api/internal/interface/http"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/query"
	"github.com/devtrail/bootcamp-api/pkg/validation"
)

// memUsers is a tiny in-memory UserRepository for handler tests.
type memUsers struct {
	users map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	cp := *u
	m.users[u.ID.Hex()] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			cp.Password = ""
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByEmailWithPassword(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByResetToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	for _, u := range m.users {
		if u.ResetPasswordToken == hash && u.ResetPasswordExpire.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) UpdateFields(_ context.Context, id string, fields map[string]any) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "password":
			u.Password = v.(string)
		}
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memUsers) List(context.Context, query.ListParams) (query.ListResult, error) {
	return query.ListResult{}, nil
}

type nopMailer struct{}

func (nopMailer) Send(context.Context, string, string, string, string) error { return nil }

func authRouter(t *testing.T, users *memUsers) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := app.NewAuthService(users, nopMailer{}, nil, logger, "https://example.com", "DevTrail")
	h := handlers.NewAuthHandler(svc, helpers.NewJWTManager("secret", time.Hour), logger, helpers.NewCookie("", false))

	r := gin.New()
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)
	r.GET("/api/v1/auth/logout", h.Logout)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	r := authRouter(t, newMemUsers())

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", `{"name":"John","email":"john@example.com","password":"123456"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "john@example.com", body.User.Email)
	assert.Equal(t, entity.RoleUser, body.User.Role)

	cookie := sessionCookie(t, w)
	assert.Equal(t, body.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAuthHandler_Register_BadPayload(t *testing.T) {
	r := authRouter(t, newMemUsers())

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", `{"name":"John","email":"nope","password":"123456"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "email")
}

func TestAuthHandler_Login(t *testing.T) {
	users := newMemUsers()
	r := authRouter(t, users)

	w := doJSON(r, http.MethodPost, "/api/v1/auth/register", `{"name":"John","email":"john@example.com","password":"123456"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"email":"john@example.com","password":"123456"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = doJSON(r, http.MethodPost, "/api/v1/auth/login", `{"email":"john@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestAuthHandler_Logout(t *testing.T) {
	r := authRouter(t, newMemUsers())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.Equal(t, "none", cookie.Value)
	assert.LessOrEqual(t, cookie.MaxAge, 10)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}
