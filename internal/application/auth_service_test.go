package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/devtrail/bootcamp-api/internal/application"
	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/mailer/templates"
)

func newAuthService(users *fakeUserRepo, mg *mailRecorder, queue *queueRecorder) *app.AuthService {
	return app.NewAuthService(users, mg, queue, newTestLogger(), "https://example.com", "DevTrail")
}

func seedUser(t *testing.T, users *fakeUserRepo, name, email, password, role string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{Name: name, Email: email, Password: hash, Role: role}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestAuthService_Register(t *testing.T) {
	users := newFakeUserRepo()
	queue := &queueRecorder{}
	svc := newAuthService(users, &mailRecorder{}, queue)

	u, err := svc.Register(context.Background(), app.RegisterInput{
		Name:     "John Doe",
		Email:    "john@example.com",
		Password: "123456",
		Role:     "publisher",
	})
	require.NoError(t, err)

	assert.Empty(t, u.Password, "hash must not leak out of the service")
	assert.Equal(t, entity.RolePublisher, u.Role)

	stored := users.stored(u.ID.Hex())
	require.NotNil(t, stored)
	assert.NotEqual(t, "123456", stored.Password)
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "123456"))

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "john@example.com", queue.jobs[0].To)
	assert.Equal(t, templates.Welcome, queue.jobs[0].Template)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})
	seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	_, err := svc.Register(context.Background(), app.RegisterInput{
		Name:     "Another John",
		Email:    "john@example.com",
		Password: "123456",
	})
	assert.ErrorIs(t, err, app.ErrConflict)
}

func TestAuthService_GoogleSignIn(t *testing.T) {
	users := newFakeUserRepo()
	queue := &queueRecorder{}
	svc := newAuthService(users, &mailRecorder{}, queue)

	u, err := svc.GoogleSignIn(context.Background(), "Jane", "jane@gmail.com", "https://lh3.example.com/jane.png")
	require.NoError(t, err)
	assert.True(t, u.IsThirdPartySignIn)
	assert.Equal(t, "https://lh3.example.com/jane.png", u.Image)
	assert.Len(t, queue.jobs, 1)

	// second sign-in resolves the existing account, no second welcome email
	again, err := svc.GoogleSignIn(context.Background(), "Jane", "jane@gmail.com", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "https://lh3.example.com/jane.png", again.Image, "an empty image leaves the stored one alone")
	assert.Len(t, queue.jobs, 1)
}

func TestAuthService_GoogleSignIn_RefreshesImage(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})

	u, err := svc.GoogleSignIn(context.Background(), "Jane", "jane@gmail.com", "https://lh3.example.com/old.png")
	require.NoError(t, err)

	again, err := svc.GoogleSignIn(context.Background(), "Jane", "jane@gmail.com", "https://lh3.example.com/new.png")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, "https://lh3.example.com/new.png", again.Image)
	assert.Equal(t, "https://lh3.example.com/new.png", users.stored(u.ID.Hex()).Image)
}

func TestAuthService_Login(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})
	seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	u, err := svc.Login(context.Background(), "john@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Empty(t, u.Password)

	_, err = svc.Login(context.Background(), "john@example.com", "wrong")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "123456")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_Login_ThirdPartyAccountHasNoPassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})

	_, err := svc.GoogleSignIn(context.Background(), "Jane", "jane@gmail.com", "")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "jane@gmail.com", "")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestAuthService_UpdateDetails(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})
	u := seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	_, err := svc.UpdateDetails(context.Background(), u.ID.Hex(), app.UpdateDetailsInput{})
	assert.ErrorIs(t, err, app.ErrValidation)

	updated, err := svc.UpdateDetails(context.Background(), u.ID.Hex(), app.UpdateDetailsInput{Name: "Johnny"})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)
	assert.Equal(t, "john@example.com", updated.Email)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})
	u := seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	_, err := svc.UpdatePassword(context.Background(), u.ID.Hex(), "wrong", "654321")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	_, err = svc.UpdatePassword(context.Background(), u.ID.Hex(), "123456", "654321")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "john@example.com", "654321")
	assert.NoError(t, err)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	users := newFakeUserRepo()
	mg := &mailRecorder{}
	svc := newAuthService(users, mg, &queueRecorder{})
	u := seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	require.NoError(t, svc.ForgotPassword(context.Background(), "john@example.com"))

	stored := users.stored(u.ID.Hex())
	assert.Len(t, stored.ResetPasswordToken, 64, "token is stored as a sha256 hex digest")
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), stored.ResetPasswordExpire, time.Minute)

	require.Len(t, mg.sent, 1)
	assert.Equal(t, "john@example.com", mg.sent[0].to)
	assert.Contains(t, mg.sent[0].text, "https://example.com/resetpassword/")
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &mailRecorder{}, &queueRecorder{})
	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, app.ErrNotFound)
}

func TestAuthService_ForgotPassword_DeliveryFailureRollsBackToken(t *testing.T) {
	users := newFakeUserRepo()
	mg := &mailRecorder{err: assert.AnError}
	svc := newAuthService(users, mg, &queueRecorder{})
	u := seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	err := svc.ForgotPassword(context.Background(), "john@example.com")
	assert.ErrorIs(t, err, app.ErrUpstream)

	stored := users.stored(u.ID.Hex())
	assert.Empty(t, stored.ResetPasswordToken)
	assert.True(t, stored.ResetPasswordExpire.IsZero())
}

func TestAuthService_ResetPasswordFlow(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})
	u := seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	token, hash, err := helpers.NewResetToken()
	require.NoError(t, err)
	_, err = users.UpdateFields(context.Background(), u.ID.Hex(), map[string]any{
		"resetPasswordToken":  hash,
		"resetPasswordExpire": time.Now().UTC().Add(10 * time.Minute),
	})
	require.NoError(t, err)

	assert.NoError(t, svc.ValidateResetToken(context.Background(), token))
	assert.ErrorIs(t, svc.ValidateResetToken(context.Background(), "bogus"), app.ErrNotFound)

	_, err = svc.ResetPassword(context.Background(), token, "newpass")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "john@example.com", "newpass")
	assert.NoError(t, err)

	// the token is single use
	assert.ErrorIs(t, svc.ValidateResetToken(context.Background(), token), app.ErrNotFound)
}

func TestAuthService_ResetPassword_ExpiredToken(t *testing.T) {
	users := newFakeUserRepo()
	svc := newAuthService(users, &mailRecorder{}, &queueRecorder{})
	u := seedUser(t, users, "John", "john@example.com", "123456", entity.RoleUser)

	token, hash, err := helpers.NewResetToken()
	require.NoError(t, err)
	_, err = users.UpdateFields(context.Background(), u.ID.Hex(), map[string]any{
		"resetPasswordToken":  hash,
		"resetPasswordExpire": time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)

	_, err = svc.ResetPassword(context.Background(), token, "newpass")
	assert.ErrorIs(t, err, app.ErrNotFound)
}
