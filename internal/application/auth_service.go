package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/helpers"
	"github.com/devtrail/bootcamp-api/pkg/mailer"
	"github.com/devtrail/bootcamp-api/pkg/mailer/templates"
)

const resetTokenTTL = 10 * time.Minute

// EmailPublisher is the queue surface services publish email jobs through.
// helpers.RabbitPublisher satisfies it; tests swap in a recorder.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// MailSender is the synchronous delivery surface used for reset emails.
// mailer.Mailgun satisfies it.
type MailSender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// AuthService covers registration, sessions and the password lifecycle.
// Reset emails are sent synchronously so a delivery failure can roll the
// stored token back; the welcome email goes through the queue.
type AuthService struct {
	Users       repo.UserRepository
	Mailgun     MailSender
	EmailQueue  EmailPublisher
	Logger      *logrus.Logger
	FrontendURL string
	AppName     string
}

func NewAuthService(users repo.UserRepository, mg MailSender, queue EmailPublisher, logger *logrus.Logger, frontendURL, appName string) *AuthService {
	return &AuthService{
		Users:       users,
		Mailgun:     mg,
		EmailQueue:  queue,
		Logger:      logger,
		FrontendURL: frontendURL,
		AppName:     appName,
	}
}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher"`
}

// Register creates a new account. Everyone starts as "user" unless they ask
// for "publisher"; the admin role can only be granted by another admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		Password: hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.sendWelcome(ctx, u)
	u.Password = ""
	return u, nil
}

// GoogleSignIn signs a third-party user in, creating the account on first
// contact. Such accounts carry no password and can never log in with one.
// A non-empty image refreshes the stored profile picture on every sign-in.
func (s *AuthService) GoogleSignIn(ctx context.Context, name, email, image string) (*entity.User, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		if image != "" && image != u.Image {
			return s.Users.UpdateFields(ctx, u.ID.Hex(), map[string]any{"image": image})
		}
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	u = &entity.User{
		Name:               name,
		Email:              email,
		Image:              image,
		IsThirdPartySignIn: true,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.sendWelcome(ctx, u)
	return u, nil
}

// Login validates the credentials and returns the account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsThirdPartySignIn || u.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	u.Password = ""
	return u, nil
}

// Me returns the account behind a session.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateDetailsInput struct {
	Name  string `json:"name" binding:"omitempty"`
	Email string `json:"email" binding:"omitempty,email"`
}

// UpdateDetails changes the caller's own name and/or email.
func (s *AuthService) UpdateDetails(ctx context.Context, userID string, in UpdateDetailsInput) (*entity.User, error) {
	fields := map[string]any{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.Email != "" {
		fields["email"] = in.Email
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}
	u, err := s.Users.UpdateFields(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdatePassword changes the caller's password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	withPass, err := s.Users.GetByEmailWithPassword(ctx, u.Email)
	if err != nil {
		return nil, ErrNotFound
	}
	if !helpers.CompareHashAndPassword(withPass.Password, current) {
		return nil, ErrInvalidCredentials
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return nil, err
	}
	return s.Users.UpdateFields(ctx, userID, map[string]any{"password": hash})
}

// ForgotPassword issues a reset token and emails the reset link. The token is
// stored hashed; if the email cannot be delivered the token is rolled back so
// a stale token never lingers on the account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.Mailgun == nil {
		s.Logger.Warn("password reset requested but no mail sender is configured")
		return ErrUpstream
	}

	token, hash, err := helpers.NewResetToken()
	if err != nil {
		return err
	}
	expire := time.Now().UTC().Add(resetTokenTTL)
	if _, err := s.Users.UpdateFields(ctx, u.ID.Hex(), map[string]any{
		"resetPasswordToken":  hash,
		"resetPasswordExpire": expire,
	}); err != nil {
		return err
	}

	data := templates.EmailData{
		Name:          u.Name,
		Email:         u.Email,
		AppName:       s.AppName,
		ResetURL:      s.FrontendURL + "/resetpassword/" + token,
		ExpiresAtText: "in 10 minutes",
	}
	subject, text, html, err := templates.Render(templates.ResetPassword, data)
	if err == nil {
		err = s.Mailgun.Send(ctx, u.Email, subject, text, html)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Error("reset email failed, rolling back token")
		if _, rbErr := s.Users.UpdateFields(ctx, u.ID.Hex(), map[string]any{
			"resetPasswordToken":  nil,
			"resetPasswordExpire": nil,
		}); rbErr != nil {
			s.Logger.WithError(rbErr).Error("reset token rollback failed")
		}
		return ErrUpstream
	}
	return nil
}

// ValidateResetToken reports whether a plain reset token is live.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.Users.GetByResetToken(ctx, helpers.HashResetToken(token), time.Now().UTC())
	if err != nil {
		return ErrNotFound
	}
	return nil
}

// ResetPassword consumes a live reset token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (*entity.User, error) {
	u, err := s.Users.GetByResetToken(ctx, helpers.HashResetToken(token), time.Now().UTC())
	if err != nil {
		return nil, ErrNotFound
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.Users.UpdateFields(ctx, u.ID.Hex(), map[string]any{
		"password":            hash,
		"resetPasswordToken":  nil,
		"resetPasswordExpire": nil,
	})
}

func (s *AuthService) sendWelcome(ctx context.Context, u *entity.User) {
	if s.EmailQueue == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.Welcome,
		Data:     templates.ToMap(templates.EmailData{Name: u.Name, Email: u.Email, AppName: s.AppName}),
	}
	if err := s.EmailQueue.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).Warn("failed to enqueue welcome email")
	}
}
