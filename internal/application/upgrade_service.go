package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/mailer"
	"github.com/devtrail/bootcamp-api/pkg/mailer/templates"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// UpgradeService handles publisher-role requests. A decision consumes the
// request: accept promotes the user and deletes it, reject just deletes it.
// The decision email is queued, never blocking the decision itself.
type UpgradeService struct {
	Requests   repo.UpgradeRequestRepository
	Users      repo.UserRepository
	EmailQueue EmailPublisher
	Logger     *logrus.Logger
	AppName    string
}

func NewUpgradeService(requests repo.UpgradeRequestRepository, users repo.UserRepository, queue EmailPublisher, logger *logrus.Logger, appName string) *UpgradeService {
	return &UpgradeService{
		Requests:   requests,
		Users:      users,
		EmailQueue: queue,
		Logger:     logger,
		AppName:    appName,
	}
}

// Submit files a publisher request for the caller. One pending request per
// user; a publisher or admin has nothing to request.
func (s *UpgradeService) Submit(ctx context.Context, actor *entity.User) (*entity.UpgradeRequest, error) {
	if actor.Role != entity.RoleUser {
		return nil, ErrConflict
	}
	req := &entity.UpgradeRequest{User: actor.ID}
	if err := s.Requests.Create(ctx, req); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return req, nil
}

// GetByUser returns a user's pending request.
func (s *UpgradeService) GetByUser(ctx context.Context, userID string) (*entity.UpgradeRequest, error) {
	reqs, err := s.Requests.ListByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, ErrNotFound
	}
	return &reqs[0], nil
}

// List runs the advanced query pipeline with the requesting user inlined.
func (s *UpgradeService) List(ctx context.Context, params query.ListParams) (query.ListResult, error) {
	populate := &repo.Populate{
		From:       "users",
		LocalField: "user",
		As:         "user",
		Select:     []string{"name", "email", "role"},
	}
	return s.Requests.List(ctx, params, populate)
}

// Accept promotes the requesting user to the requested role and consumes
// the request.
func (s *UpgradeService) Accept(ctx context.Context, id string) (*entity.User, error) {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u, err := s.Users.UpdateFields(ctx, req.User.Hex(), map[string]any{"role": req.Role})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.Requests.Delete(ctx, id); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	s.sendDecision(ctx, u, req.Role, "accepted")
	return u, nil
}

// Reject consumes the request without changing the user.
func (s *UpgradeService) Reject(ctx context.Context, id string) error {
	req, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := s.Requests.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if u, uerr := s.Users.GetByID(ctx, req.User.Hex()); uerr == nil {
		s.sendDecision(ctx, u, req.Role, "rejected")
	}
	return nil
}

func (s *UpgradeService) sendDecision(ctx context.Context, u *entity.User, role, decision string) {
	if s.EmailQueue == nil {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: templates.UpgradeResult,
		Data: templates.ToMap(templates.EmailData{
			Name:     u.Name,
			Email:    u.Email,
			AppName:  s.AppName,
			Role:     role,
			Decision: decision,
		}),
	}
	if err := s.EmailQueue.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).Warn("failed to enqueue upgrade decision email")
	}
}
