package application

import (
	"context"
	"errors"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// ReviewService manages reviews under a bootcamp. One review per user per
// bootcamp; writes enqueue an averageRating recomputation after they commit.
type ReviewService struct {
	Reviews   repo.ReviewRepository
	Bootcamps repo.BootcampRepository
	Recompute *AggregateRecomputer
}

func NewReviewService(reviews repo.ReviewRepository, bootcamps repo.BootcampRepository, recompute *AggregateRecomputer) *ReviewService {
	return &ReviewService{Reviews: reviews, Bootcamps: bootcamps, Recompute: recompute}
}

type ReviewInput struct {
	Title  string  `json:"title" binding:"required,max=100"`
	Text   string  `json:"text" binding:"required"`
	Rating float64 `json:"rating" binding:"required,min=1,max=5"`
}

// Create adds a review to a bootcamp. A second review by the same user is
// rejected by the unique index.
func (s *ReviewService) Create(ctx context.Context, actor *entity.User, bootcampID string, in ReviewInput) (*entity.Review, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r := &entity.Review{
		Title:    in.Title,
		Text:     in.Text,
		Rating:   in.Rating,
		Bootcamp: b.ID,
		User:     actor.ID,
	}
	if err := s.Reviews.Create(ctx, r); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.Recompute.EnqueueRating(bootcampID)
	return r, nil
}

// List runs the advanced query pipeline with the parent bootcamp inlined.
func (s *ReviewService) List(ctx context.Context, params query.ListParams) (query.ListResult, error) {
	populate := &repo.Populate{
		From:       "bootcamps",
		LocalField: "bootcamp",
		As:         "bootcamp",
		Select:     []string{"name", "description"},
	}
	return s.Reviews.List(ctx, params, populate)
}

func (s *ReviewService) Get(ctx context.Context, id string) (*entity.Review, error) {
	r, err := s.Reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

// ListByBootcamp returns a bootcamp's reviews.
func (s *ReviewService) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error) {
	if _, err := s.Bootcamps.GetByID(ctx, bootcampID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Reviews.ListByBootcamp(ctx, bootcampID)
}

type ReviewUpdateInput struct {
	Title  string   `json:"title" binding:"omitempty,max=100"`
	Text   string   `json:"text" binding:"omitempty"`
	Rating *float64 `json:"rating" binding:"omitempty,min=1,max=5"`
}

// Update applies a partial update. Only the review's author or an admin may
// change it; a rating change triggers an averageRating recomputation.
func (s *ReviewService) Update(ctx context.Context, actor *entity.User, id string, in ReviewUpdateInput) (*entity.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, r.User.Hex()); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != "" {
		fields["title"] = in.Title
	}
	if in.Text != "" {
		fields["text"] = in.Text
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	updated, err := s.Reviews.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, changed := fields["rating"]; changed {
		s.Recompute.EnqueueRating(r.Bootcamp.Hex())
	}
	return updated, nil
}

// Delete removes a review and recomputes the parent's averageRating.
func (s *ReviewService) Delete(ctx context.Context, actor *entity.User, id string) error {
	r, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, r.User.Hex()); err != nil {
		return err
	}
	if err := s.Reviews.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.Recompute.EnqueueRating(r.Bootcamp.Hex())
	return nil
}
