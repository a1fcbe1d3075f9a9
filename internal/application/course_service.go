package application

import (
	"context"
	"errors"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	repo "github.com/devtrail/bootcamp-api/internal/domain/repository"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// CourseService manages courses under a bootcamp. Writes enqueue an
// averageCost recomputation after they commit.
type CourseService struct {
	Courses   repo.CourseRepository
	Bootcamps repo.BootcampRepository
	Recompute *AggregateRecomputer
}

func NewCourseService(courses repo.CourseRepository, bootcamps repo.BootcampRepository, recompute *AggregateRecomputer) *CourseService {
	return &CourseService{Courses: courses, Bootcamps: bootcamps, Recompute: recompute}
}

type CourseInput struct {
	Title                string  `json:"title" binding:"required"`
	Description          string  `json:"description" binding:"required"`
	Weeks                int     `json:"weeks" binding:"required,min=1"`
	Tuition              float64 `json:"tuition" binding:"required,min=0"`
	MinimumSkill         string  `json:"minimumSkill" binding:"omitempty,oneof=Beginner Intermediate Amateur Expert"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

// Create adds a course to a bootcamp. Only the bootcamp's owner or an admin
// may publish under it.
func (s *CourseService) Create(ctx context.Context, actor *entity.User, bootcampID string, in CourseInput) (*entity.Course, error) {
	b, err := s.Bootcamps.GetByID(ctx, bootcampID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := requireOwner(actor, b.User.Hex()); err != nil {
		return nil, err
	}

	c := &entity.Course{
		Title:                in.Title,
		Description:          in.Description,
		Weeks:                in.Weeks,
		Tuition:              in.Tuition,
		MinimumSkill:         in.MinimumSkill,
		ScholarshipAvailable: in.ScholarshipAvailable,
		Bootcamp:             b.ID,
		User:                 actor.ID,
	}
	if err := s.Courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Recompute.EnqueueCost(bootcampID)
	return c, nil
}

// List runs the advanced query pipeline with the parent bootcamp inlined.
func (s *CourseService) List(ctx context.Context, params query.ListParams) (query.ListResult, error) {
	populate := &repo.Populate{
		From:       "bootcamps",
		LocalField: "bootcamp",
		As:         "bootcamp",
		Select:     []string{"name", "description"},
	}
	return s.Courses.List(ctx, params, populate)
}

func (s *CourseService) Get(ctx context.Context, id string) (*entity.Course, error) {
	c, err := s.Courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByBootcamp returns a bootcamp's courses without the reserved-parameter
// machinery.
func (s *CourseService) ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error) {
	if _, err := s.Bootcamps.GetByID(ctx, bootcampID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.Courses.ListByBootcamp(ctx, bootcampID)
}

type CourseUpdateInput struct {
	Title                string   `json:"title" binding:"omitempty"`
	Description          string   `json:"description" binding:"omitempty"`
	Weeks                int      `json:"weeks" binding:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" binding:"omitempty"`
	MinimumSkill         string   `json:"minimumSkill" binding:"omitempty,oneof=Beginner Intermediate Amateur Expert"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

// Update applies a partial update after the ownership check. A tuition change
// triggers an averageCost recomputation.
func (s *CourseService) Update(ctx context.Context, actor *entity.User, id string, in CourseUpdateInput) (*entity.Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actor, c.User.Hex()); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != "" {
		fields["title"] = in.Title
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Weeks > 0 {
		fields["weeks"] = in.Weeks
	}
	if in.Tuition != nil {
		fields["tuition"] = *in.Tuition
	}
	if in.MinimumSkill != "" {
		fields["minimumSkill"] = in.MinimumSkill
	}
	if in.ScholarshipAvailable != nil {
		fields["scholarshipAvailable"] = *in.ScholarshipAvailable
	}
	if len(fields) == 0 {
		return nil, ErrValidation
	}

	updated, err := s.Courses.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, changed := fields["tuition"]; changed {
		s.Recompute.EnqueueCost(c.Bootcamp.Hex())
	}
	return updated, nil
}

// Delete removes a course and recomputes the parent's averageCost.
func (s *CourseService) Delete(ctx context.Context, actor *entity.User, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := requireOwner(actor, c.User.Hex()); err != nil {
		return err
	}
	if err := s.Courses.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.Recompute.EnqueueCost(c.Bootcamp.Hex())
	return nil
}
