package repository

import (
	"context"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// CourseRepository defines the storage operations for course documents.
type CourseRepository interface {
	Create(ctx context.Context, c *entity.Course) error
	GetByID(ctx context.Context, id string) (*entity.Course, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Course, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.Course, error)
	Delete(ctx context.Context, id string) error
	// AverageTuition aggregates the mean tuition across a bootcamp's courses.
	// found is false when the bootcamp has no courses.
	AverageTuition(ctx context.Context, bootcampID string) (avg float64, found bool, err error)
	List(ctx context.Context, params query.ListParams, populate *Populate) (query.ListResult, error)
}
