package repository

import (
	"context"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// ReviewRepository defines the storage operations for review documents.
type ReviewRepository interface {
	Create(ctx context.Context, r *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]entity.Review, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.Review, error)
	Delete(ctx context.Context, id string) error
	// AverageRating aggregates the mean rating across a bootcamp's reviews.
	// found is false when the bootcamp has no reviews.
	AverageRating(ctx context.Context, bootcampID string) (avg float64, found bool, err error)
	List(ctx context.Context, params query.ListParams, populate *Populate) (query.ListResult, error)
}
