package repository

import (
	"context"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// BootcampRepository defines the storage operations for bootcamp documents.
type BootcampRepository interface {
	Create(ctx context.Context, b *entity.Bootcamp) error
	GetByID(ctx context.Context, id string) (*entity.Bootcamp, error)
	ListByOwner(ctx context.Context, userID string) ([]entity.Bootcamp, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.Bootcamp, error)
	// UpdateAggregates writes recomputed averageCost/averageRating values
	// without touching anything else.
	UpdateAggregates(ctx context.Context, id string, fields map[string]any) error
	// DeleteCascade removes the bootcamp and every course and review
	// referencing it, transactionally where the deployment supports it.
	DeleteCascade(ctx context.Context, id string) error
	// WithinRadius finds bootcamps whose location lies inside a sphere cap of
	// radius radians centered at (lng, lat).
	WithinRadius(ctx context.Context, lng, lat, radians float64) ([]entity.Bootcamp, error)
	List(ctx context.Context, params query.ListParams, populate *Populate) (query.ListResult, error)
}

// Populate describes a relation expansion applied to listed documents. When
// LocalField is set the referenced document is inlined under As; when
// ForeignField is set the referencing documents are gathered into an array.
type Populate struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Select       []string
}
