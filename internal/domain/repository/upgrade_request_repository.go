package repository

import (
	"context"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// UpgradeRequestRepository defines the storage operations for role-upgrade
// requests.
type UpgradeRequestRepository interface {
	Create(ctx context.Context, r *entity.UpgradeRequest) error
	GetByID(ctx context.Context, id string) (*entity.UpgradeRequest, error)
	ListByUser(ctx context.Context, userID string) ([]entity.UpgradeRequest, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params query.ListParams, populate *Populate) (query.ListResult, error)
}
