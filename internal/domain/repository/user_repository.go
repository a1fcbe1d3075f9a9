package repository

import (
	"context"
	"time"

	"github.com/devtrail/bootcamp-api/internal/domain/entity"
	"github.com/devtrail/bootcamp-api/pkg/query"
)

// UserRepository defines the storage operations for user documents.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail returns the user without the password hash.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByEmailWithPassword includes the password hash, for credential checks.
	GetByEmailWithPassword(ctx context.Context, email string) (*entity.User, error)
	// GetByResetToken matches a hashed reset token whose expiry is after now.
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error)
	// UpdateFields applies a partial update and returns the fresh document.
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*entity.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params query.ListParams) (query.ListResult, error)
}
