package repository

import (
	"context"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

// Repository stores the local mirror of identity-provider users.
// GetByID returns (nil, nil) when the user has not been mirrored yet.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
