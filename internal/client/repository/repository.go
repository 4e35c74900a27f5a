package repository

import (
	"context"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/domain"
)

// Repository defines persistence for portal clients and their claim grants.
type Repository interface {
	GetClientByEmail(ctx context.Context, email string) (*domain.Client, error)
	CreateClient(ctx context.Context, c *domain.Client) error
	HasClaimAccess(ctx context.Context, email, claimID string) (bool, error)
	GrantClaimAccess(ctx context.Context, a *domain.ClaimAccess) error
}
