package repository

import (
	"context"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
)

// Repository defines persistence for claims. Every pro-side read is keyed by an org id
// that must come from the caller's resolved membership.
type Repository interface {
	ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.Claim, error)
	GetByIDForOrg(ctx context.Context, orgID, id string) (*domain.Claim, error)
	// GetByID is for portal reads, after a claim grant has been checked.
	GetByID(ctx context.Context, id string) (*domain.Claim, error)
	Create(ctx context.Context, c *domain.Claim) error
}
