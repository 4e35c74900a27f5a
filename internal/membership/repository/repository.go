package repository

import (
	"context"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
)

// Repository stores user-to-tenant memberships. Single-row lookups return (nil, nil) on miss.
type Repository interface {
	GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error)
	// ListMembershipsByUser orders by created_at desc, then id desc, so index 0 is the active tenant.
	ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error)
	ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error)
	CreateMembership(ctx context.Context, m *domain.Membership) error
	// UpdateRole returns the updated row, or nil when the user is not a member of orgID.
	UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error)
}
