package repository

import (
	"context"

	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/domain"
	userdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

// Repository stores tenants. Lookups of an unknown ID return (nil, nil).
type Repository interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error)
	CreateOrganization(ctx context.Context, o *domain.Org) error
	// ProvisionWithAdmin upserts u and, unless u already has a membership, inserts o with m as
	// its ADMIN, all in one transaction. It returns the user's newest membership afterwards.
	ProvisionWithAdmin(ctx context.Context, u *userdomain.User, o *domain.Org, m *membershipdomain.Membership) (*membershipdomain.Membership, error)
}
