package repository

import (
	"context"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/domain"
)

// Repository stores audit entries. Entries are append-only; there is no update or delete.
type Repository interface {
	// ListByOrg pages through one tenant's entries, newest first.
	ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.AuditLog, error)
	// Create appends a. The caller assigns ID and CreatedAt.
	Create(ctx context.Context, a *domain.AuditLog) error
}
