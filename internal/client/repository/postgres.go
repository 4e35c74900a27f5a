package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/domain"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a client repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetClientByEmail returns the client record for email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetClientByEmail(ctx context.Context, email string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, coalesce(user_id, ''), email, coalesce(org_id, ''), created_at from clients where email=$1`,
		domain.NormalizeEmail(email))
	var c domain.Client
	if err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.OrgID, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// CreateClient persists the client. The client must have ID set.
func (r *PostgresRepository) CreateClient(ctx context.Context, c *domain.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`insert into clients(id, user_id, email, org_id, created_at) values($1,$2,$3,$4,$5) on conflict (email) do nothing`,
		c.ID, nullString(c.UserID), c.Email, nullString(c.OrgID), c.CreatedAt,
	)
	return err
}

// HasClaimAccess reports whether a grant row exists for (email, claimID).
func (r *PostgresRepository) HasClaimAccess(ctx context.Context, email, claimID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`select exists(select 1 from claim_access where email=$1 and claim_id=$2)`,
		domain.NormalizeEmail(email), claimID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GrantClaimAccess inserts a grant. Granting twice is a no-op.
func (r *PostgresRepository) GrantClaimAccess(ctx context.Context, a *domain.ClaimAccess) error {
	if a.Email == "" || a.ClaimID == "" {
		return errors.New("email and claim id are required")
	}
	_, err := r.db.ExecContext(ctx,
		`insert into claim_access(id, email, claim_id, created_at) values($1,$2,$3,$4) on conflict (email, claim_id) do nothing`,
		a.ID, domain.NormalizeEmail(a.Email), a.ClaimID, a.CreatedAt,
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
