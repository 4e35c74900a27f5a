package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	membershipdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/domain"
	userdomain "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrganizationByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, name, status, created_at from organizations where id=$1`, id)
	var (
		o      domain.Org
		status string
	)
	if err := row.Scan(&o.ID, &o.Name, &status, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.Status(status)
	return &o, nil
}

// CreateOrganization persists the organization. The organization must have ID set.
func (r *PostgresRepository) CreateOrganization(ctx context.Context, o *domain.Org) error {
	if err := o.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`insert into organizations(id, name, status, created_at) values($1,$2,$3,$4)`,
		o.ID, o.Name, string(o.Status), o.CreatedAt,
	)
	return err
}

// ProvisionWithAdmin mirrors u into users, then creates o with m as its ADMIN unless the
// user already holds a membership. A per-user advisory lock serializes concurrent first
// requests; the loser gets the winner's membership back and creates nothing.
// The returned membership is the user's newest one after the transaction.
func (r *PostgresRepository) ProvisionWithAdmin(ctx context.Context, u *userdomain.User, o *domain.Org, m *membershipdomain.Membership) (*membershipdomain.Membership, error) {
	if u == nil || u.ID == "" || u.ID != m.UserID {
		return nil, errors.New("membership user does not match provisioned user")
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if m.OrgID != o.ID {
		return nil, errors.New("membership org does not match organization")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`insert into users(id, email, name, created_at) values($1,$2,$3,$4) on conflict (id) do nothing`,
		u.ID, u.Email, u.Name, u.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `select pg_advisory_xact_lock(hashtext($1))`, u.ID); err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	existing := &membershipdomain.Membership{}
	var role string
	err = tx.QueryRowContext(ctx,
		`select id, user_id, org_id, role, created_at from memberships where user_id=$1 order by created_at desc, id desc limit 1`,
		u.ID,
	).Scan(&existing.ID, &existing.UserID, &existing.OrgID, &role, &existing.CreatedAt)
	switch {
	case err == nil:
		existing.Role = membershipdomain.Role(role)
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("recheck memberships: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`insert into organizations(id, name, status, created_at) values($1,$2,$3,$4)`,
		o.ID, o.Name, string(o.Status), o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`insert into memberships(id, user_id, org_id, role, created_at) values($1,$2,$3,$4,$5)`,
		m.ID, m.UserID, m.OrgID, string(m.Role), m.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}
