package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/domain"
)

const membershipColumns = `id, user_id, org_id, role, created_at`

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetMembershipByUserAndOrg returns the membership for the given user and org, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`select `+membershipColumns+` from memberships where user_id=$1 and org_id=$2`, userID, orgID)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// ListMembershipsByUser returns every membership the user holds, newest first.
// Ties on created_at are broken by id so the order is total.
func (r *PostgresRepository) ListMembershipsByUser(ctx context.Context, userID string) ([]*domain.Membership, error) {
	return r.list(ctx,
		`select `+membershipColumns+` from memberships where user_id=$1 order by created_at desc, id desc`, userID)
}

// ListMembershipsByOrg returns all memberships for the given org. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListMembershipsByOrg(ctx context.Context, orgID string) ([]*domain.Membership, error) {
	return r.list(ctx,
		`select `+membershipColumns+` from memberships where org_id=$1 order by created_at asc, id asc`, orgID)
}

// CreateMembership persists the membership to the database. The membership must have ID set.
func (r *PostgresRepository) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`insert into memberships(id, user_id, org_id, role, created_at) values($1,$2,$3,$4,$5)`,
		m.ID, m.UserID, m.OrgID, string(m.Role), m.CreatedAt,
	)
	return err
}

// UpdateRole sets the role of the user's membership in orgID and returns the updated row,
// or nil if the user is not a member of that org.
func (r *PostgresRepository) UpdateRole(ctx context.Context, userID, orgID string, role domain.Role) (*domain.Membership, error) {
	row := r.db.QueryRowContext(ctx,
		`update memberships set role=$3 where user_id=$1 and org_id=$2 returning `+membershipColumns,
		userID, orgID, string(role))
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Membership, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(s rowScanner) (*domain.Membership, error) {
	var (
		m    domain.Membership
		role string
	)
	if err := s.Scan(&m.ID, &m.UserID, &m.OrgID, &role, &m.CreatedAt); err != nil {
		return nil, err
	}
	parsed, ok := domain.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("membership %s: unknown role %q", m.ID, role)
	}
	m.Role = parsed
	return &m, nil
}
