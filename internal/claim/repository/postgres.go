package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/domain"
)

const claimColumns = `id, org_id, claim_number, carrier, status, insured_name, loss_date, created_at`

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a claim repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListByOrg returns the org's claims, newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByOrg(ctx context.Context, orgID string, limit, offset int32) ([]*domain.Claim, error) {
	rows, err := r.db.QueryContext(ctx,
		`select `+claimColumns+` from claims where org_id=$1 order by created_at desc, id desc limit $2 offset $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByIDForOrg returns the claim only when it belongs to orgID; otherwise nil.
func (r *PostgresRepository) GetByIDForOrg(ctx context.Context, orgID, id string) (*domain.Claim, error) {
	return r.getOne(ctx, `select `+claimColumns+` from claims where id=$1 and org_id=$2`, id, orgID)
}

// GetByID returns the claim for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	return r.getOne(ctx, `select `+claimColumns+` from claims where id=$1`, id)
}

// Create persists the claim. The claim must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Claim) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`insert into claims(`+claimColumns+`) values($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.OrgID, c.ClaimNumber, c.Carrier, string(c.Status), c.InsuredName, nullTime(c), c.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Claim, error) {
	c, err := scanClaim(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(s rowScanner) (*domain.Claim, error) {
	var (
		c        domain.Claim
		status   string
		lossDate sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.OrgID, &c.ClaimNumber, &c.Carrier, &status, &c.InsuredName, &lossDate, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.Status(status)
	if lossDate.Valid {
		c.LossDate = lossDate.Time
	}
	return &c, nil
}

func nullTime(c *domain.Claim) sql.NullTime {
	return sql.NullTime{Time: c.LossDate, Valid: !c.LossDate.IsZero()}
}
