package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/domain"
)

var _ Repository = (*PostgresRepository)(nil)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`select id, email, name, created_at from users where id=$1`, id)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts the user, leaving an existing row with the same id untouched.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`insert into users(id, email, name, created_at) values($1,$2,$3,$4) on conflict (id) do nothing`,
		u.ID, u.Email, u.Name, u.CreatedAt,
	)
	return err
}
