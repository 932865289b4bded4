package userinfra

import (
	"context"
	"database/sql"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/kernel"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresUserRepository is the Postgres implementation of UserRepository.
type PostgresUserRepository struct {
	db *sqlx.DB
}

// NewPostgresUserRepository creates the repository.
func NewPostgresUserRepository(db *sqlx.DB) user.UserRepository {
	return &PostgresUserRepository{db: db}
}

// FindByEmail looks a record up by its unique email.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := `SELECT id, email, full_name, is_active, created_at FROM users WHERE email = $1`
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrUserNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to find user by email", errx.TypeInternal)
	}
	return &u, nil
}

// Save inserts a record, updating the name/active flag on email conflict.
func (r *PostgresUserRepository) Save(ctx context.Context, u user.User) error {
	query := `
		INSERT INTO users (id, email, full_name, is_active, created_at)
		VALUES (:id, :email, :full_name, :is_active, :created_at)
		ON CONFLICT (email) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			is_active = EXCLUDED.is_active`

	_, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation on id
			return user.ErrEmailTaken().WithDetail("email", u.Email)
		}
		return errx.Wrap(err, "failed to save user", errx.TypeInternal).
			WithDetail("user_id", u.ID)
	}
	return nil
}

// List returns a page of records ordered by email.
func (r *PostgresUserRepository) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[user.User], error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return kernel.Paginated[user.User]{}, errx.Wrap(err, "failed to count users", errx.TypeInternal)
	}

	var items []user.User
	query := `SELECT id, email, full_name, is_active, created_at FROM users ORDER BY email LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &items, query, opts.PageSize, opts.Offset()); err != nil {
		return kernel.Paginated[user.User]{}, errx.Wrap(err, "failed to list users", errx.TypeInternal)
	}

	return kernel.NewPaginated(items, opts.Page, opts.PageSize, total), nil
}
