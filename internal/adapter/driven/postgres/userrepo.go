package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
	"github.com/ericfisherdev/codeconvert/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the PostgreSQL implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given pool.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. Returns driven.ErrUserExists if the email is taken.
func (r *UserRepo) Create(ctx context.Context, user model.User) error {
	const query = `INSERT INTO users (id, email, name, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Pool.Exec(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return driven.ErrUserExists
		}
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}

// GetByEmail returns the user with the given email, or driven.ErrUserNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id::text, email, name, password_hash, created_at FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.db.Pool.QueryRow(ctx, query, email))
}

// GetByID returns the user with the given id, or driven.ErrUserNotFound.
// Ids that are not valid UUIDs cannot match any row.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `SELECT id::text, email, name, password_hash, created_at FROM users WHERE id::text = $1`
	return scanUser(r.db.Pool.QueryRow(ctx, query, id))
}

// Ping verifies the pool can reach the database.
func (r *UserRepo) Ping(ctx context.Context) error {
	if err := r.db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, driven.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
