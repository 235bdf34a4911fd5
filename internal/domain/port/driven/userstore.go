package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/codeconvert/internal/domain/model"
)

// Sentinel errors returned by UserStore implementations.
var (
	// ErrUserNotFound indicates no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists indicates a user with the same email is already registered.
	ErrUserExists = errors.New("user already exists")
)

// UserStore defines the driven port for credential persistence.
// Emails are passed already normalized; implementations must still treat them
// case-insensitively for uniqueness.
type UserStore interface {
	// Create inserts the user. Returns ErrUserExists on a duplicate email.
	Create(ctx context.Context, user model.User) error

	// GetByEmail returns ErrUserNotFound when no user has that email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// GetByID returns ErrUserNotFound when no user has that id.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
