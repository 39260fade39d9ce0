package store

import (
	"context"

	"github.com/phrazzld/press-api/internal/domain"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	// Create saves a new user, setting user.ID.
	// Returns ErrLoginExists if the login is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user. Returns ErrUserNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByLogin retrieves a user by login name.
	// Returns ErrUserNotFound if the user does not exist.
	GetByLogin(ctx context.Context, login string) (*domain.User, error)

	// AddApplicationPassword stores a hashed application password for a user.
	AddApplicationPassword(ctx context.Context, pw *domain.ApplicationPassword) error

	// ApplicationPasswords lists the application passwords of a user.
	ApplicationPasswords(ctx context.Context, userID int64) ([]*domain.ApplicationPassword, error)
}
