// Package users declares the server-side repository contract for the
// credential store: account rows with password hash, recovery key, and the
// per-user sync version counter.
package users

import (
	"context"

	"github.com/avoropay/finsync/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A username collision returns
	// common.ErrUsernameTaken; the unique index makes the check atomic
	// against concurrent registrations.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username or
	// common.ErrNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByID returns the user with the given id or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateCredentials replaces the password hash and recovery key in one
	// statement, so the old recovery key can never survive a reset.
	UpdateCredentials(ctx context.Context, id string, passwordHash string, recoveryKey string) error

	// Lock takes the user's row lock for the duration of the surrounding
	// transaction, serializing concurrent logins/refreshes for one user.
	Lock(ctx context.Context, id string) error

	// IncrementSyncVersion bumps the user's watermark and returns the new
	// value. The row lock it takes serializes concurrent pushes.
	IncrementSyncVersion(ctx context.Context, id string) (int64, error)

	// GetSyncVersion returns the user's current watermark.
	GetSyncVersion(ctx context.Context, id string) (int64, error)
}
