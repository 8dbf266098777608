// Package sessions declares the repository contract for the session
// registry: refresh-session rows keyed by opaque token.
package sessions

import (
	"context"
	"time"

	"github.com/avoropay/finsync/internal/server/models"
)

type Repository interface {
	// Create stores a new session for userID with an expiry of now+validity.
	Create(ctx context.Context, userID, token, deviceID string, validity time.Duration) error

	// FindByToken looks up a session by its opaque token value.
	// Returns common.ErrNotFound when the token does not resolve.
	FindByToken(ctx context.Context, token string) (*models.Session, error)

	// FindByUser returns all sessions for a user.
	FindByUser(ctx context.Context, userID string) ([]*models.Session, error)

	// Rotate replaces the session's token value in place and extends its
	// expiry to now+validity. The old token stops resolving immediately.
	Rotate(ctx context.Context, oldToken, newToken string, validity time.Duration) error

	// DeleteByToken removes a session by token. Deleting a non-existent
	// token is not an error.
	DeleteByToken(ctx context.Context, token string) error

	// TrimOverCap deletes every session for userID beyond the cap
	// latest-expiring ones. LRU-by-expiry: a freshly refreshed session has
	// the furthest expiry and is always retained over one nearing expiry.
	TrimOverCap(ctx context.Context, userID string, cap int) error
}
