// Package transactions stores the local copy of the transaction set,
// including rows waiting to be pushed to the server.
package transactions

import (
	"context"

	"github.com/avoropay/finsync/internal/client/models"
)

// Repository describes the local transaction store.
type Repository interface {
	// Upsert inserts a row or replaces it by id.
	Upsert(ctx context.Context, tx *models.Transaction) error

	// GetByID returns a row by id, deleted or not.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)

	// GetAll returns all live rows (tombstones excluded), newest date first.
	GetAll(ctx context.Context) ([]*models.Transaction, error)

	// GetAllPending returns rows changed locally and not yet pushed.
	GetAllPending(ctx context.Context) ([]*models.Transaction, error)

	// MarkDeleted turns a row into a pending tombstone.
	MarkDeleted(ctx context.Context, id string) error

	// ClearPending drops the pending flag on the given ids after a
	// successful push.
	ClearPending(ctx context.Context, ids []string) error
}
