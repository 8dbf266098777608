// Package transactions declares the repository contract for synchronized
// transaction records.
package transactions

import (
	"context"

	"github.com/avoropay/finsync/internal/server/models"
)

type Repository interface {
	// CreateOrUpdate upserts a record by id for one user. The pushed state
	// replaces the server's prior state unconditionally; tombstones arrive
	// as Deleted=true rows and are stored, never physically removed.
	CreateOrUpdate(ctx context.Context, tx *models.Transaction) error

	// SelectUpdated returns all records for userID with version > minVersion,
	// tombstones included.
	SelectUpdated(ctx context.Context, userID string, minVersion int64) ([]*models.Transaction, error)

	// SelectAll returns every live record for userID (tombstones excluded),
	// used by the thin-client endpoints that re-serve the full set.
	SelectAll(ctx context.Context, userID string) ([]*models.Transaction, error)

	// SumByCategory totals live record amounts for a category and month,
	// feeding the budget usage arithmetic. An empty categoryID sums all
	// categories.
	SumByCategory(ctx context.Context, userID, categoryID string, year, month int) (float64, error)
}
