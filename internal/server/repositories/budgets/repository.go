// Package budgets declares the repository contract for monthly budgets.
package budgets

import (
	"context"

	"github.com/avoropay/finsync/internal/server/models"
)

type Repository interface {
	// Upsert creates the budget for (user, category, month) or replaces its
	// amount.
	Upsert(ctx context.Context, b *models.Budget) (*models.Budget, error)

	// FindByUser returns all budgets for a user.
	FindByUser(ctx context.Context, userID string) ([]*models.Budget, error)

	// Find returns the budget for (user, category, month) or common.ErrNotFound.
	Find(ctx context.Context, userID, categoryID string, year, month int) (*models.Budget, error)

	// Update replaces a budget by id, scoped to the owning user.
	Update(ctx context.Context, b *models.Budget) error

	// Delete removes a budget by id, scoped to the owning user.
	Delete(ctx context.Context, userID, id string) error
}
