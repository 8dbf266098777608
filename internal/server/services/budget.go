package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/avoropay/finsync/internal/server/repositories/repomanager"
)

// BudgetService manages monthly spending limits and computes usage against
// the synchronized transactions.
type BudgetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewBudgetService(db *sql.DB, m repomanager.RepositoryManager) *BudgetService {
	return &BudgetService{db: db, repomanager: m}
}

// List returns all budgets for a user.
func (s *BudgetService) List(ctx context.Context, userID string) ([]*models.Budget, error) {
	return s.repomanager.Budgets(s.db).FindByUser(ctx, userID)
}

// Set creates or replaces the budget for (category, month).
func (s *BudgetService) Set(ctx context.Context, userID, categoryID string, amount float64, year, month int) (*models.Budget, error) {
	if amount < 0 || month < 1 || month > 12 {
		return nil, common.ErrInvalidInput
	}
	return s.repomanager.Budgets(s.db).Upsert(ctx, &models.Budget{
		UserID:     userID,
		CategoryID: categoryID,
		Amount:     amount,
		Year:       year,
		Month:      month,
	})
}

// Update replaces an existing budget by id.
func (s *BudgetService) Update(ctx context.Context, b *models.Budget) error {
	if b.Amount < 0 || b.Month < 1 || b.Month > 12 {
		return common.ErrInvalidInput
	}
	return s.repomanager.Budgets(s.db).Update(ctx, b)
}

// Delete removes a budget by id.
func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	return s.repomanager.Budgets(s.db).Delete(ctx, userID, id)
}

// Usage reports whether the (category, month) budget is exceeded, by how
// much, and the usage rate. A missing budget reads as unlimited: never
// over, rate 0.
func (s *BudgetService) Usage(ctx context.Context, userID, categoryID string, year, month int) (*models.BudgetUsage, error) {
	budget, err := s.repomanager.Budgets(s.db).Find(ctx, userID, categoryID, year, month)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &models.BudgetUsage{}, nil
		}
		return nil, fmt.Errorf("error finding budget: %w", err)
	}

	spent, err := s.repomanager.Transactions(s.db).SumByCategory(ctx, userID, categoryID, year, month)
	if err != nil {
		return nil, fmt.Errorf("error summing transactions: %w", err)
	}

	usage := &models.BudgetUsage{Budget: budget.Amount, Spent: spent}
	if budget.Amount > 0 {
		usage.Rate = spent / budget.Amount
	}
	if spent > budget.Amount {
		usage.Over = true
		usage.OverAmount = spent - budget.Amount
	}
	return usage, nil
}
