// Package budgets provides PostgreSQL-backed budget storage.
package budgets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, b *models.Budget) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category_id, amount, year, month)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category_id, year, month)
		DO UPDATE SET amount = EXCLUDED.amount
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		b.UserID, b.CategoryID, b.Amount, b.Year, b.Month).Scan(&b.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) ([]*models.Budget, error) {
	query := `
		SELECT id, user_id, category_id, amount, year, month
		FROM budgets
		WHERE user_id = $1
		ORDER BY year, month
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Budget
	for rows.Next() {
		b := &models.Budget{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Year, &b.Month); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Find(ctx context.Context, userID, categoryID string, year, month int) (*models.Budget, error) {
	query := `
		SELECT id, user_id, category_id, amount, year, month
		FROM budgets
		WHERE user_id = $1 AND category_id = $2 AND year = $3 AND month = $4
	`
	b := &models.Budget{}
	err := r.db.QueryRowContext(ctx, query, userID, categoryID, year, month).
		Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &b.Year, &b.Month)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Update(ctx context.Context, b *models.Budget) error {
	query := `
		UPDATE budgets
		SET category_id = $3, amount = $4, year = $5, month = $6
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, b.ID, b.UserID, b.CategoryID, b.Amount, b.Year, b.Month)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return ensureOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM budgets
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return ensureOneRow(res)
}

func ensureOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
