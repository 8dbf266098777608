package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoropay/finsync/internal/client/models"
	"github.com/avoropay/finsync/internal/common"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, amount, category, tx_date, memo, deleted, version, pending)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			category = excluded.category,
			tx_date = excluded.tx_date,
			memo = excluded.memo,
			deleted = excluded.deleted,
			version = excluded.version,
			pending = excluded.pending
	`
	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.Amount, tx.Category, tx.Date, tx.Memo, tx.Deleted, tx.Version, tx.Pending)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `
		SELECT id, amount, category, tx_date, memo, deleted, version, pending
		FROM transactions WHERE id = ?
	`
	tx := &models.Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.Amount, &tx.Category, &tx.Date, &tx.Memo, &tx.Deleted, &tx.Version, &tx.Pending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Transaction, error) {
	query := `
		SELECT id, amount, category, tx_date, memo, deleted, version, pending
		FROM transactions WHERE deleted = 0 ORDER BY tx_date DESC, id
	`
	return r.selectMany(ctx, query)
}

func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]*models.Transaction, error) {
	query := `
		SELECT id, amount, category, tx_date, memo, deleted, version, pending
		FROM transactions WHERE pending = 1 ORDER BY tx_date, id
	`
	return r.selectMany(ctx, query)
}

func (r *SQLiteRepository) selectMany(ctx context.Context, query string) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	result := []*models.Transaction{}
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(&tx.ID, &tx.Amount, &tx.Category, &tx.Date, &tx.Memo, &tx.Deleted, &tx.Version, &tx.Pending)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string) error {
	query := `UPDATE transactions SET deleted = 1, pending = 1 WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ClearPending(ctx context.Context, ids []string) error {
	query := `UPDATE transactions SET pending = 0 WHERE id = ?`
	for _, id := range ids {
		if _, err := r.db.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to clear pending flag: %w", err)
		}
	}
	return nil
}
