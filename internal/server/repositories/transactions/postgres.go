// Package transactions provides PostgreSQL-backed storage for synchronized
// transaction records and the sync delta queries.
package transactions

import (
	"context"
	"fmt"

	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/models"
)

// PostgresRepository implements transaction storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrUpdate upserts a record by (user_id, id). Identities are scoped
// per user, so two users pushing the same client-generated id never collide.
func (r *PostgresRepository) CreateOrUpdate(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, category, tx_date, memo, deleted, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, id)
		DO UPDATE SET
			amount = EXCLUDED.amount,
			category = EXCLUDED.category,
			tx_date = EXCLUDED.tx_date,
			memo = EXCLUDED.memo,
			deleted = EXCLUDED.deleted,
			version = EXCLUDED.version;
	`
	res, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.Amount, t.Category, t.Date, t.Memo, t.Deleted, t.Version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// SelectUpdated returns all records for userID with version > minVersion,
// tombstones included, so deletions propagate through the delta.
func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, minVersion int64) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, amount, category, tx_date, memo, deleted, version
		FROM transactions
		WHERE user_id = $1 AND version > $2
		ORDER BY version
	`
	return r.selectMany(ctx, query, userID, minVersion)
}

// SelectAll returns the user's live records (tombstones excluded).
func (r *PostgresRepository) SelectAll(ctx context.Context, userID string) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, amount, category, tx_date, memo, deleted, version
		FROM transactions
		WHERE user_id = $1 AND NOT deleted
		ORDER BY tx_date
	`
	return r.selectMany(ctx, query, userID)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select transactions: %w", err)
	}
	defer rows.Close()

	var result []*models.Transaction
	for rows.Next() {
		var item models.Transaction
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Amount, &item.Category,
			&item.Date, &item.Memo, &item.Deleted, &item.Version,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SumByCategory totals live record amounts for one month. tx_date is stored
// as an ISO yyyy-mm-dd string, so the month filter is a prefix match.
func (r *PostgresRepository) SumByCategory(ctx context.Context, userID, categoryID string, year, month int) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND NOT deleted
		  AND ($2 = '' OR category = $2)
		  AND substr(tx_date, 1, 7) = $3
	`
	prefix := fmt.Sprintf("%04d-%02d", year, month)
	var sum float64
	if err := r.db.QueryRowContext(ctx, query, userID, categoryID, prefix).Scan(&sum); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return sum, nil
}
