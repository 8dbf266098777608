// Package sessions provides the PostgreSQL-backed session registry.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID, token, deviceID string, validity time.Duration) error {
	query := `
		INSERT INTO sessions (user_id, token, device_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, token, deviceID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT id, user_id, token, device_id, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`
	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&s.ID, &s.UserID, &s.Token, &s.DeviceID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) ([]*models.Session, error) {
	query := `
		SELECT id, user_id, token, device_id, expires_at, created_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY expires_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Session
	for rows.Next() {
		s := &models.Session{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Token, &s.DeviceID, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Rotate swaps the token value in place and pushes the expiry forward.
func (r *PostgresRepository) Rotate(ctx context.Context, oldToken, newToken string, validity time.Duration) error {
	query := `
		UPDATE sessions
		SET token = $2, expires_at = $3
		WHERE token = $1
	`
	res, err := r.db.ExecContext(ctx, query, oldToken, newToken, time.Now().Add(validity))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `
		DELETE FROM sessions
		WHERE token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// TrimOverCap keeps the cap latest-expiring sessions and deletes the rest.
// Tie-break on equal expiry is left to the database ordering.
func (r *PostgresRepository) TrimOverCap(ctx context.Context, userID string, cap int) error {
	query := `
		DELETE FROM sessions
		WHERE user_id = $1
		  AND token NOT IN (
			SELECT token FROM sessions
			WHERE user_id = $1
			ORDER BY expires_at DESC
			LIMIT $2
		  )
	`
	if _, err := r.db.ExecContext(ctx, query, userID, cap); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
