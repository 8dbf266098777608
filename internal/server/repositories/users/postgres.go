// Package users provides the PostgreSQL-backed credential store.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, password_hash, recovery_key)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.RecoveryKey).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrUsernameTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, recovery_key, sync_version, created_at
		FROM users
		WHERE username = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, recovery_key, sync_version, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash,
		&user.RecoveryKey, &user.SyncVersion, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// UpdateCredentials replaces the password hash and recovery key together.
func (r *PostgresRepository) UpdateCredentials(ctx context.Context, id string, passwordHash string, recoveryKey string) error {
	query := `
		UPDATE users
		SET password_hash = $2, recovery_key = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, recoveryKey)
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

// Lock acquires the user's row lock for the surrounding transaction.
func (r *PostgresRepository) Lock(ctx context.Context, id string) error {
	query := `
		SELECT id FROM users WHERE id = $1 FOR UPDATE
	`
	var got string
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IncrementSyncVersion bumps the per-user watermark and returns the new value.
func (r *PostgresRepository) IncrementSyncVersion(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE users SET sync_version = sync_version + 1
		WHERE id = $1
		RETURNING sync_version
	`
	var version int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}

func (r *PostgresRepository) GetSyncVersion(ctx context.Context, id string) (int64, error) {
	query := `
		SELECT sync_version FROM users WHERE id = $1
	`
	var version int64
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return version, nil
}
