package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/avoropay/finsync/internal/client/api"
	"github.com/avoropay/finsync/internal/client/models"
	"github.com/avoropay/finsync/internal/client/repositories/metadata"
	"github.com/avoropay/finsync/internal/client/repositories/transactions"
	"github.com/avoropay/finsync/internal/common"
)

// SyncSummary reports what a sync round did.
type SyncSummary struct {
	Pushed  int
	Pulled  int
	Version int64
}

// SyncService keeps the local transaction set and reconciles it with the
// server: push pending rows, then pull everything past the watermark.
type SyncService struct {
	client APIClient
	db     *sql.DB
}

func NewSyncService(client APIClient, db *sql.DB) *SyncService {
	return &SyncService{client: client, db: db}
}

func (s *SyncService) getTransactionRepo() transactions.Repository {
	return transactions.NewSQLiteRepository(s.db)
}

func (s *SyncService) getMetadataRepo() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// Add records a new transaction locally, pending until the next sync.
func (s *SyncService) Add(ctx context.Context, amount float64, category, date, memo string) (*models.Transaction, error) {
	tx := &models.Transaction{
		ID:       uuid.NewString(),
		Amount:   amount,
		Category: category,
		Date:     date,
		Memo:     memo,
		Pending:  true,
	}
	if err := s.getTransactionRepo().Upsert(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Delete tombstones a transaction locally; the next sync propagates it.
func (s *SyncService) Delete(ctx context.Context, id string) error {
	return s.getTransactionRepo().MarkDeleted(ctx, id)
}

// List returns the live local set, newest first.
func (s *SyncService) List(ctx context.Context) ([]*models.Transaction, error) {
	return s.getTransactionRepo().GetAll(ctx)
}

// Sync pushes pending rows, then pulls the delta past the saved watermark
// and applies it, tombstones included. Rows still pending locally are not
// overwritten by pulled data.
func (s *SyncService) Sync(ctx context.Context) (*SyncSummary, error) {
	txRepo := s.getTransactionRepo()
	summary := &SyncSummary{}

	pending, err := txRepo.GetAllPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect pending rows: %w", err)
	}

	if len(pending) > 0 {
		records := make([]api.Record, 0, len(pending))
		ids := make([]string, 0, len(pending))
		for _, tx := range pending {
			records = append(records, api.Record{
				ID:       tx.ID,
				Amount:   tx.Amount,
				Category: tx.Category,
				Date:     tx.Date,
				Memo:     tx.Memo,
				Deleted:  tx.Deleted,
			})
			ids = append(ids, tx.ID)
		}

		res, err := s.client.Push(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("push error: %w", err)
		}
		summary.Pushed = res.Applied

		if err := txRepo.ClearPending(ctx, ids); err != nil {
			return nil, err
		}
	}

	since, err := s.lastVersion(ctx)
	if err != nil {
		return nil, err
	}

	delta, err := s.client.Pull(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("pull error: %w", err)
	}

	for _, record := range delta.Records {
		applied, err := s.apply(ctx, record)
		if err != nil {
			return nil, err
		}
		if applied {
			summary.Pulled++
		}
	}

	if err := s.setLastVersion(ctx, delta.Version); err != nil {
		return nil, err
	}
	summary.Version = delta.Version
	return summary, nil
}

func (s *SyncService) apply(ctx context.Context, record api.Record) (bool, error) {
	txRepo := s.getTransactionRepo()

	local, err := txRepo.GetByID(ctx, record.ID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return false, err
	}
	if local != nil && local.Pending {
		// changed again since the push; keep the local edit
		return false, nil
	}

	err = txRepo.Upsert(ctx, &models.Transaction{
		ID:       record.ID,
		Amount:   record.Amount,
		Category: record.Category,
		Date:     record.Date,
		Memo:     record.Memo,
		Deleted:  record.Deleted,
		Version:  record.Version,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SyncService) lastVersion(ctx context.Context) (int64, error) {
	raw, err := s.getMetadataRepo().Get(ctx, keyLastVersion)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt watermark %q: %w", raw, err)
	}
	return v, nil
}

func (s *SyncService) setLastVersion(ctx context.Context, v int64) error {
	return s.getMetadataRepo().Set(ctx, keyLastVersion, strconv.FormatInt(v, 10))
}
