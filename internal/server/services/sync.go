package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avoropay/finsync/internal/common"
	"github.com/avoropay/finsync/internal/dbx"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/avoropay/finsync/internal/server/repositories/repomanager"
)

// SyncService reconciles a client's locally-modified transaction set with
// the server's authoritative copy. Each user has a monotonically increasing
// version counter; every accepted write is stamped with a fresh value, so a
// client can ask for "everything after watermark V" and get exactly the
// records touched since its last poll.
type SyncService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewSyncService constructs a SyncService over the given pool and manager.
func NewSyncService(db *sql.DB, m repomanager.RepositoryManager) *SyncService {
	return &SyncService{db: db, repomanager: m}
}

// Delta is the result of a Pull: the changed records (tombstones included)
// and the user's current watermark. Pulling again with Version yields an
// empty delta until something changes.
type Delta struct {
	Records []*models.Transaction
	Version int64
}

// PushResult summarizes an applied Push.
type PushResult struct {
	Applied int
	Version int64
}

// Pull returns every record for userID stamped after sinceVersion, plus the
// current watermark. sinceVersion = 0 bootstraps the full set.
//
// The watermark is read before the records: a push that lands between the
// two reads may be delivered with a watermark that does not yet cover it,
// which only means the next pull re-delivers it (the client upsert is
// idempotent). Reading in the other order could return a watermark covering
// records the select never saw, and those would be skipped forever.
func (s *SyncService) Pull(ctx context.Context, userID string, sinceVersion int64) (*Delta, error) {
	version, err := s.repomanager.Users(s.db).GetSyncVersion(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error reading sync version: %w", err)
	}
	records, err := s.repomanager.Transactions(s.db).SelectUpdated(ctx, userID, sinceVersion)
	if err != nil {
		return nil, fmt.Errorf("error selecting updated transactions: %w", err)
	}
	return &Delta{Records: records, Version: version}, nil
}

// Push applies the client's records in one transaction: unknown identities
// are inserted, known ones overwritten (the push always wins — the client
// has authority over anything it explicitly pushes), deletions arrive as
// tombstones. Each accepted record gets the next watermark value; the
// counter update takes the user's row lock, so concurrent pushes for one
// user serialize and a concurrent Pull never observes a half-applied batch.
func (s *SyncService) Push(ctx context.Context, userID string, incoming []*models.Transaction) (*PushResult, error) {
	for _, record := range incoming {
		if record == nil || record.ID == "" {
			return nil, fmt.Errorf("record without id: %w", common.ErrInvalidInput)
		}
	}

	result := &PushResult{}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersTx := s.repomanager.Users(tx)
		txnsTx := s.repomanager.Transactions(tx)

		for _, record := range incoming {
			version, err := usersTx.IncrementSyncVersion(ctx, userID)
			if err != nil {
				return err
			}

			record.UserID = userID
			record.Version = version

			if err := txnsTx.CreateOrUpdate(ctx, record); err != nil {
				return err
			}

			result.Applied++
			result.Version = version
		}

		if len(incoming) == 0 {
			version, err := usersTx.GetSyncVersion(ctx, userID)
			if err != nil {
				return err
			}
			result.Version = version
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error applying push: %w", err)
	}
	return result, nil
}

// ListAll returns the user's live transactions, for thin clients that
// re-fetch the full set instead of tracking deltas.
func (s *SyncService) ListAll(ctx context.Context, userID string) ([]*models.Transaction, error) {
	records, err := s.repomanager.Transactions(s.db).SelectAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error selecting transactions: %w", err)
	}
	return records, nil
}
