// Package retention retires curated data: posts whose submission ids appear
// in curated_items are deleted (comments and sentiments follow by cascade)
// and the worklist is cleared, in one transaction.
package retention

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rocksoncodes/market-scout/internal/store"
)

// Service runs the cleanup job.
type Service struct {
	store store.Store
}

// NewService creates the retention service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Cleanup deletes every curated post and clears the curated_items worklist.
// Returns the number of posts deleted. An empty worklist is a logged no-op.
// The seen ledger is untouched, so deleted submission ids stay ineligible for
// re-ingestion.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	ids, err := s.store.CuratedSubmissionIDs(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "retention: query curated items")
	}
	if len(ids) == 0 {
		zap.L().Info("retention: nothing to clean up")
		return 0, nil
	}

	var deleted int
	err = s.store.InTx(ctx, func(tx store.Tx) error {
		n, err := tx.DeletePostsBySubmissionIDs(ctx, ids)
		if err != nil {
			return err
		}
		deleted = n
		return tx.DeleteAllCuratedItems(ctx)
	})
	if err != nil {
		return 0, eris.Wrap(err, "retention: delete curated data")
	}

	zap.L().Info("retention cleanup complete",
		zap.Int("curated_items", len(ids)),
		zap.Int("posts_deleted", deleted),
	)
	return deleted, nil
}
