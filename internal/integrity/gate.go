// Package integrity is the deduplication gate between the content source and
// storage. It is the sole barrier against duplicate natural keys; it runs
// before any post insert but is not itself transactional, so callers still
// handle a late write race via the unique constraint.
package integrity

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// KeySource answers which of the given submission ids have ever been seen.
// The store implements it over the seen ledger, so keys stay rejected even
// after retention removed their rows.
type KeySource interface {
	SeenSubmissionIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}

// FilterNew returns the candidate keys not already known to src, in first
// occurrence order. In-batch duplicates collapse to one. Comparison is exact
// string equality. An empty candidate set short-circuits without a storage
// round-trip.
func FilterNew(ctx context.Context, candidates []string, src KeySource) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	unique := make([]string, 0, len(candidates))
	inBatch := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		if _, ok := inBatch[id]; ok {
			continue
		}
		inBatch[id] = struct{}{}
		unique = append(unique, id)
	}

	seen, err := src.SeenSubmissionIDs(ctx, unique)
	if err != nil {
		return nil, eris.Wrap(err, "integrity: query seen keys")
	}

	fresh := make([]string, 0, len(unique))
	for _, id := range unique {
		if _, ok := seen[id]; !ok {
			fresh = append(fresh, id)
		}
	}

	zap.L().Debug("integrity gate filtered batch",
		zap.Int("candidates", len(candidates)),
		zap.Int("already_seen", len(unique)-len(fresh)),
		zap.Int("new", len(fresh)),
	)
	return fresh, nil
}
