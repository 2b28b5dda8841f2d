package leaderboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/quotakit/pkg/entitlement"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// StoreIndex computes ranks directly from the usage store with a full
// comparison against all other records. Read-committed is enough here: a rank
// from a slightly stale snapshot is acceptable, and the read never blocks
// concurrent writers.
type StoreIndex struct {
	resolver *entitlement.Resolver
	store    usage.Store
}

// NewStoreIndex returns an Index backed by the usage store.
// The resolver runs first on every access, like everywhere else: it both
// classifies the user and guarantees the record exists before scoring.
func NewStoreIndex(resolver *entitlement.Resolver, store usage.Store) *StoreIndex {
	if resolver == nil {
		panic("leaderboard: entitlement resolver is required")
	}
	if store == nil {
		panic("leaderboard: usage.Store is required")
	}
	return &StoreIndex{resolver: resolver, store: store}
}

func (i *StoreIndex) RecordScore(ctx context.Context, userID uuid.UUID, email string, score int64) (usage.ScoreResult, error) {
	if score < 0 {
		return usage.ScoreResult{}, usage.ErrInvalidScore
	}

	if _, _, err := i.resolver.Resolve(ctx, userID, email); err != nil {
		return usage.ScoreResult{}, err
	}

	return i.store.RecordScore(ctx, userID, score)
}

func (i *StoreIndex) Rank(ctx context.Context, userID uuid.UUID, email string) (RankResult, error) {
	rec, _, err := i.resolver.Resolve(ctx, userID, email)
	if err != nil {
		return RankResult{}, err
	}

	higher, err := i.store.CountHigherScores(ctx, rec.HighScore)
	if err != nil {
		return RankResult{}, err
	}

	return RankResult{HighScore: rec.HighScore, Rank: higher + 1}, nil
}
