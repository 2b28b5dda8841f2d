package leaderboard

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// RankResult is a user's competitive position.
type RankResult struct {
	HighScore int64
	Rank      int64
}

// Index derives competitive ranks from the high-score counter.
type Index interface {
	// RecordScore registers a finished game: games_played always grows by one,
	// high_score only when the new score beats it.
	RecordScore(ctx context.Context, userID uuid.UUID, email string, score int64) (usage.ScoreResult, error)

	// Rank returns the user's high score and rank. Rank is the number of
	// users with a strictly greater high score plus one, so equal scores
	// share the same rank.
	Rank(ctx context.Context, userID uuid.UUID, email string) (RankResult, error)
}
