package usage

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the persistence contract for usage records.
//
// All mutating operations on the same user id are serialized relative to each
// other: two concurrent increments of the same counter always both apply.
// Operations on different user ids must not block each other.
type Store interface {
	// GetOrCreate returns the record for the user, creating it atomically on
	// first access. Concurrent first-time callers see exactly one created row.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (Record, error)

	// Get returns the record for the user or ErrRecordNotFound.
	Get(ctx context.Context, userID uuid.UUID) (Record, error)

	// SetPlan assigns a plan unconditionally. Used by the payment path, which
	// bypasses the upgrade-only rule after an external payment confirmation.
	SetPlan(ctx context.Context, userID uuid.UUID, planID string) error

	// UpgradePlan assigns a plan only while the current assignment is unset or
	// the free tier, and only when it actually changes. A no-op otherwise, so
	// repeated calls produce no additional writes.
	UpgradePlan(ctx context.Context, userID uuid.UUID, planID string) error

	// ReplacePlan assigns a plan only while the current assignment still
	// equals oldPlanID. A lost race leaves the row untouched; callers re-read
	// to learn which write won. Used to repair catalog drift without
	// overriding a concurrent assignment.
	ReplacePlan(ctx context.Context, userID uuid.UUID, oldPlanID, newPlanID string) error

	// Increment applies an atomic relative update to a counter. Admission must
	// have been checked already; no plan limits are validated here.
	Increment(ctx context.Context, userID uuid.UUID, metric Metric, count int64) error

	// RecordScore increments games_played and raises high_score if the new
	// score is strictly greater. Returns the post-update state.
	RecordScore(ctx context.Context, userID uuid.UUID, score int64) (ScoreResult, error)

	// CountHigherScores returns how many records have a high score strictly
	// greater than the given one. Read-committed consistency is sufficient.
	CountHigherScores(ctx context.Context, score int64) (int64, error)

	// ResetAllCounters zeroes course and module counters for all records and
	// deletes all externally-owned course rows in a single transaction.
	// Plan assignments and game state are preserved. Destructive.
	ResetAllCounters(ctx context.Context) error
}
