package usage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxRetryAttempts bounds transparent retries of writes that lost a race.
const maxRetryAttempts = 3

// PGStore is the PostgreSQL Store implementation. Counter updates are single
// relative UPDATE statements, so the database serializes concurrent writers on
// the same row without lost updates; different rows never block each other.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the given connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("usage: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

const selectRecord = `
	SELECT user_id, COALESCE(plan_id, ''), courses_created, modules_created,
	       high_score, games_played, last_reset_date
	FROM usage_records
	WHERE user_id = $1`

func (s *PGStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (Record, error) {
	// Atomic upsert instead of check-then-insert: concurrent first accesses
	// race on the unique key and all but one become no-ops.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO usage_records (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID)
	if err != nil {
		return Record{}, fmt.Errorf("upsert usage record: %w", err)
	}

	return s.Get(ctx, userID)
}

func (s *PGStore) Get(ctx context.Context, userID uuid.UUID) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, selectRecord, userID).Scan(
		&rec.UserID, &rec.PlanID, &rec.CoursesCreated, &rec.ModulesCreated,
		&rec.HighScore, &rec.GamesPlayed, &rec.LastResetAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("select usage record: %w", err)
	}
	return rec, nil
}

func (s *PGStore) SetPlan(ctx context.Context, userID uuid.UUID, planID string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			`UPDATE usage_records SET plan_id = $2 WHERE user_id = $1`,
			userID, planID)
		if err != nil {
			return fmt.Errorf("set plan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *PGStore) UpgradePlan(ctx context.Context, userID uuid.UUID, planID string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		// Conditional update keeps the upgrade-only rule race-safe: two
		// concurrent resolvers cannot override a paid assignment, and a
		// matching assignment produces no write at all.
		tag, err := s.pool.Exec(ctx, `
			UPDATE usage_records SET plan_id = $2
			WHERE user_id = $1
			  AND (plan_id IS NULL OR plan_id = 'free')
			  AND plan_id IS DISTINCT FROM $2`,
			userID, planID)
		if err != nil {
			return fmt.Errorf("upgrade plan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return s.checkRecordExists(ctx, userID)
		}
		return nil
	})
}

func (s *PGStore) ReplacePlan(ctx context.Context, userID uuid.UUID, oldPlanID, newPlanID string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE usage_records SET plan_id = $3
			WHERE user_id = $1 AND plan_id = $2`,
			userID, oldPlanID, newPlanID)
		if err != nil {
			return fmt.Errorf("replace plan: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return s.checkRecordExists(ctx, userID)
		}
		return nil
	})
}

// checkRecordExists distinguishes "condition not met" from "no such record"
// after a conditional update matched zero rows.
func (s *PGStore) checkRecordExists(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM usage_records WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check usage record: %w", err)
	}
	if !exists {
		return ErrRecordNotFound
	}
	return nil
}

func (s *PGStore) Increment(ctx context.Context, userID uuid.UUID, metric Metric, count int64) error {
	if _, err := ParseMetric(string(metric)); err != nil {
		return err
	}
	if count <= 0 {
		return ErrInvalidCount
	}

	var stmt string
	switch metric {
	case MetricCoursesCreated:
		stmt = `UPDATE usage_records SET courses_created = courses_created + $2 WHERE user_id = $1`
	case MetricModulesCreated:
		stmt = `UPDATE usage_records SET modules_created = modules_created + $2 WHERE user_id = $1`
	}

	return s.withRetry(ctx, func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx, stmt, userID, count)
		if err != nil {
			return fmt.Errorf("increment %s: %w", metric, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *PGStore) RecordScore(ctx context.Context, userID uuid.UUID, score int64) (ScoreResult, error) {
	if score < 0 {
		return ScoreResult{}, ErrInvalidScore
	}

	var res ScoreResult
	err := s.withRetry(ctx, func(ctx context.Context) error {
		// The locking subquery reads the previous high score under the row
		// lock, serializing concurrent score writes for the same user. A plain
		// snapshot would go stale under read committed when a blocked
		// statement re-evaluates against the winner's row version, letting a
		// lower score report itself as the new high.
		err := s.pool.QueryRow(ctx, `
			UPDATE usage_records u
			SET games_played = games_played + 1,
			    high_score = GREATEST(u.high_score, $2)
			FROM (
				SELECT high_score FROM usage_records WHERE user_id = $1 FOR UPDATE
			) prev
			WHERE u.user_id = $1
			RETURNING u.high_score, u.games_played, $2 > prev.high_score`,
			userID, score).Scan(&res.HighScore, &res.GamesPlayed, &res.IsNewHigh)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("record score: %w", err)
		}
		return nil
	})
	if err != nil {
		return ScoreResult{}, err
	}
	return res, nil
}

func (s *PGStore) CountHigherScores(ctx context.Context, score int64) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM usage_records WHERE high_score > $1`, score).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count higher scores: %w", err)
	}
	return n, nil
}

func (s *PGStore) ResetAllCounters(ctx context.Context) error {
	// One transaction: counters and the externally-owned course rows can never
	// end up out of sync through a partial wipe.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.Join(ErrFailedToReset, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM courses`); err != nil {
		return errors.Join(ErrFailedToReset, err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE usage_records SET courses_created = 0, modules_created = 0`); err != nil {
		return errors.Join(ErrFailedToReset, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrFailedToReset, err)
	}
	return nil
}

// withRetry retries writes that lost a transactional race (serialization
// failure or deadlock) a bounded number of times, then surfaces
// ErrConcurrencyConflict as a transient failure. Increments stay all-or-nothing.
func (s *PGStore) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for i := 0; i < maxRetryAttempts; i++ {
		lastErr = fn(ctx)
		if lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
	}
	return errors.Join(ErrConcurrencyConflict, lastErr)
}

// isRetryable detects PostgreSQL serialization failures (40001) and deadlocks (40P01).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}
