package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// defaultLeaderboardKey is the sorted-set key mirroring high scores.
const defaultLeaderboardKey = "quotakit:leaderboard:highscores"

// RedisIndex decorates another Index with a Redis sorted-set mirror of the
// high scores. Ranks come from ZCOUNT instead of a full table comparison; the
// usage store stays the source of truth and serves every miss, so the mirror
// may be flushed at any time.
type RedisIndex struct {
	inner  Index
	client redis.UniversalClient
	key    string
	log    *slog.Logger
}

// RedisIndexOption configures a RedisIndex.
type RedisIndexOption func(*RedisIndex)

// WithKey overrides the sorted-set key.
func WithKey(key string) RedisIndexOption {
	return func(i *RedisIndex) {
		if key != "" {
			i.key = key
		}
	}
}

// WithLogger sets the logger used for mirror maintenance failures.
func WithLogger(log *slog.Logger) RedisIndexOption {
	return func(i *RedisIndex) {
		if log != nil {
			i.log = log
		}
	}
}

// NewRedisIndex returns an Index that caches ranks in Redis on top of inner.
func NewRedisIndex(inner Index, client redis.UniversalClient, opts ...RedisIndexOption) *RedisIndex {
	if inner == nil {
		panic("leaderboard: inner index is required")
	}
	if client == nil {
		panic("leaderboard: redis client is required")
	}

	i := &RedisIndex{
		inner:  inner,
		client: client,
		key:    defaultLeaderboardKey,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *RedisIndex) RecordScore(ctx context.Context, userID uuid.UUID, email string, score int64) (usage.ScoreResult, error) {
	res, err := i.inner.RecordScore(ctx, userID, email, score)
	if err != nil {
		return usage.ScoreResult{}, err
	}

	// GT keeps the mirror monotonic: a concurrent higher score can never be
	// overwritten by a lower one. Mirror failures are not surfaced, the next
	// Rank call falls back to the store and backfills.
	if err := i.client.ZAddGT(ctx, i.key, redis.Z{
		Score:  float64(res.HighScore),
		Member: userID.String(),
	}).Err(); err != nil {
		i.log.WarnContext(ctx, "leaderboard mirror update failed", "error", err)
	}

	return res, nil
}

func (i *RedisIndex) Rank(ctx context.Context, userID uuid.UUID, email string) (RankResult, error) {
	score, err := i.client.ZScore(ctx, i.key, userID.String()).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			i.log.WarnContext(ctx, "leaderboard mirror read failed", "error", err)
		}
		return i.rankFromStore(ctx, userID, email)
	}

	higher, err := i.client.ZCount(ctx, i.key, fmt.Sprintf("(%d", int64(score)), "+inf").Result()
	if err != nil {
		i.log.WarnContext(ctx, "leaderboard mirror count failed", "error", err)
		return i.rankFromStore(ctx, userID, email)
	}

	return RankResult{HighScore: int64(score), Rank: higher + 1}, nil
}

// rankFromStore serves a mirror miss from the source of truth and backfills
// the sorted set for the next call.
func (i *RedisIndex) rankFromStore(ctx context.Context, userID uuid.UUID, email string) (RankResult, error) {
	res, err := i.inner.Rank(ctx, userID, email)
	if err != nil {
		return RankResult{}, err
	}

	if err := i.client.ZAddGT(ctx, i.key, redis.Z{
		Score:  float64(res.HighScore),
		Member: userID.String(),
	}).Err(); err != nil {
		i.log.WarnContext(ctx, "leaderboard mirror backfill failed", "error", err)
	}

	return res, nil
}
