package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long to wait before the next request is allowed.
// Zero if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the counter backend for the fixed-window limiter.
type Store interface {
	// IncrementAndGet atomically increments the window counter for the key,
	// starting a fresh window with the given TTL when none exists. Returns the
	// counter value after the increment and the time left in the window.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (current int64, ttl time.Duration, err error)
}

// FixedWindow is a fixed-window rate limiter: up to limit requests per key per
// window. Cheap and good enough for abuse protection on write endpoints; the
// boundary burst of a fixed window is acceptable here.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow returns a FixedWindow limiter.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &FixedWindow{store: store, limit: limit, window: window}, nil
}

// Allow consumes one slot for the key and reports whether the request fits the
// current window.
func (l *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	current, ttl, err := l.store.IncrementAndGet(ctx, key, l.window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   current <= int64(l.limit),
		Limit:     l.limit,
		Remaining: max(0, l.limit-int(current)),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}
