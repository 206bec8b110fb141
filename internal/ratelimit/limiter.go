package ratelimit

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store keeps attempt timestamps per key inside a sliding window.
type Store interface {
	CountRecent(ctx context.Context, key string, now time.Time, window time.Duration) (int, error)
	Add(ctx context.Context, key string, now time.Time, window time.Duration) error
	Reset(ctx context.Context, key string) error
}

// Limiter allows at most limit attempts per key per window. Store errors
// fail open: a broken limiter must not take the form down with it.
type Limiter struct {
	store  Store
	scope  string
	limit  int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func New(store Store, scope string, limit int, window time.Duration, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		store:  store,
		scope:  scope,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: logger.Named("ratelimit").With(zap.String("scope", scope)),
	}
}

// WithClock swaps the time source; used by tests.
func (limiter *Limiter) WithClock(now func() time.Time) *Limiter {
	limiter.now = now
	return limiter
}

func (limiter *Limiter) Limit() int {
	return limiter.limit
}

func (limiter *Limiter) Window() time.Duration {
	return limiter.window
}

// Blocked reports whether key has used up its attempts.
func (limiter *Limiter) Blocked(ctx context.Context, key string) bool {
	if limiter == nil || limiter.limit <= 0 {
		return false
	}
	count, err := limiter.store.CountRecent(ctx, limiter.key(key), limiter.now(), limiter.window)
	if err != nil {
		limiter.logger.Warn("rate limit lookup failed", zap.Error(err))
		return false
	}
	return count >= limiter.limit
}

func (limiter *Limiter) Record(ctx context.Context, key string) {
	if limiter == nil || limiter.limit <= 0 {
		return
	}
	if err := limiter.store.Add(ctx, limiter.key(key), limiter.now(), limiter.window); err != nil {
		limiter.logger.Warn("rate limit record failed", zap.Error(err))
	}
}

func (limiter *Limiter) Reset(ctx context.Context, key string) {
	if limiter == nil {
		return
	}
	if err := limiter.store.Reset(ctx, limiter.key(key)); err != nil {
		limiter.logger.Warn("rate limit reset failed", zap.Error(err))
	}
}

func (limiter *Limiter) key(raw string) string {
	key := strings.TrimSpace(raw)
	if key == "" {
		key = "unknown"
	}
	return limiter.scope + ":" + key
}
