package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one rate-limit check. Being denied is not
// an error; it is a first-class result the caller translates into a
// 429. Backend records which counter store actually decided, so
// fallback is observable instead of silent.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	Backend   string
}

// Limiter runs fixed-window checks against a primary backend (Redis
// when configured) with an in-process fallback. Callers see which
// backend served the decision via Decision.Backend.
type Limiter struct {
	primary  Backend
	fallback Backend
}

// New builds a limiter. primary is consulted first; fallback (may be
// nil) takes over when primary errors, e.g. Redis down.
func New(primary, fallback Backend) *Limiter {
	return &Limiter{primary: primary, fallback: fallback}
}

// Check counts one request for identifier against limit per window.
func (l *Limiter) Check(ctx context.Context, identifier string, limit int, window time.Duration) Decision {
	backend := l.primary
	count, resetAt, err := backend.Incr(ctx, identifier, window)
	if err != nil && l.fallback != nil {
		backend = l.fallback
		count, resetAt, err = backend.Incr(ctx, identifier, window)
	}
	if err != nil {
		// Both backends down. Fail open: blocking all traffic because
		// the counter store is unreachable hurts more than the abuse a
		// brief outage lets through.
		return Decision{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetAt:   time.Now().Add(window),
			Backend:   "none",
		}
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		Backend:   backend.Name(),
	}
}
