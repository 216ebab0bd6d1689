package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend is a fixed-window counter store. Incr atomically increments
// the identifier's counter within the current window, creating the
// entry on first hit, and reports when the window resets. Windows
// expire lazily; there is no sweep requirement beyond housekeeping.
type Backend interface {
	Name() string
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryBackend keeps counters in a process-local map. It is
// process-lifetime state with no teardown, which is acceptable only
// for single-instance deployments; multi-instance deployments need the
// Redis backend or limits stop being global.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time

	stopCleanup chan struct{}
}

func NewMemoryBackend() *MemoryBackend {
	b := &MemoryBackend{
		entries:     make(map[string]*memoryEntry),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	go b.cleanupLoop()
	return b
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	entry, ok := b.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		// First request, or the window rolled over: reset lazily.
		entry = &memoryEntry{count: 1, resetAt: now.Add(window)}
		b.entries[key] = entry
		return 1, entry.resetAt, nil
	}

	entry.count++
	return entry.count, entry.resetAt, nil
}

// cleanupLoop drops expired entries so abandoned identifiers do not
// accumulate. Correctness does not depend on it; expiry is lazy.
func (b *MemoryBackend) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			now := b.now()
			for key, entry := range b.entries {
				if !now.Before(entry.resetAt) {
					delete(b.entries, key)
				}
			}
			b.mu.Unlock()
		case <-b.stopCleanup:
			return
		}
	}
}

func (b *MemoryBackend) Close() {
	close(b.stopCleanup)
}

// RedisBackend keeps counters in Redis, whose INCR gives the atomic
// increment-and-get the fixed window needs across instances.
type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (b *RedisBackend) Name() string { return "redis" }

func (b *RedisBackend) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	count, err := b.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	if count == 1 {
		if err := b.rdb.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, err
		}
		return count, time.Now().Add(window), nil
	}

	ttl, err := b.rdb.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// Key exists without expiry (e.g. a crashed EXPIRE): repair it
		// rather than leaving an immortal counter.
		b.rdb.PExpire(ctx, key, window)
		ttl = window
	}
	return count, time.Now().Add(ttl), nil
}
