package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"portico-gw/portico/pkg/route"
)

// MemoryLimiter enforces token-bucket limits with process-local state.
// It implements the same contract as RedisLimiter but buckets are not
// shared between gateway instances, so it suits single-replica deployments
// and tests. Idle buckets are evicted by a janitor goroutine.
type MemoryLimiter struct {
	mu           sync.Mutex
	entries      map[string]*memoryEntry
	cleanupEvery time.Duration
}

type memoryEntry struct {
	lim      *rate.Limiter
	capacity int
	refill   int
	lastSeen time.Time
}

// NewMemoryLimiter creates an in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries:      make(map[string]*memoryEntry),
		cleanupEvery: 2 * time.Minute,
	}
}

// Check consumes one token from the (clientIP, route path) bucket.
func (l *MemoryLimiter) Check(_ context.Context, clientIP string, r *route.Route) Result {
	if !r.RateLimited() {
		return Result{Allowed: true, Remaining: -1}
	}

	capacity := *r.Capacity
	refill := *r.RefillRatePerSecond

	lim := l.get(bucketKey(r.Path, clientIP), capacity, refill)
	allowed := lim.Allow()

	remaining := int(lim.Tokens())
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: allowed, Remaining: remaining}
}

// get returns the limiter for key, creating it with a full bucket on first
// use and replacing it when the route's parameters have changed since.
func (l *MemoryLimiter) get(key string, capacity, refill int) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok && ent.capacity == capacity && ent.refill == refill {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(rate.Limit(refill), capacity)
	l.entries[key] = &memoryEntry{lim: lim, capacity: capacity, refill: refill, lastSeen: now}
	return lim
}

// StartJanitor launches a goroutine that evicts idle buckets periodically,
// mirroring the TTL eviction the Redis backend gets for free. Stops when
// ctx is cancelled.
func (l *MemoryLimiter) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(l.cleanupEvery)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.cleanup(time.Now())
			}
		}
	}()
}

// cleanup removes buckets idle past their TTL.
func (l *MemoryLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, ent := range l.entries {
		ttl := time.Duration(bucketTTLSeconds(ent.capacity, ent.refill)) * time.Second
		if now.Sub(ent.lastSeen) > ttl {
			delete(l.entries, key)
		}
	}
}
