package ratelimit

import (
	"context"

	"portico-gw/portico/pkg/route"
)

// Result is the outcome of a rate-limit check.
type Result struct {
	// Allowed is true when the request may proceed.
	Allowed bool

	// Remaining is the number of whole tokens left in the bucket after this
	// check; -1 when rate limiting was skipped (route has no limit
	// configured, or the store was unavailable and we failed open).
	Remaining int
}

// Bypassed reports whether rate limiting was skipped for this request.
// Bypassed results carry no X-RateLimit headers.
func (r Result) Bypassed() bool {
	return r.Remaining < 0
}

// Limiter decides whether a request from clientIP to the given route is
// within its token-bucket budget.
type Limiter interface {
	// Check performs one atomic check-and-consume for the
	// (clientIP, route path) bucket. Implementations must return an allowed
	// Result with Remaining == -1 (never an error) when the route has no
	// limit configured or the backing store fails.
	Check(ctx context.Context, clientIP string, r *route.Route) Result
}

// bucketKey builds the store key for a (route path, client IP) bucket,
// e.g. "rl:/api/users:192.168.1.10".
func bucketKey(routePath, clientIP string) string {
	return "rl:" + routePath + ":" + clientIP
}

// bucketTTLSeconds is the idle expiry for bucket state: the time an empty
// bucket takes to fully refill, doubled for a safety margin. Keeps the store
// sized by active clients rather than historical ones.
func bucketTTLSeconds(capacity, refillRatePerSecond int) int {
	ttl := capacity / refillRatePerSecond
	if capacity%refillRatePerSecond != 0 {
		ttl++
	}
	return ttl * 2
}
