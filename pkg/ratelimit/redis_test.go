package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"portico-gw/portico/pkg/route"
)

// unreachableClient returns a client pointed at a port nothing listens on.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisLimiterBypassesUnlimitedRoute(t *testing.T) {
	// The route has no limit configured, so the store must not be contacted
	// at all; an unreachable client proves it.
	l := NewRedisLimiterWithClient(unreachableClient(), 100*time.Millisecond)
	r := &route.Route{Path: "/open", TargetURL: "http://backend:8081"}

	res := l.Check(context.Background(), "10.0.0.1", r)
	if !res.Allowed {
		t.Error("unlimited route should always be allowed")
	}
	if !res.Bypassed() {
		t.Error("unlimited route should report bypassed")
	}
}

func TestRedisLimiterFailsOpenWhenStoreUnavailable(t *testing.T) {
	l := NewRedisLimiterWithClient(unreachableClient(), 100*time.Millisecond)
	r := limitedRoute("/api", 10, 5)

	res := l.Check(context.Background(), "10.0.0.1", r)
	if !res.Allowed {
		t.Error("store failure must fail open, not deny")
	}
	if !res.Bypassed() {
		t.Error("fail-open result should report bypassed so no limit headers are emitted")
	}
}

func TestRedisLimiterFailsOpenOnCancelledContext(t *testing.T) {
	l := NewRedisLimiterWithClient(unreachableClient(), 100*time.Millisecond)
	r := limitedRoute("/api", 10, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := l.Check(ctx, "10.0.0.1", r)
	if !res.Allowed {
		t.Error("cancelled context must fail open")
	}
}
