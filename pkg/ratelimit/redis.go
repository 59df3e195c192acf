package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"portico-gw/portico/pkg/route"
)

// tokenBucketScript implements the token bucket atomically in Redis.
//
// KEYS[1]  the bucket key for this (route, client) pair
// ARGV[1]  capacity (max tokens)
// ARGV[2]  refill rate (tokens per second)
// ARGV[3]  current time in epoch milliseconds
// ARGV[4]  TTL in seconds for the key
//
// Returns a two-element array: { allowed (1 or 0), floor(remaining tokens) }.
//
// The bucket is a hash with fields "tokens" and "lastRefill". Accrual uses
// real arithmetic so a request arriving 100ms after the previous one earns
// fractional tokens; only the consume step requires a whole token.
var tokenBucketScript = redis.NewScript(`
local key  = KEYS[1]
local cap  = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now  = tonumber(ARGV[3])
local ttl  = tonumber(ARGV[4])

local data = redis.call('HMGET', key, 'tokens', 'lastRefill')
local tokens     = tonumber(data[1])
local lastRefill = tonumber(data[2])

if tokens == nil then
    -- First request for this (client, route): start with a full bucket.
    tokens     = cap
    lastRefill = now
end

local elapsed = (now - lastRefill) / 1000.0
local newTokens = math.min(cap, tokens + elapsed * rate)

local allowed = 0
if newTokens >= 1.0 then
    newTokens = newTokens - 1.0
    allowed = 1
end

redis.call('HMSET', key, 'tokens', tostring(newTokens), 'lastRefill', tostring(now))
redis.call('EXPIRE', key, ttl)

return { allowed, math.floor(newTokens) }
`)

// RedisConfig contains configuration for the Redis-backed limiter.
type RedisConfig struct {
	// Addr is the Redis server address ("host:port").
	Addr string

	// Password is the optional Redis AUTH password.
	Password string

	// DB is the Redis logical database number.
	DB int

	// Timeout bounds each rate-limit call; an expired timeout fails open.
	// Default: 250ms
	Timeout time.Duration
}

// RedisLimiter enforces token-bucket limits against a shared Redis instance
// so all gateway replicas observe the same buckets.
type RedisLimiter struct {
	client  redis.Scripter
	timeout time.Duration
	logger  *slog.Logger
}

// NewRedisLimiter creates a limiter over a new Redis client built from cfg.
func NewRedisLimiter(cfg *RedisConfig) *RedisLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisLimiterWithClient(client, cfg.Timeout)
}

// NewRedisLimiterWithClient creates a limiter over an existing client.
// Useful for tests and for sharing a client with other components.
func NewRedisLimiterWithClient(client redis.Scripter, timeout time.Duration) *RedisLimiter {
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &RedisLimiter{
		client:  client,
		timeout: timeout,
		logger:  slog.Default().With("component", "ratelimit.redis"),
	}
}

// Check runs one atomic check-and-consume for the (clientIP, route path)
// bucket. Routes without a configured capacity bypass the store entirely.
// Any Redis failure (connection, timeout, script error) fails open.
func (l *RedisLimiter) Check(ctx context.Context, clientIP string, r *route.Route) Result {
	if !r.RateLimited() {
		return Result{Allowed: true, Remaining: -1}
	}

	capacity := *r.Capacity
	refillRate := *r.RefillRatePerSecond

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, err := tokenBucketScript.Run(ctx, l.client,
		[]string{bucketKey(r.Path, clientIP)},
		capacity,
		refillRate,
		time.Now().UnixMilli(),
		bucketTTLSeconds(capacity, refillRate),
	).Result()
	if err != nil {
		l.logger.Warn("rate limiter Redis error, failing open",
			"client_ip", clientIP,
			"route_path", r.Path,
			"error", err,
		)
		return Result{Allowed: true, Remaining: -1}
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) < 2 {
		l.logger.Warn("rate limiter script returned unexpected shape, failing open",
			"route_path", r.Path,
			"result", raw,
		)
		return Result{Allowed: true, Remaining: -1}
	}

	allowed, _ := values[0].(int64)
	remaining, _ := values[1].(int64)
	return Result{Allowed: allowed == 1, Remaining: int(remaining)}
}
