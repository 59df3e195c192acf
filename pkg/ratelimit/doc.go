// Package ratelimit enforces per-(client IP, route path) token-bucket
// limits for the proxy pipeline.
//
// The production implementation is Redis-backed: the whole check-and-consume
// sequence runs inside a Lua script, which Redis executes as a single atomic
// command, so concurrent requests from the same client cannot interleave and
// double-spend a token, across every gateway instance sharing the store.
//
// The limiter always fails open: when Redis is unreachable or the script
// errors, traffic is allowed through and the failure is logged. Rate
// limiting protects downstream services; it must never become the outage.
//
// MemoryLimiter provides the same contract on process-local state for
// single-instance deployments and tests.
package ratelimit
