// Package proxy implements the request-handling data plane.
//
// The Engine is mounted as the catch-all handler with the lowest routing
// precedence, so explicit endpoints (admin API, dashboard stream, metrics,
// health) always match first. Each request runs the same pipeline:
// match the longest route prefix, check the token bucket, forward to the
// downstream with hop-by-hop headers stripped and the body streamed, relay
// the response, and emit exactly one access-log event, for successes,
// 404s, 429s, and transport failures alike.
package proxy
