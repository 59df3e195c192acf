// Package admin exposes the route management API under /routes.
//
// These endpoints are registered with explicit method patterns, so they win
// over the proxy engine's catch-all. Every successful write triggers an
// immediate route-cache refresh; the admin layer only sees the cache's
// Refresh method, never its internals.
package admin
