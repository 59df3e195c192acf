// Package middleware provides HTTP middleware for the gateway server:
// request IDs, panic recovery, and CORS for the admin and dashboard
// surface.
package middleware
