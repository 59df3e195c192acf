// Package server assembles the gateway's HTTP surface and owns its
// lifecycle.
//
// The mux mounts the management API, the dashboard stream, health and
// metrics endpoints, and a catch-all that hands everything else to the
// proxy engine. Explicit patterns always win over the catch-all, so the
// gateway's own endpoints are never proxied.
package server
