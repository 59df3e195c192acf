// Package route defines the routing rules the gateway matches inbound
// requests against, and the hot in-memory cache used on the request path.
//
// A Route maps an incoming URL path prefix to a downstream base URL, with
// optional token-bucket rate-limit parameters. Routes are persisted by the
// store sub-package; the Cache in this package holds an atomically
// replaceable snapshot of the full table so request-path lookups never
// touch the database.
package route
