// Package stream fans consumed access-log events out to live dashboard
// viewers over server-sent events.
//
// The Registry holds one Subscriber per open connection to
// GET /dashboard/stream. The Kafka consumer goroutine broadcasts to the set
// while browsers connect and disconnect concurrently; iteration works over a
// snapshot of the set so mutation during a broadcast is safe.
package stream
