// Package accesslog emits one event per inbound request to a durable Kafka
// topic and consumes that topic for the live dashboard.
//
// Events are keyed by client IP so all events from one client land on the
// same partition and are observed in arrival order. Publishing is
// fire-and-forget: the proxy pipeline never waits for broker
// acknowledgement, and a publish failure is logged without affecting the
// request that produced it.
package accesslog
