// Package breaker tracks downstream health per route path with a standard
// closed/open/half-open circuit breaker.
//
// The gateway itself never retries and never blocks traffic on breaker
// state; retry and open-circuit policy belong to the layer in front of the
// downstream. The registry exists so each route's breaker observes dispatch
// outcomes and the health surface can report routes whose downstream is
// currently failing.
package breaker
