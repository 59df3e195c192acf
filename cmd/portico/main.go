// Portico is a lightweight API gateway.
//
// It forwards HTTP traffic to backend services based on a database-backed
// route table, providing:
//   - Longest-prefix route matching with an in-memory snapshot cache
//   - Per-client token-bucket rate limiting backed by Redis
//   - A route management API
//   - Access-log fan-out over Kafka with a live SSE dashboard feed
//
// Usage:
//
//	# Start the gateway with default configuration
//	portico run
//
//	# Start with a custom configuration file
//	portico run --config /path/to/config.yaml
//
//	# Show version information
//	portico version
package main

func main() {
	Execute()
}
