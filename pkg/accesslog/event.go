package accesslog

import (
	"encoding/json"
	"time"
)

// Event is an immutable snapshot of a single request that passed through
// the gateway, published after every request regardless of outcome.
//
// TargetURL is nil when no route matched the incoming path (404 case).
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	ClientIP    string    `json:"clientIp"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	TargetURL   *string   `json:"targetUrl"`
	StatusCode  int       `json:"statusCode"`
	LatencyMs   int64     `json:"latencyMs"`
	RateLimited bool      `json:"rateLimited"`
}

// EncodeEvent encodes an event to JSON for the wire.
func EncodeEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent decodes an event from its JSON wire form.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
