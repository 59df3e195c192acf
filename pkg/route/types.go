package route

import "time"

// Route is a single routing rule.
//
// Path is the incoming URL prefix the gateway listens on (e.g. /api/users).
// TargetURL is the downstream service base URL (e.g. http://user-service:8081).
//
// Capacity and RefillRatePerSecond configure the token bucket for this route.
// Both nil means rate limiting is disabled; the store and admin layer enforce
// that they are always both set or both unset.
type Route struct {
	// ID is the database-assigned identifier.
	ID int64 `json:"id"`

	// Path is the unique path prefix matched against inbound request paths.
	Path string `json:"path"`

	// TargetURL is the absolute base URL of the downstream service.
	TargetURL string `json:"targetUrl"`

	// Capacity is the maximum number of tokens in the bucket (burst size).
	Capacity *int `json:"capacity"`

	// RefillRatePerSecond is the number of tokens added per wall-clock second.
	RefillRatePerSecond *int `json:"refillRatePerSecond"`

	// CreatedAt is set once when the route is first persisted.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is set on insert and bumped on every update.
	UpdatedAt time.Time `json:"updatedAt"`
}

// RateLimited reports whether this route has token-bucket parameters.
func (r *Route) RateLimited() bool {
	return r.Capacity != nil && r.RefillRatePerSecond != nil
}
