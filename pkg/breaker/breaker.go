package breaker

import (
	"sync"
	"time"
)

// State is the circuit breaker state.
type State int

const (
	// Closed: downstream healthy, outcomes are being counted.
	Closed State = iota
	// Open: consecutive failures crossed the threshold; the breaker stays
	// open for the configured duration.
	Open
	// HalfOpen: the open duration elapsed; the next outcome decides.
	HalfOpen
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Config controls breaker behaviour for every route.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker. Default: 5
	FailureThreshold int

	// OpenDuration is how long the breaker stays open before probing.
	// Default: 30s
	OpenDuration time.Duration
}

// Breaker is the per-route circuit breaker.
type Breaker struct {
	mu        sync.Mutex
	cfg       Config
	state     State
	failures  int
	openedAt  time.Time
}

// Record feeds one dispatch outcome into the breaker.
func (b *Breaker) Record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refreshLocked()

	if success {
		b.failures = 0
		b.state = Closed
		return
	}

	b.failures++
	if b.state == HalfOpen || b.failures >= b.cfg.FailureThreshold {
		b.state = Open
		b.openedAt = time.Now()
	}
}

// State returns the current state, accounting for open-duration expiry.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refreshLocked()
	return b.state
}

// refreshLocked transitions Open to HalfOpen once the open duration has
// elapsed. Caller must hold the lock.
func (b *Breaker) refreshLocked() {
	if b.state == Open && time.Since(b.openedAt) >= b.cfg.OpenDuration {
		b.state = HalfOpen
	}
}

// Registry hands out one breaker per route path, created lazily on first
// access. One flaky downstream never affects another route's breaker.
type Registry struct {
	mu       sync.Mutex
	cfg      Config
	breakers map[string]*Breaker
}

// NewRegistry creates a breaker registry with the given config.
func NewRegistry(cfg Config) *Registry {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenDuration <= 0 {
		cfg.OpenDuration = 30 * time.Second
	}
	return &Registry{cfg: cfg, breakers: make(map[string]*Breaker)}
}

// ForRoute returns the breaker for the given route path, creating it on
// first call.
func (r *Registry) ForRoute(routePath string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[routePath]
	if !ok {
		b = &Breaker{cfg: r.cfg}
		r.breakers[routePath] = b
	}
	return b
}

// OpenRoutes returns the paths whose breaker is currently open.
func (r *Registry) OpenRoutes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var open []string
	for path, b := range r.breakers {
		if b.State() == Open {
			open = append(open, path)
		}
	}
	return open
}
