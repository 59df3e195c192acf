package route

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultRefreshInterval is the fixed delay between scheduled cache refreshes.
const DefaultRefreshInterval = 30 * time.Second

// Cache is an in-memory snapshot of the full route table, keyed by path
// prefix. The database stays the source of truth, but a round-trip per
// proxied request would add latency and load for read-mostly, slowly
// changing data; a 30-second refresh window is an acceptable trade-off,
// and admin writes trigger an immediate refresh on top of it.
//
// The snapshot is an immutable map behind an atomic pointer. Readers always
// observe a complete snapshot; Refresh publishes a whole new map in a single
// pointer swap, so there are no torn reads and no locks on the request path.
type Cache struct {
	store    Store
	interval time.Duration
	snapshot atomic.Pointer[map[string]*Route]
	logger   *slog.Logger
}

// NewCache creates a route cache over the given store. If interval is zero,
// DefaultRefreshInterval is used. The cache is empty until Start or Refresh
// is called.
func NewCache(store Store, interval time.Duration) *Cache {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	c := &Cache{
		store:    store,
		interval: interval,
		logger:   slog.Default().With("component", "route.cache"),
	}
	empty := map[string]*Route{}
	c.snapshot.Store(&empty)
	return c
}

// Start performs the initial load and launches the background refresh loop.
// The initial load must succeed: serving traffic with an empty cache would
// turn every request into a 404, so a startup failure is returned to the
// caller (which treats it as fatal).
//
// The loop uses a fixed delay: the next refresh is scheduled interval after
// the previous one completes, so runs never overlap even when a store read
// is slow. A failed scheduled refresh keeps the previous snapshot and is
// retried on the next tick.
func (c *Cache) Start(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("initial route cache load: %w", err)
	}

	go func() {
		timer := time.NewTimer(c.interval)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Warn("scheduled route cache refresh failed, keeping previous snapshot",
						"error", err,
					)
				}
				timer.Reset(c.interval)
			}
		}
	}()

	return nil
}

// Refresh reads the full route table from the store, builds a new snapshot
// keyed by path, and publishes it atomically.
func (c *Cache) Refresh(ctx context.Context) error {
	routes, err := c.store.FindAll(ctx)
	if err != nil {
		return err
	}

	updated := make(map[string]*Route, len(routes))
	for _, r := range routes {
		updated[r.Path] = r
	}
	c.snapshot.Store(&updated)

	c.logger.Debug("route cache refreshed", "routes", len(updated))
	return nil
}

// FindMatch returns the route whose path is the longest prefix of
// requestPath, or nil when no configured prefix matches. Ties are impossible
// because paths are unique in the snapshot.
func (c *Cache) FindMatch(requestPath string) *Route {
	snapshot := *c.snapshot.Load()

	var best *Route
	bestLen := -1
	for path, r := range snapshot {
		if len(path) > bestLen && len(path) <= len(requestPath) && requestPath[:len(path)] == path {
			best = r
			bestLen = len(path)
		}
	}
	return best
}

// Size returns the number of routes in the current snapshot.
func (c *Cache) Size() int {
	return len(*c.snapshot.Load())
}
