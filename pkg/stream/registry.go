package stream

import (
	"log/slog"
	"sync"

	"portico-gw/portico/pkg/accesslog"
)

// subscriberBuffer is the per-subscriber event queue depth. A viewer that
// falls this far behind is considered dead and is dropped rather than
// allowed to stall the broadcast.
const subscriberBuffer = 64

// Subscriber is one open live-stream connection.
type Subscriber struct {
	events chan accesslog.Event
}

// Events returns the channel the connection handler drains.
func (s *Subscriber) Events() <-chan accesslog.Event {
	return s.events
}

// Registry is the thread-safe set of all open live-stream subscribers.
type Registry struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	logger      *slog.Logger
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      slog.Default().With("component", "stream.registry"),
	}
}

// Register allocates a new subscriber and adds it to the set. The caller
// must call Unregister when the connection closes.
func (r *Registry) Register() *Subscriber {
	sub := &Subscriber{events: make(chan accesslog.Event, subscriberBuffer)}

	r.mu.Lock()
	r.subscribers[sub] = struct{}{}
	count := len(r.subscribers)
	r.mu.Unlock()

	r.logger.Debug("live stream subscriber connected", "subscribers", count)
	return sub
}

// Unregister removes a subscriber and closes its event channel, ending the
// connection handler's drain loop. Safe to call more than once.
func (r *Registry) Unregister(sub *Subscriber) {
	r.mu.Lock()
	_, present := r.subscribers[sub]
	if present {
		delete(r.subscribers, sub)
		close(sub.events)
	}
	count := len(r.subscribers)
	r.mu.Unlock()

	if present {
		r.logger.Debug("live stream subscriber disconnected", "subscribers", count)
	}
}

// Count returns the number of open subscriptions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subscribers)
}

// Broadcast delivers an event to every subscriber. A subscriber whose queue
// is full cannot keep up (or has silently disconnected); it is evicted, its
// channel closed so the connection ends, and the broadcast continues with
// the rest. The sends never block, so the lock is held for the whole pass;
// that is what keeps eviction's close from racing a concurrent send.
func (r *Registry) Broadcast(event accesslog.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sub := range r.subscribers {
		select {
		case sub.events <- event:
		default:
			delete(r.subscribers, sub)
			close(sub.events)
			r.logger.Debug("live stream subscriber evicted", "subscribers", len(r.subscribers))
		}
	}
}
