package stream

import (
	"testing"

	"portico-gw/portico/pkg/accesslog"
)

func TestRegistryRegisterUnregister(t *testing.T) {
	r := NewRegistry()

	sub := r.Register()
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", r.Count())
	}

	r.Unregister(sub)
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}

	// Unregister is idempotent.
	r.Unregister(sub)
	if r.Count() != 0 {
		t.Fatalf("Count() = %d after double unregister, want 0", r.Count())
	}
}

func TestRegistryBroadcastDeliversToAll(t *testing.T) {
	r := NewRegistry()
	first := r.Register()
	second := r.Register()

	r.Broadcast(accesslog.Event{Path: "/api", ClientIP: "10.0.0.1"})

	for i, sub := range []*Subscriber{first, second} {
		select {
		case event := <-sub.Events():
			if event.Path != "/api" {
				t.Errorf("subscriber %d got Path = %q, want /api", i, event.Path)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestRegistryBroadcastDropsSlowSubscriber(t *testing.T) {
	r := NewRegistry()
	slow := r.Register()
	fast := r.Register()

	// Fill the slow subscriber's queue without draining it.
	for i := 0; i < subscriberBuffer; i++ {
		r.Broadcast(accesslog.Event{Path: "/api"})
		// Keep the fast subscriber drained.
		<-fast.Events()
	}

	// The next broadcast finds the slow queue full and evicts it.
	r.Broadcast(accesslog.Event{Path: "/api"})

	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after slow subscriber eviction", r.Count())
	}
	select {
	case <-fast.Events():
	default:
		t.Error("fast subscriber should still receive events")
	}

	// The evicted subscriber's channel is closed behind its buffered
	// backlog, so its connection handler sees EOF instead of idling forever.
	for i := 0; i < subscriberBuffer; i++ {
		if _, ok := <-slow.Events(); !ok {
			t.Fatalf("channel closed after %d events, buffered backlog should drain first", i)
		}
	}
	if _, ok := <-slow.Events(); ok {
		t.Error("evicted subscriber's channel should be closed")
	}
}

func TestRegistryUnregisterClosesChannel(t *testing.T) {
	r := NewRegistry()
	sub := r.Register()

	r.Unregister(sub)
	if _, ok := <-sub.Events(); ok {
		t.Error("unregistered subscriber's channel should be closed")
	}

	// Idempotent: a second call must not close again.
	r.Unregister(sub)
}

func TestRegistryBroadcastWithNoSubscribers(t *testing.T) {
	r := NewRegistry()
	// Must not panic or block.
	r.Broadcast(accesslog.Event{Path: "/api"})
}
