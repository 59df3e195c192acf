package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portico-gw/portico/pkg/accesslog"
)

func TestHandlerRejectsNonGet(t *testing.T) {
	h := NewHandler(NewRegistry())

	req := httptest.NewRequest(http.MethodPost, "/dashboard/stream", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
	if allow := w.Header().Get("Allow"); allow != http.MethodGet {
		t.Errorf("Allow = %q, want GET", allow)
	}
}

func TestHandlerStreamsEvents(t *testing.T) {
	registry := NewRegistry()
	h := NewHandler(registry)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/dashboard/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(w, req)
	}()

	// Wait for the handler to register its subscription.
	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never registered a subscriber")
		}
		time.Sleep(5 * time.Millisecond)
	}

	registry.Broadcast(accesslog.Event{
		ClientIP:   "10.0.0.1",
		Method:     "GET",
		Path:       "/api/users",
		StatusCode: 200,
	})

	// Give the handler a moment to drain and write, then disconnect. The
	// recorder is not goroutine-safe, so the body is only inspected after
	// the handler returns.
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.HasPrefix(body, ": connected\n\n") {
		t.Errorf("stream should open with the connected comment, got %q", body)
	}
	if !strings.Contains(body, `data: {"timestamp"`) {
		t.Errorf("stream should carry the event as an SSE data frame, got %q", body)
	}
	if !strings.Contains(body, `"clientIp":"10.0.0.1"`) {
		t.Errorf("event payload missing client IP, got %q", body)
	}

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	if registry.Count() != 0 {
		t.Errorf("subscriber should be unregistered after disconnect, Count() = %d", registry.Count())
	}
}

func TestHandlerEndsWhenSubscriberEvicted(t *testing.T) {
	registry := NewRegistry()
	h := NewHandler(registry)

	// The request context stays alive for the whole test: the handler must
	// end because its subscription is torn down, not because the peer left.
	req := httptest.NewRequest(http.MethodGet, "/dashboard/stream", nil)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(w, req)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for registry.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never registered a subscriber")
		}
		time.Sleep(5 * time.Millisecond)
	}

	registry.mu.Lock()
	var sub *Subscriber
	for s := range registry.subscribers {
		sub = s
	}
	registry.mu.Unlock()

	registry.Unregister(sub)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler should return once its subscriber is dropped")
	}
	if registry.Count() != 0 {
		t.Errorf("Count() = %d, want 0", registry.Count())
	}
}
