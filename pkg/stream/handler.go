package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Handler serves GET /dashboard/stream as a server-sent-event stream.
//
// The connection has no server-side timeout: it stays open until the peer
// disconnects. The first emission is an SSE comment: EventSource ignores
// comments, but writing one commits the response headers, which is what
// moves the browser's EventSource to the "open" state. Without it the
// headers are held back until the first real event and the client loops
// through onerror/reconnect indefinitely.
type Handler struct {
	registry *Registry
}

// NewHandler creates the live-stream HTTP handler over the registry.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.registry.Register()
	defer h.registry.Unregister(sub)

	// Connection-established marker; flushes the transport headers.
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				// Evicted by a broadcast that found the queue full.
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
