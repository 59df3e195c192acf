package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"portico-gw/portico/pkg/route"
)

// Refresher is the one-way interface to the route cache: the admin write
// path triggers refreshes without seeing cache internals.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Handler serves the route CRUD API.
type Handler struct {
	store  route.Store
	cache  Refresher
	logger *slog.Logger
}

// NewHandler creates the admin handler over the store and cache.
func NewHandler(store route.Store, cache Refresher) *Handler {
	return &Handler{
		store:  store,
		cache:  cache,
		logger: slog.Default().With("component", "admin"),
	}
}

// Register mounts the admin endpoints on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /routes", h.create)
	mux.HandleFunc("GET /routes", h.list)
	mux.HandleFunc("GET /routes/{id}", h.get)
	mux.HandleFunc("PUT /routes/{id}", h.update)
	mux.HandleFunc("DELETE /routes/{id}", h.delete)
}

// routePayload is the request body for create and update.
type routePayload struct {
	Path                string `json:"path"`
	TargetURL           string `json:"targetUrl"`
	Capacity            *int   `json:"capacity"`
	RefillRatePerSecond *int   `json:"refillRatePerSecond"`
}

// validate checks the payload invariants: non-empty absolute-path prefix,
// absolute target URL, and rate-limit parameters that are both set and
// positive or both unset.
func (p *routePayload) validate() string {
	if p.Path == "" || !strings.HasPrefix(p.Path, "/") {
		return "path must be a non-empty string starting with /"
	}
	u, err := url.Parse(p.TargetURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "targetUrl must be an absolute URL"
	}
	if (p.Capacity == nil) != (p.RefillRatePerSecond == nil) {
		return "capacity and refillRatePerSecond must be set together"
	}
	if p.Capacity != nil && (*p.Capacity <= 0 || *p.RefillRatePerSecond <= 0) {
		return "capacity and refillRatePerSecond must be positive"
	}
	return ""
}

func (p *routePayload) toRoute() *route.Route {
	return &route.Route{
		Path:                p.Path,
		TargetURL:           p.TargetURL,
		Capacity:            p.Capacity,
		RefillRatePerSecond: p.RefillRatePerSecond,
	}
}

// create handles POST /routes.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload routePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.store.Insert(r.Context(), payload.toRoute())
	if err != nil {
		h.storeError(w, err)
		return
	}

	h.refresh(r.Context())
	h.logger.Info("route created", "id", created.ID, "path", created.Path, "target", created.TargetURL)
	writeJSON(w, http.StatusCreated, created)
}

// list handles GET /routes. It reads the store, not the cache: the
// management API always wants the authoritative database state.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	routes, err := h.store.FindAll(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

// get handles GET /routes/{id}.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// update handles PUT /routes/{id}.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var payload routePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := payload.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := h.store.Update(r.Context(), id, payload.toRoute())
	if err != nil {
		h.storeError(w, err)
		return
	}

	h.refresh(r.Context())
	h.logger.Info("route updated", "id", updated.ID, "path", updated.Path)
	writeJSON(w, http.StatusOK, updated)
}

// delete handles DELETE /routes/{id}.
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	existed, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	if !existed {
		writeError(w, http.StatusNotFound, "route not found")
		return
	}

	h.refresh(r.Context())
	h.logger.Info("route deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// refresh makes the write visible to the proxy immediately instead of
// waiting for the next scheduled tick. A failure is not fatal to the admin
// request: the write is durable and the scheduled refresh will catch up.
func (h *Handler) refresh(ctx context.Context) {
	if err := h.cache.Refresh(ctx); err != nil {
		h.logger.Warn("route cache refresh after write failed", "error", err)
	}
}

// storeError maps store errors to HTTP responses.
func (h *Handler) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, route.ErrDuplicatePath):
		writeError(w, http.StatusConflict, "A route with that path already exists.")
	case errors.Is(err, route.ErrNotFound):
		writeError(w, http.StatusNotFound, "route not found")
	default:
		h.logger.Error("route store error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// pathID parses the {id} path segment, responding 404 when it is not a
// number (no route can have a non-numeric id).
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "route not found")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
