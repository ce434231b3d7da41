package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/lumina/pkg/http"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /health
type HealthHandler struct {
	store   Pinger
	backend string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger, backend string) *HealthHandler {
	return &HealthHandler{store: store, backend: backend}
}

// HealthResponse is the body of a health check
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Backend string `json:"backend"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		pkghttp.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Store: "down", Backend: h.backend})
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Store: "up", Backend: h.backend})
}
