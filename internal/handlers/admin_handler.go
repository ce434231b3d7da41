package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/models"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
)

// AdminServiceInterface defines the privileged system operations
type AdminServiceInterface interface {
	ResetSystem(ctx context.Context, actor *models.SessionProjection) error
}

// AdminHandler handles privileged system requests.
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// ResetResponse reports the outcome of a system reset
type ResetResponse struct {
	Reset bool `json:"reset"`
}

// ResetSystem handles POST /admin/reset
func (h *AdminHandler) ResetSystem(w http.ResponseWriter, r *http.Request) {
	err := h.service.ResetSystem(r.Context(), auth.GetSessionFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteForbidden(w, "Only the system owner can reset the system")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			pkghttp.WriteServiceUnavailable(w, "Reset was interrupted")
		default:
			pkghttp.WriteInternalError(w, "Failed to reset system")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, ResetResponse{Reset: true})
}
