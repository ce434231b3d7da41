package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/models"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
	"github.com/go-chi/chi/v5"
)

// FirewallServiceInterface defines the interface for the firewall policy store
type FirewallServiceInterface interface {
	Policy() *models.FirewallPolicy
	Update(ctx context.Context, actor *models.SessionProjection, patch *models.FirewallPolicyPatch) (*models.FirewallPolicy, error)
	AddAllowedDomain(ctx context.Context, actor *models.SessionProjection, pattern string) (*models.FirewallPolicy, error)
	RemoveAllowedDomain(ctx context.Context, actor *models.SessionProjection, pattern string) (*models.FirewallPolicy, error)
	AddBlockWord(ctx context.Context, actor *models.SessionProjection, word string) (*models.FirewallPolicy, error)
	RemoveBlockWord(ctx context.Context, actor *models.SessionProjection, word string) (*models.FirewallPolicy, error)
	UpdateDefinitions(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error)
	Reset(ctx context.Context, actor *models.SessionProjection) (*models.FirewallPolicy, error)
}

// FirewallHandler handles firewall policy requests
type FirewallHandler struct {
	service FirewallServiceInterface
}

// NewFirewallHandler creates a new FirewallHandler
func NewFirewallHandler(service FirewallServiceInterface) *FirewallHandler {
	return &FirewallHandler{service: service}
}

// AllowedDomainRequest represents the request body for adding an allowed domain
type AllowedDomainRequest struct {
	Pattern string `json:"pattern" validate:"required,max=253"`
}

// BlockWordRequest represents the request body for adding a block word
type BlockWordRequest struct {
	Word string `json:"word" validate:"required,max=64"`
}

// GetPolicy handles GET /admin/firewall
func (h *FirewallHandler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.Policy())
}

// UpdatePolicy handles PATCH /admin/firewall
func (h *FirewallHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var patch models.FirewallPolicyPatch
	if err := pkghttp.DecodeJSON(w, r, &patch); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(patch); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	policy, err := h.service.Update(r.Context(), auth.GetSessionFromContext(r.Context()), &patch)
	h.respond(w, policy, err)
}

// AddAllowedDomain handles POST /admin/firewall/domains
func (h *FirewallHandler) AddAllowedDomain(w http.ResponseWriter, r *http.Request) {
	var req AllowedDomainRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	policy, err := h.service.AddAllowedDomain(r.Context(), auth.GetSessionFromContext(r.Context()), req.Pattern)
	h.respond(w, policy, err)
}

// RemoveAllowedDomain handles DELETE /admin/firewall/domains/{domain}
func (h *FirewallHandler) RemoveAllowedDomain(w http.ResponseWriter, r *http.Request) {
	domain, ok := pathParam(w, r, "domain")
	if !ok {
		return
	}

	policy, err := h.service.RemoveAllowedDomain(r.Context(), auth.GetSessionFromContext(r.Context()), domain)
	h.respond(w, policy, err)
}

// AddBlockWord handles POST /admin/firewall/blockwords
func (h *FirewallHandler) AddBlockWord(w http.ResponseWriter, r *http.Request) {
	var req BlockWordRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	policy, err := h.service.AddBlockWord(r.Context(), auth.GetSessionFromContext(r.Context()), req.Word)
	h.respond(w, policy, err)
}

// RemoveBlockWord handles DELETE /admin/firewall/blockwords/{word}
func (h *FirewallHandler) RemoveBlockWord(w http.ResponseWriter, r *http.Request) {
	word, ok := pathParam(w, r, "word")
	if !ok {
		return
	}

	policy, err := h.service.RemoveBlockWord(r.Context(), auth.GetSessionFromContext(r.Context()), word)
	h.respond(w, policy, err)
}

// UpdateDefinitions handles POST /admin/firewall/definitions
func (h *FirewallHandler) UpdateDefinitions(w http.ResponseWriter, r *http.Request) {
	policy, err := h.service.UpdateDefinitions(r.Context(), auth.GetSessionFromContext(r.Context()))
	h.respond(w, policy, err)
}

// ResetPolicy handles POST /admin/firewall/reset
func (h *FirewallHandler) ResetPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.service.Reset(r.Context(), auth.GetSessionFromContext(r.Context()))
	h.respond(w, policy, err)
}

func (h *FirewallHandler) respond(w http.ResponseWriter, policy *models.FirewallPolicy, err error) {
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteForbidden(w, "Not permitted to change the firewall policy")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Failed to save firewall policy")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, policy)
}

// pathParam returns the unescaped chi URL parameter, writing a 400 if it is malformed
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil || value == "" {
		pkghttp.WriteBadRequest(w, "Invalid "+name)
		return "", false
	}
	return value, true
}
