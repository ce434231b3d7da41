package handlers

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/services"
	pkghttp "github.com/BradenHooton/lumina/pkg/http"
)

// MaxQueryLength bounds the q parameter in characters
const MaxQueryLength = 512

// SearchServiceInterface defines the interface for search business logic
type SearchServiceInterface interface {
	Search(ctx context.Context, actor *models.SessionProjection, query string) (*services.SearchResponse, error)
	History() []string
	ClearHistory(ctx context.Context)
}

// SearchHandler handles search and history requests
type SearchHandler struct {
	service SearchServiceInterface
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(service SearchServiceInterface) *SearchHandler {
	return &SearchHandler{service: service}
}

// HistoryResponse lists recent queries, most recent first
type HistoryResponse struct {
	History []string `json:"history"`
}

// Search handles GET /search?q=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if utf8.RuneCountInString(query) > MaxQueryLength {
		pkghttp.WriteBadRequest(w, "Query is too long")
		return
	}

	resp, err := h.service.Search(r.Context(), auth.GetSessionFromContext(r.Context()), query)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			pkghttp.WriteServiceUnavailable(w, "Search was interrupted")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// History handles GET /search/history
func (h *SearchHandler) History(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, HistoryResponse{History: h.service.History()})
}

// ClearHistory handles DELETE /search/history
func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.service.ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
