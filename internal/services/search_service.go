package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/BradenHooton/lumina/internal/auth"
	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/search"
	pkglogger "github.com/BradenHooton/lumina/pkg/logger"
)

// SearchService runs queries through the firewall pipeline and records history
type SearchService struct {
	pipeline    *search.Pipeline
	firewall    *FirewallService
	history     *HistoryService
	latency     auth.Latency
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewSearchService creates a new SearchService
func NewSearchService(pipeline *search.Pipeline, firewall *FirewallService, history *HistoryService, latency auth.Latency, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *SearchService {
	return &SearchService{
		pipeline:    pipeline,
		firewall:    firewall,
		history:     history,
		latency:     latency,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// SearchResponse is the outcome of one query
type SearchResponse struct {
	Query   string                `json:"query"`
	Results []models.SearchResult `json:"results"`
	Blocked bool                  `json:"blocked"`
}

// Search returns the filtered results for query. A blank query does nothing.
// Blocked queries return no results but are still recorded in history.
func (s *SearchService) Search(ctx context.Context, actor *models.SessionProjection, query string) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return &SearchResponse{Query: query, Results: []models.SearchResult{}}, nil
	}

	s.history.Add(ctx, query)

	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}

	outcome := s.pipeline.Run(query, s.firewall.Policy())

	if outcome.Blocked {
		principal := ""
		if actor != nil {
			principal = actor.Identifier
		}
		s.logger.Info("query blocked by firewall", slog.String("block_word", outcome.BlockedBy))
		s.auditLogger.LogQueryBlocked(ctx, principal, outcome.BlockedBy)
	}

	return &SearchResponse{
		Query:   query,
		Results: outcome.Results,
		Blocked: outcome.Blocked,
	}, nil
}

// History returns recent queries, most recent first
func (s *SearchService) History() []string {
	return s.history.List()
}

// ClearHistory empties the query history
func (s *SearchService) ClearHistory(ctx context.Context) {
	s.history.Clear(ctx)
}
