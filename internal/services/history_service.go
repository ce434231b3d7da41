package services

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/BradenHooton/lumina/internal/store"
)

// HistoryService keeps recent queries, most recent first
type HistoryService struct {
	mu      sync.RWMutex
	store   store.Store
	logger  *slog.Logger
	entries []string
}

// NewHistoryService creates an empty HistoryService
func NewHistoryService(st store.Store, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		store:   st,
		logger:  logger,
		entries: []string{},
	}
}

// Load reads the persisted history. A corrupt entry is discarded.
func (s *HistoryService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []string
	err := store.GetJSON(ctx, s.store, store.KeySearchHistory, &entries)
	switch {
	case err == nil:
		if len(entries) > models.SearchHistoryLimit {
			entries = entries[:models.SearchHistoryLimit]
		}
		if entries == nil {
			entries = []string{}
		}
		s.entries = entries
	case store.IsNotFound(err):
	case errors.Is(err, models.ErrPersistenceCorrupt):
		s.logger.Warn("discarding corrupt search history", slog.Any("error", err))
		if err := s.store.Delete(ctx, store.KeySearchHistory); err != nil {
			s.logger.Error("failed to delete search history", slog.Any("error", err))
		}
	default:
		s.logger.Error("failed to load search history", slog.Any("error", err))
	}
}

// Add records query at the front. A query already present is left where it is.
func (s *HistoryService) Add(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.entries, query) {
		return
	}

	entries := append([]string{query}, s.entries...)
	if len(entries) > models.SearchHistoryLimit {
		entries = entries[:models.SearchHistoryLimit]
	}
	s.entries = entries

	if err := store.SetJSON(ctx, s.store, store.KeySearchHistory, entries); err != nil {
		s.logger.Error("failed to persist search history", slog.Any("error", err))
	}
}

// List returns a copy of the history
func (s *HistoryService) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Clear empties the history
func (s *HistoryService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []string{}
	if err := s.store.Delete(ctx, store.KeySearchHistory); err != nil {
		s.logger.Error("failed to clear search history", slog.Any("error", err))
	}
}
