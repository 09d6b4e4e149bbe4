package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/media/covers"
	"github.com/booknotes/booknotes/internal/metadata/openlibrary"
	"github.com/booknotes/booknotes/internal/query"
	"github.com/booknotes/booknotes/internal/store"
)

// CoverLookup finds a cover URL for a book title.
type CoverLookup interface {
	SearchCover(ctx context.Context, title string) (string, error)
}

// CoverService resolves the cover a new card gets and mirrors covers locally.
type CoverService struct {
	store   *store.Store
	lookup  CoverLookup
	cache   *covers.Cache
	enabled bool
	logger  *slog.Logger
}

// NewCoverService creates a new cover service. With enabled false no lookup
// is ever made and books without cards get no cover. cache may be nil.
func NewCoverService(st *store.Store, lookup CoverLookup, cache *covers.Cache, enabled bool, logger *slog.Logger) *CoverService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CoverService{
		store:   st,
		lookup:  lookup,
		cache:   cache,
		enabled: enabled && lookup != nil,
		logger:  logger,
	}
}

// SetCache attaches the local cover cache used by CacheCovers.
func (s *CoverService) SetCache(cache *covers.Cache) {
	s.cache = cache
}

// Resolve returns the cover URL a new card for title should carry.
//
// A book that already has cards keeps the cover of its first card, nil
// included, and no lookup is made. Otherwise one lookup is made; every
// failure is logged and yields nil, so adding a card never fails on covers.
func (s *CoverService) Resolve(ctx context.Context, title string) *string {
	if existing, ok := s.store.BookCover(title); ok {
		return existing
	}
	if !s.enabled {
		return nil
	}

	url, err := s.lookup.SearchCover(ctx, title)
	switch {
	case errors.Is(err, openlibrary.ErrNoCover):
		s.logger.Debug("no cover found", "title", title)
		return nil
	case err != nil:
		s.logger.Warn("cover lookup failed",
			"title", title,
			"error", err,
		)
		return nil
	}
	return domain.StringPtr(url)
}

// CacheCovers downloads the cover of every book into the local cache.
func (s *CoverService) CacheCovers(ctx context.Context) ([]covers.Outcome, error) {
	if s.cache == nil {
		return nil, errors.New("cover cache is not configured")
	}
	return s.cache.Sync(ctx, query.Group(s.store.Cards()))
}
