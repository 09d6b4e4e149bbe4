// Package store owns the canonical flashcard collection and keeps it in step
// with the key-value store it persists into.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/id"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/validation"
)

// Persisted keys.
const (
	CollectionKey = "bookNotesFlashcards"
	ThemeKey      = "bookNotesTheme"
)

// EventEmitter receives a ChangeEvent after every successful mutation.
// Store uses this to broadcast changes without knowing who listens.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer keeps a search index in sync with the collection.
// Index failures are logged and never fail the mutation.
type SearchIndexer interface {
	IndexCard(ctx context.Context, card *domain.Flashcard) error
	DeleteCard(ctx context.Context, cardID int64) error
	Rebuild(ctx context.Context, cards []domain.Flashcard) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexCard is a no-op.
func (NoopSearchIndexer) IndexCard(context.Context, *domain.Flashcard) error { return nil }

// DeleteCard is a no-op.
func (NoopSearchIndexer) DeleteCard(context.Context, int64) error { return nil }

// Rebuild is a no-op.
func (NoopSearchIndexer) Rebuild(context.Context, []domain.Flashcard) error { return nil }

// Store holds the collection in memory, newest card first, and writes the
// whole collection through to kv on every mutation.
type Store struct {
	mu    sync.RWMutex
	cards []domain.Flashcard

	kv        kv.Store
	clock     *id.Clock
	validator *validation.Validator
	logger    *slog.Logger

	eventEmitter EventEmitter

	// Set via SetSearchIndexer after creation so the index can be built
	// from the store it indexes.
	searchIndexer SearchIndexer
}

// New creates a Store over kvStore. Call Load before use.
func New(kvStore kv.Store, logger *slog.Logger, emitter EventEmitter) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &Store{
		cards:         []domain.Flashcard{},
		kv:            kvStore,
		clock:         id.NewClock(),
		validator:     validation.New(),
		logger:        logger,
		eventEmitter:  emitter,
		searchIndexer: NoopSearchIndexer{},
	}
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	if indexer == nil {
		indexer = NoopSearchIndexer{}
	}
	s.searchIndexer = indexer
}

// SetClock replaces the id clock. Used by tests.
func (s *Store) SetClock(c *id.Clock) {
	s.clock = c
}

// Load reads the persisted collection. A missing key yields an empty
// collection. Data that does not decode is logged as corrupt and also yields
// an empty collection; only a failing backend returns an error.
func (s *Store) Load(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, CollectionKey)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("read %s: %w", CollectionKey, err)
	}

	var cards []domain.Flashcard
	if err == nil {
		if jerr := json.Unmarshal(raw, &cards); jerr != nil {
			s.logger.Warn("stored collection is unreadable, starting empty",
				"key", CollectionKey,
				"code", domainerrors.CodeCorrupt,
				"error", jerr,
			)
			cards = nil
		}
	}
	if cards == nil {
		cards = []domain.Flashcard{}
	}

	for i := range cards {
		cards[i].Normalize()
		s.clock.Observe(cards[i].ID)
	}

	s.mu.Lock()
	s.cards = cards
	s.mu.Unlock()

	s.logger.Debug("collection loaded", "cards", len(cards))

	if err := s.searchIndexer.Rebuild(ctx, s.Cards()); err != nil {
		s.logger.Warn("failed to rebuild search index", "error", err)
	}
	s.emit(EventCollectionLoaded, nil)
	return nil
}

// persistLocked writes next and, only once that succeeded, makes it the
// canonical collection. The caller holds s.mu for writing.
func (s *Store) persistLocked(ctx context.Context, next []domain.Flashcard) error {
	data, err := json.Marshal(next)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "encode collection")
	}
	if err := s.kv.Set(ctx, CollectionKey, data); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "persist collection")
	}
	s.cards = next
	return nil
}

func (s *Store) emit(t EventType, card *domain.Flashcard) {
	s.eventEmitter.Emit(ChangeEvent{
		Type:     t,
		Card:     card,
		Snapshot: s.Cards(),
	})
}

func (s *Store) indexLogged(ctx context.Context, card *domain.Flashcard) {
	if err := s.searchIndexer.IndexCard(ctx, card); err != nil {
		s.logger.Warn("failed to index card", "card_id", card.ID, "error", err)
	}
}
