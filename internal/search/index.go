// Package search provides full-text search over card text.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/booknotes/booknotes/internal/domain"
)

// NoteIndex wraps an in-memory Bleve index of cards.
// The card store is the source of truth; the index is rebuilt from it on
// load and kept current through the store's indexer hooks.
//
// Thread safety: All public methods are safe for concurrent use.
type NoteIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex // Protects the index pointer during rebuild
}

// NewNoteIndex creates an empty index.
func NewNoteIndex(logger *slog.Logger) (*NoteIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &NoteIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (n *NoteIndex) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index.Close()
}

// IndexCard adds or replaces one card.
func (n *NoteIndex) IndexCard(_ context.Context, card *domain.Flashcard) error {
	doc := CardToDocument(card)

	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index.Index(doc.ID, doc.ToMap())
}

// DeleteCard removes one card.
func (n *NoteIndex) DeleteCard(_ context.Context, cardID int64) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index.Delete(docID(cardID))
}

// Rebuild replaces the index contents with cards.
//
// IMPORTANT: This acquires an exclusive lock and blocks searches until the
// new index is filled.
func (n *NoteIndex) Rebuild(ctx context.Context, cards []domain.Flashcard) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := indexBatched(ctx, fresh, cards); err != nil {
		_ = fresh.Close()
		return err
	}

	n.mu.Lock()
	old := n.index
	n.index = fresh
	n.mu.Unlock()

	if err := old.Close(); err != nil {
		n.logger.Warn("failed to close previous search index", "error", err)
	}
	n.logger.Debug("rebuilt search index", "cards", len(cards))
	return nil
}

// indexBatched indexes cards in chunks to bound batch memory.
func indexBatched(ctx context.Context, index bleve.Index, cards []domain.Flashcard) error {
	const batchSize = 500

	for i := 0; i < len(cards); i += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(i+batchSize, len(cards))

		batch := index.NewBatch()
		for j := i; j < end; j++ {
			doc := CardToDocument(&cards[j])
			if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID, err)
			}
		}
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// DocumentCount returns the total number of indexed cards.
func (n *NoteIndex) DocumentCount() (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index.DocCount()
}
