package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/logger"
	"github.com/booknotes/booknotes/internal/search"
	"github.com/booknotes/booknotes/internal/store"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.NoteIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex builds the in-memory note index from the loaded
// collection and wires it to the store so later changes are indexed.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	st := do.MustInvoke[*store.Store](i)

	index, err := search.NewNoteIndex(log.Logger)
	if err != nil {
		return nil, err
	}

	if err := index.Rebuild(context.Background(), st.Cards()); err != nil {
		_ = index.Close()
		return nil, err
	}
	st.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Debug("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{NoteIndex: index}, nil
}
