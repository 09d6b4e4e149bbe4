package store

import "github.com/booknotes/booknotes/internal/domain"

// EventType names what changed in the collection.
type EventType string

// Event types.
const (
	EventCollectionLoaded   EventType = "collection.loaded"
	EventCardAdded          EventType = "card.added"
	EventCardRemoved        EventType = "card.removed"
	EventDifficultyChanged  EventType = "card.difficulty_changed"
	EventCollectionReplaced EventType = "collection.replaced"
)

// ChangeEvent is emitted after a mutation has been persisted.
// Snapshot is a copy of the whole collection after the change, so listeners
// can rebuild their views without reading back from the store.
type ChangeEvent struct {
	Type     EventType
	Card     *domain.Flashcard // nil for collection-wide events
	Snapshot []domain.Flashcard
}
