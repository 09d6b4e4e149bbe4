package search

import (
	"strconv"

	"github.com/booknotes/booknotes/internal/domain"
)

// NoteDocument is the indexed form of a card.
type NoteDocument struct {
	ID         string
	Book       string
	Front      string
	Back       string
	Tags       []string
	Difficulty string
}

// ToMap converts the document to a map so field names match the mapping.
func (d *NoteDocument) ToMap() map[string]any {
	return map[string]any{
		"book":       d.Book,
		"front":      d.Front,
		"back":       d.Back,
		"tags":       d.Tags,
		"difficulty": d.Difficulty,
	}
}

// CardToDocument converts a card to a search document.
func CardToDocument(card *domain.Flashcard) *NoteDocument {
	return &NoteDocument{
		ID:         docID(card.ID),
		Book:       card.Book,
		Front:      card.Front,
		Back:       card.Back,
		Tags:       card.Tags,
		Difficulty: string(card.Difficulty),
	}
}

func docID(cardID int64) string {
	return strconv.FormatInt(cardID, 10)
}
