// Package view turns collection and review state into the values a front
// end renders. Every function here is pure.
package view

import (
	"fmt"

	"github.com/booknotes/booknotes/internal/color"
	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/query"
	"github.com/booknotes/booknotes/internal/review"
)

// EmptyCollectionMessage is shown when no book group survives filtering.
const EmptyCollectionMessage = "Your collection is empty. Add a note to start!"

// NothingToReviewMessage is shown when a review is started for a book with no cards.
const NothingToReviewMessage = "No notes available to review for this book."

// Book is one entry of the collection grid.
type Book struct {
	Title      string  `json:"title"`
	CoverURL   *string `json:"coverUrl"`
	HasCover   bool    `json:"hasCover"`
	CardCount  int     `json:"cardCount"`
	CountLabel string  `json:"countLabel"`

	// Placeholder is the tile colour shown when there is no cover.
	Placeholder string `json:"placeholder,omitempty"`

	// LocalCover and BlurHash are set once the cover is in the local cache.
	LocalCover string `json:"localCover,omitempty"`
	BlurHash   string `json:"blurHash,omitempty"`
}

// LocalCover is a book cover mirrored on local disk.
type LocalCover struct {
	Path     string
	BlurHash string
}

// CollectionView is the grouped, filtered, sorted collection.
type CollectionView struct {
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
	Books        []Book `json:"books"`
}

// Collection builds the collection view from ordered book groups. local maps
// book titles to their cached covers and may be nil.
func Collection(groups []domain.BookGroup, local map[string]LocalCover) CollectionView {
	if len(groups) == 0 {
		return CollectionView{Empty: true, EmptyMessage: EmptyCollectionMessage, Books: []Book{}}
	}

	books := make([]Book, len(groups))
	for i, g := range groups {
		books[i] = Book{
			Title:      g.Title,
			CoverURL:   g.CoverURL,
			HasCover:   g.CoverURL != nil,
			CardCount:  g.CardCount,
			CountLabel: CountLabel(g.CardCount),
		}
		if g.CoverURL == nil {
			books[i].Placeholder = color.ForTitle(g.Title)
			continue
		}
		if lc, ok := local[g.Title]; ok {
			books[i].LocalCover = lc.Path
			books[i].BlurHash = lc.BlurHash
		}
	}
	return CollectionView{Books: books}
}

// CountLabel formats a card count, e.g. "3 note(s)".
func CountLabel(n int) string {
	return fmt.Sprintf("%d note(s)", n)
}

// Note is one card in the notes list of a book.
type Note struct {
	ID         int64             `json:"id"`
	Front      string            `json:"front"`
	Back       string            `json:"back"`
	Page       string            `json:"page,omitempty"`
	Tags       []string          `json:"tags"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

// NotesView lists the cards of one book.
type NotesView struct {
	Heading string `json:"heading"`
	Notes   []Note `json:"notes"`
}

// Notes builds the notes view for book from cards, which are expected to
// already be filtered to that book.
func Notes(book string, cards []domain.Flashcard) NotesView {
	notes := make([]Note, len(cards))
	for i, c := range cards {
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		notes[i] = Note{
			ID:         c.ID,
			Front:      c.Front,
			Back:       c.Back,
			Page:       c.Page,
			Tags:       tags,
			Difficulty: c.Difficulty,
		}
	}
	return NotesView{Heading: fmt.Sprintf("Notes for %q", book), Notes: notes}
}

// ReviewView is the card currently shown in a review session.
type ReviewView struct {
	Active      bool              `json:"active"`
	Book        string            `json:"book,omitempty"`
	Front       string            `json:"front,omitempty"`
	Back        string            `json:"back,omitempty"`
	Page        string            `json:"page,omitempty"`
	Progress    string            `json:"progress,omitempty"`
	PrevEnabled bool              `json:"prevEnabled"`
	NextEnabled bool              `json:"nextEnabled"`
	Difficulty  domain.Difficulty `json:"difficulty,omitempty"`
}

// Review builds the review view from a session snapshot.
func Review(state review.State) ReviewView {
	if !state.Active {
		return ReviewView{}
	}
	return ReviewView{
		Active:      true,
		Book:        state.Book,
		Front:       state.Card.Front,
		Back:        state.Card.Back,
		Page:        state.Card.Page,
		Progress:    fmt.Sprintf("Card %d of %d", state.Position, state.Total),
		PrevEnabled: state.CanPrevious,
		NextEnabled: state.CanNext,
		Difficulty:  state.Card.Difficulty,
	}
}

// TagChoice is one selectable tag in the filter bar.
type TagChoice struct {
	Tag      string `json:"tag"`
	Selected bool   `json:"selected"`
}

// FiltersView is the filter bar: the search box and the tag choices.
type FiltersView struct {
	SearchTerm string      `json:"searchTerm"`
	Tags       []TagChoice `json:"tags"`
	Selected   []string    `json:"selected"`
}

// Filters marks which tags of universe are selected in filter.
func Filters(universe []string, filter query.Filter) FiltersView {
	choices := make([]TagChoice, len(universe))
	for i, tag := range universe {
		_, selected := filter.Tags[tag]
		choices[i] = TagChoice{Tag: tag, Selected: selected}
	}
	return FiltersView{SearchTerm: filter.SearchTerm, Tags: choices, Selected: filter.SelectedTags()}
}
