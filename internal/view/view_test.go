package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/query"
	"github.com/booknotes/booknotes/internal/review"
)

func TestCollection_Empty(t *testing.T) {
	v := Collection(nil, nil)
	assert.True(t, v.Empty)
	assert.Equal(t, "Your collection is empty. Add a note to start!", v.EmptyMessage)
	assert.NotNil(t, v.Books)
}

func TestCollection_Books(t *testing.T) {
	cover := "https://covers.openlibrary.org/b/id/1-M.jpg"
	v := Collection([]domain.BookGroup{
		{Title: "Dune", CoverURL: &cover, CardCount: 2, LatestID: 3},
		{Title: "Emma", CardCount: 1, LatestID: 1},
	}, nil)

	require.Len(t, v.Books, 2)
	assert.False(t, v.Empty)
	assert.Empty(t, v.EmptyMessage)

	assert.Equal(t, "Dune", v.Books[0].Title)
	assert.True(t, v.Books[0].HasCover)
	assert.Empty(t, v.Books[0].Placeholder)
	assert.Equal(t, "2 note(s)", v.Books[0].CountLabel)

	assert.False(t, v.Books[1].HasCover)
	assert.Nil(t, v.Books[1].CoverURL)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, v.Books[1].Placeholder)
	assert.Equal(t, "1 note(s)", v.Books[1].CountLabel)
}

func TestCollection_LocalCovers(t *testing.T) {
	cover := "https://covers.openlibrary.org/b/id/1-M.jpg"
	local := map[string]LocalCover{
		"Dune": {Path: "/data/covers/dune-1a2b3c4d.jpg", BlurHash: "LEHV6nWB2yk8"},
		"Emma": {Path: "/data/covers/emma.jpg", BlurHash: "stale"},
	}
	v := Collection([]domain.BookGroup{
		{Title: "Dune", CoverURL: &cover, CardCount: 1},
		{Title: "Emma", CardCount: 1},
	}, local)

	assert.Equal(t, "/data/covers/dune-1a2b3c4d.jpg", v.Books[0].LocalCover)
	assert.Equal(t, "LEHV6nWB2yk8", v.Books[0].BlurHash)

	// A book without a cover URL keeps its placeholder even if a file lingers.
	assert.Empty(t, v.Books[1].LocalCover)
	assert.Empty(t, v.Books[1].BlurHash)
	assert.NotEmpty(t, v.Books[1].Placeholder)
}

func TestNotes(t *testing.T) {
	v := Notes("Dune", []domain.Flashcard{
		{ID: 2, Book: "Dune", Front: "Q", Back: "A", Page: "12", Difficulty: domain.DifficultyHard},
	})
	assert.Equal(t, `Notes for "Dune"`, v.Heading)
	require.Len(t, v.Notes, 1)
	assert.Equal(t, "12", v.Notes[0].Page)
	assert.Equal(t, []string{}, v.Notes[0].Tags)
	assert.Equal(t, domain.DifficultyHard, v.Notes[0].Difficulty)
}

func TestReview(t *testing.T) {
	assert.Equal(t, ReviewView{}, Review(review.State{}))

	v := Review(review.State{
		Active:      true,
		Book:        "Dune",
		Card:        domain.Flashcard{ID: 1, Front: "Q", Back: "A", Difficulty: domain.DifficultyEasy},
		Position:    2,
		Total:       3,
		CanPrevious: true,
		CanNext:     true,
	})
	assert.True(t, v.Active)
	assert.Equal(t, "Card 2 of 3", v.Progress)
	assert.Equal(t, "Q", v.Front)
	assert.True(t, v.PrevEnabled)
	assert.True(t, v.NextEnabled)
	assert.Equal(t, domain.DifficultyEasy, v.Difficulty)
}

func TestFilters(t *testing.T) {
	v := Filters([]string{"classic", "sci-fi"}, query.NewFilter(" DUNE ", "sci-fi"))
	assert.Equal(t, "dune", v.SearchTerm)
	assert.Equal(t, []TagChoice{
		{Tag: "classic", Selected: false},
		{Tag: "sci-fi", Selected: true},
	}, v.Tags)
	assert.Equal(t, []string{"sci-fi"}, v.Selected)
}
