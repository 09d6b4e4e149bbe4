package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
)

func card(id int64, book string, tags ...string) domain.Flashcard {
	if tags == nil {
		tags = []string{}
	}
	return domain.Flashcard{ID: id, Book: book, Front: "f", Back: "b", Tags: tags, Difficulty: domain.DifficultyNew}
}

func duneCollection() []domain.Flashcard {
	return []domain.Flashcard{
		{ID: 2, Book: "Dune", Front: "A", Back: "B", Tags: []string{}},
		{ID: 1, Book: "Dune", Front: "C", Back: "D", Tags: []string{"sci-fi"}},
	}
}

func TestDuneScenario(t *testing.T) {
	cards := duneCollection()

	filtered := FilterCards(cards, NewFilter("", "sci-fi"))
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), filtered[0].ID)

	groups := Apply(cards, Filter{}, SortDateDesc)
	require.Len(t, groups, 1)
	assert.Equal(t, "Dune", groups[0].Title)
	assert.Equal(t, 2, groups[0].CardCount)
	assert.Equal(t, int64(2), groups[0].LatestID)
}

func TestFilter_SearchMatchesBookSubstringCaseInsensitive(t *testing.T) {
	cards := []domain.Flashcard{card(1, "Dune Messiah"), card(2, "Emma"), card(3, "Children of Dune")}

	got := FilterCards(cards, NewFilter("  DUNE "))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestFilter_TagsAreAnyOf(t *testing.T) {
	cards := []domain.Flashcard{
		card(1, "A", "x"),
		card(2, "B", "y"),
		card(3, "C", "z"),
		card(4, "D"),
	}

	got := FilterCards(cards, NewFilter("", "x", "y"))
	assert.Len(t, got, 2)

	got = FilterCards(cards, NewFilter(""))
	assert.Len(t, got, 4, "empty tag set passes everything")
}

func TestFilter_SearchAndTagsCombine(t *testing.T) {
	cards := []domain.Flashcard{card(1, "Dune", "x"), card(2, "Dune"), card(3, "Emma", "x")}

	got := FilterCards(cards, NewFilter("dune", "x"))
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestApply_Idempotent(t *testing.T) {
	cards := []domain.Flashcard{card(3, "B", "x"), card(2, "A"), card(1, "B")}
	f := NewFilter("", "x")

	first := Apply(cards, f, SortTitleAsc)
	second := Apply(cards, f, SortTitleAsc)
	assert.Equal(t, first, second)
}

func TestGroup_CountsSumToFilteredCards(t *testing.T) {
	cards := []domain.Flashcard{
		card(6, "Emma", "classic"),
		card(5, "Dune", "sci-fi"),
		card(4, "Emma"),
		card(3, "Dune", "classic"),
		card(2, "Ubik", "sci-fi"),
		card(1, "Emma", "classic"),
	}

	for _, f := range []Filter{{}, NewFilter("", "classic"), NewFilter("e"), NewFilter("zzz")} {
		filtered := FilterCards(cards, f)
		sum := 0
		for _, g := range Group(filtered) {
			sum += g.CardCount
		}
		assert.Equal(t, len(filtered), sum)
	}
}

func TestGroup_FirstEncounterOrderAndCover(t *testing.T) {
	first := card(3, "Dune")
	first.CoverURL = domain.StringPtr("https://covers/1-M.jpg")
	later := card(1, "Dune")

	groups := Group([]domain.Flashcard{first, card(2, "Emma"), later})
	require.Len(t, groups, 2)
	assert.Equal(t, "Dune", groups[0].Title)
	assert.Equal(t, "Emma", groups[1].Title)
	require.NotNil(t, groups[0].CoverURL)
	assert.Equal(t, "https://covers/1-M.jpg", *groups[0].CoverURL)
	assert.Equal(t, []int64{3, 1}, []int64{groups[0].Cards[0].ID, groups[0].Cards[1].ID})
}

func TestSort_ByDate(t *testing.T) {
	cards := []domain.Flashcard{card(5, "Middle"), card(9, "Newest"), card(1, "Oldest")}

	titles := func(groups []domain.BookGroup) []string {
		out := make([]string, len(groups))
		for i, g := range groups {
			out[i] = g.Title
		}
		return out
	}

	assert.Equal(t, []string{"Newest", "Middle", "Oldest"}, titles(Apply(cards, Filter{}, SortDateDesc)))
	assert.Equal(t, []string{"Oldest", "Middle", "Newest"}, titles(Apply(cards, Filter{}, SortDateAsc)))
}

func TestSort_TitleDescReversesTitleAsc(t *testing.T) {
	cards := []domain.Flashcard{card(1, "émile"), card(2, "Zebra"), card(3, "apple"), card(4, "Éclair"), card(5, "banana")}

	asc := Apply(cards, Filter{}, SortTitleAsc)
	desc := Apply(cards, Filter{}, SortTitleDesc)
	require.Len(t, desc, len(asc))
	for i := range asc {
		assert.Equal(t, asc[i].Title, desc[len(desc)-1-i].Title)
	}

	// Locale-aware: accents and case do not push titles to the end.
	assert.Equal(t, "apple", asc[0].Title)
	assert.Equal(t, "Zebra", asc[len(asc)-1].Title)
}

func TestSorter_UnknownLocaleFallsBack(t *testing.T) {
	s := NewSorter("!!")
	groups := s.Apply([]domain.Flashcard{card(1, "b"), card(2, "a")}, Filter{}, SortTitleAsc)
	assert.Equal(t, "a", groups[0].Title)
}

func TestParseSortMode(t *testing.T) {
	m, err := ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortDateDesc, m)

	m, err = ParseSortMode("Title-Desc")
	require.NoError(t, err)
	assert.Equal(t, SortTitleDesc, m)

	_, err = ParseSortMode("random")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestTagUniverse(t *testing.T) {
	cards := []domain.Flashcard{card(1, "A", "b", "a"), card(2, "B", "a", "c"), card(3, "C")}
	assert.Equal(t, []string{"a", "b", "c"}, TagUniverse(cards))
	assert.Equal(t, []string{}, TagUniverse(nil))
}

func TestFilter_SelectedTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NewFilter("", "b", " a ", "").SelectedTags())
}
