// Package query derives book groups from the card collection: filtering,
// grouping by book and sorting. Every function here is pure.
package query

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/normalize"
)

// SortMode orders book groups.
type SortMode string

// Sort modes.
const (
	SortDateDesc  SortMode = "date-desc"
	SortDateAsc   SortMode = "date-asc"
	SortTitleAsc  SortMode = "title-asc"
	SortTitleDesc SortMode = "title-desc"
)

// SortModes lists every mode in display order.
var SortModes = []SortMode{SortDateDesc, SortDateAsc, SortTitleAsc, SortTitleDesc}

// ParseSortMode converts user input to a SortMode. Empty input is date-desc.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return SortDateDesc, nil
	}
	m := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortModes, m) {
		return m, nil
	}
	return "", domainerrors.Validationf("unknown sort mode %q (must be date-desc, date-asc, title-asc, or title-desc)", s)
}

// Filter selects which cards contribute to the book groups.
type Filter struct {
	// SearchTerm matches as a substring of the lower-cased book title.
	// NewFilter lower-cases and trims it.
	SearchTerm string
	// Tags passes cards carrying at least one of these tags.
	// An empty set passes everything.
	Tags map[string]struct{}
}

// NewFilter builds a Filter from raw user input.
func NewFilter(search string, tags ...string) Filter {
	f := Filter{SearchTerm: normalize.SearchTerm(search)}
	if len(tags) > 0 {
		f.Tags = make(map[string]struct{}, len(tags))
		for _, t := range normalize.Tags(tags) {
			f.Tags[t] = struct{}{}
		}
	}
	return f
}

// Matches reports whether card passes the filter.
func (f Filter) Matches(card *domain.Flashcard) bool {
	if f.SearchTerm != "" && !strings.Contains(strings.ToLower(card.Book), f.SearchTerm) {
		return false
	}
	if len(f.Tags) == 0 {
		return true
	}
	for _, t := range card.Tags {
		if _, ok := f.Tags[t]; ok {
			return true
		}
	}
	return false
}

// SelectedTags returns the filter's tag set in sorted order.
func (f Filter) SelectedTags() []string {
	out := make([]string, 0, len(f.Tags))
	for t := range f.Tags {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// FilterCards returns the cards passing f, in their original order.
func FilterCards(cards []domain.Flashcard, f Filter) []domain.Flashcard {
	out := make([]domain.Flashcard, 0, len(cards))
	for i := range cards {
		if f.Matches(&cards[i]) {
			out = append(out, cards[i])
		}
	}
	return out
}

// Group collects cards by exact book title. Groups appear in the order their
// first card appears; a group's cover is that of its first card.
func Group(cards []domain.Flashcard) []domain.BookGroup {
	index := make(map[string]int)
	var groups []domain.BookGroup
	for _, c := range cards {
		i, ok := index[c.Book]
		if !ok {
			i = len(groups)
			index[c.Book] = i
			groups = append(groups, domain.BookGroup{
				Title:    c.Book,
				CoverURL: c.CoverURL,
				LatestID: c.ID,
			})
		}
		g := &groups[i]
		g.Cards = append(g.Cards, c)
		g.CardCount++
		g.LatestID = max(g.LatestID, c.ID)
	}
	return groups
}

// Sorter orders book groups. Title collation follows its locale.
type Sorter struct {
	locale language.Tag
}

// NewSorter creates a Sorter for a BCP 47 locale. An unparseable locale
// falls back to English.
func NewSorter(locale string) *Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Sorter{locale: tag}
}

// Sort orders groups in place. The sort is stable, so groups that compare
// equal keep their first-encounter order.
func (s *Sorter) Sort(groups []domain.BookGroup, mode SortMode) {
	switch mode {
	case SortDateAsc:
		slices.SortStableFunc(groups, func(a, b domain.BookGroup) int {
			return cmp.Compare(a.LatestID, b.LatestID)
		})
	case SortTitleAsc, SortTitleDesc:
		// Collators are not safe for concurrent use.
		c := collate.New(s.locale)
		dir := 1
		if mode == SortTitleDesc {
			dir = -1
		}
		slices.SortStableFunc(groups, func(a, b domain.BookGroup) int {
			return dir * c.CompareString(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(groups, func(a, b domain.BookGroup) int {
			return cmp.Compare(b.LatestID, a.LatestID)
		})
	}
}

// Apply filters, groups and sorts the collection in one step.
func (s *Sorter) Apply(cards []domain.Flashcard, f Filter, mode SortMode) []domain.BookGroup {
	groups := Group(FilterCards(cards, f))
	s.Sort(groups, mode)
	return groups
}

// Apply is Sorter.Apply with English collation.
func Apply(cards []domain.Flashcard, f Filter, mode SortMode) []domain.BookGroup {
	return NewSorter("en").Apply(cards, f, mode)
}

// TagUniverse returns every distinct tag in the collection, sorted.
func TagUniverse(cards []domain.Flashcard) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range cards {
		for _, t := range c.Tags {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	if out == nil {
		out = []string{}
	}
	return out
}
