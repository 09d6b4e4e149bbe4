package store

import (
	"context"
	"slices"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/normalize"
)

// Add validates input, assigns an id and prepends the new card.
// coverURL is stored as given; nil means no cover was found.
func (s *Store) Add(ctx context.Context, input domain.NewCardInput, coverURL *string) (domain.Flashcard, error) {
	input = NormalizeInput(input)
	if err := s.validator.Validate(&input); err != nil {
		return domain.Flashcard{}, err
	}

	card := domain.Flashcard{
		Book:       input.Book,
		Front:      input.Front,
		Back:       input.Back,
		Page:       input.Page,
		Tags:       input.Tags,
		Difficulty: domain.DifficultyNew,
	}
	if coverURL != nil {
		u := *coverURL
		card.CoverURL = &u
	}

	s.mu.Lock()
	card.ID = s.clock.Next()
	next := make([]domain.Flashcard, 0, len(s.cards)+1)
	next = append(next, card)
	next = append(next, s.cards...)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Flashcard{}, err
	}
	s.mu.Unlock()

	s.logger.Info("card added", "card_id", card.ID, "book", card.Book)

	out := card.Clone()
	s.indexLogged(ctx, &out)
	s.emit(EventCardAdded, &out)
	return out.Clone(), nil
}

// Remove deletes the card with the given id. It reports false, and persists
// nothing, when no such card exists.
func (s *Store) Remove(ctx context.Context, cardID int64) (bool, error) {
	s.mu.Lock()
	idx := s.indexLocked(cardID)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.cards[idx].Clone()
	next := slices.Delete(slices.Clone(s.cards), idx, idx+1)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return false, err
	}
	s.mu.Unlock()

	s.logger.Info("card removed", "card_id", cardID, "book", removed.Book)

	if err := s.searchIndexer.DeleteCard(ctx, cardID); err != nil {
		s.logger.Warn("failed to remove card from search index", "card_id", cardID, "error", err)
	}
	s.emit(EventCardRemoved, &removed)
	return true, nil
}

// UpdateDifficulty records a review outcome on the canonical card.
func (s *Store) UpdateDifficulty(ctx context.Context, cardID int64, d domain.Difficulty) (domain.Flashcard, error) {
	if !d.Valid() {
		return domain.Flashcard{}, domainerrors.Validationf("difficulty %q must be one of new, hard, easy", d)
	}

	s.mu.Lock()
	idx := s.indexLocked(cardID)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Flashcard{}, domainerrors.NotFoundf("card %d not found", cardID)
	}
	next := slices.Clone(s.cards)
	next[idx].Difficulty = d
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return domain.Flashcard{}, err
	}
	updated := next[idx].Clone()
	s.mu.Unlock()

	s.logger.Debug("difficulty updated", "card_id", cardID, "difficulty", d)

	s.indexLogged(ctx, &updated)
	s.emit(EventDifficultyChanged, &updated)
	return updated.Clone(), nil
}

// ReplaceAll overwrites the whole collection. cards are validated again so
// the canonical collection never holds a record an import would reject.
func (s *Store) ReplaceAll(ctx context.Context, cards []domain.Flashcard) error {
	next := make([]domain.Flashcard, len(cards))
	for i := range cards {
		next[i] = cards[i].Clone()
		next[i].Normalize()
	}
	if err := s.validator.Collection(next); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	for i := range next {
		s.clock.Observe(next[i].ID)
	}

	s.logger.Info("collection replaced", "cards", len(next))

	if err := s.searchIndexer.Rebuild(ctx, s.Cards()); err != nil {
		s.logger.Warn("failed to rebuild search index", "error", err)
	}
	s.emit(EventCollectionReplaced, nil)
	return nil
}

// Cards returns a copy of the collection, newest first.
func (s *Store) Cards() []domain.Flashcard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Flashcard, len(s.cards))
	for i := range s.cards {
		out[i] = s.cards[i].Clone()
	}
	return out
}

// Get returns the card with the given id.
func (s *Store) Get(cardID int64) (domain.Flashcard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(cardID)
	if idx < 0 {
		return domain.Flashcard{}, false
	}
	return s.cards[idx].Clone(), true
}

// CardsForBook returns the cards whose book matches title exactly, in
// collection order.
func (s *Store) CardsForBook(title string) []domain.Flashcard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Flashcard
	for i := range s.cards {
		if s.cards[i].Book == title {
			out = append(out, s.cards[i].Clone())
		}
	}
	return out
}

// BookCover returns the cover of the first card for title and whether any
// card for title exists. The cover may be nil even when ok is true.
func (s *Store) BookCover(title string) (coverURL *string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.cards {
		if s.cards[i].Book == title {
			return s.cards[i].Clone().CoverURL, true
		}
	}
	return nil, false
}

// Len returns the number of cards.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cards)
}

func (s *Store) indexLocked(cardID int64) int {
	return slices.IndexFunc(s.cards, func(c domain.Flashcard) bool { return c.ID == cardID })
}

// NormalizeInput trims every field and drops empty tags.
func NormalizeInput(in domain.NewCardInput) domain.NewCardInput {
	return domain.NewCardInput{
		Book:  normalize.Text(in.Book),
		Front: normalize.Text(in.Front),
		Back:  normalize.Text(in.Back),
		Page:  normalize.Text(in.Page),
		Tags:  normalize.Tags(in.Tags),
	}
}
