// Package review runs a linear pass over one book's cards.
package review

import (
	"context"
	"log/slog"
	"sync"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/id"
)

var (
	// ErrNothingToReview is returned by Start when the book has no cards.
	ErrNothingToReview = domainerrors.NotFound("no notes available to review for this book")
	// ErrNotActive is returned by navigation and marking while the session is closed.
	ErrNotActive = domainerrors.Conflict("review session is not active")
)

// CardSource is the part of the card store a session reads from and writes to.
type CardSource interface {
	CardsForBook(title string) []domain.Flashcard
	UpdateDifficulty(ctx context.Context, cardID int64, d domain.Difficulty) (domain.Flashcard, error)
}

// Session is either closed, or active over a snapshot of one book's cards.
// The snapshot is taken at Start; cards added afterwards are not picked up.
type Session struct {
	mu     sync.Mutex
	source CardSource
	logger *slog.Logger

	id    string
	book  string
	cards []domain.Flashcard
	index int
}

// NewSession creates a closed session over source.
func NewSession(source CardSource, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{source: source, logger: logger}
}

// Start opens the session on book's cards at the first card. When the book
// has no cards the session stays closed and ErrNothingToReview is returned.
// Starting an active session restarts it.
func (s *Session) Start(_ context.Context, book string) error {
	cards := s.source.CardsForBook(book)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(cards) == 0 {
		s.closeLocked()
		return ErrNothingToReview
	}

	s.id = id.MustGenerate("rev")
	s.book = book
	s.cards = cards
	s.index = 0

	s.logger.Debug("review started", "session_id", s.id, "book", book, "cards", len(cards))
	return nil
}

// Active reports whether the session is open.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards != nil
}

// ID returns the current session's id, or "" when closed.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Book returns the title under review, or "" when closed.
func (s *Session) Book() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

// Current returns the card at the current position.
func (s *Session) Current() (domain.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return domain.Flashcard{}, ErrNotActive
	}
	return s.cards[s.index].Clone(), nil
}

// Next moves forward one card. At the last card it stays put.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return ErrNotActive
	}
	if s.index < len(s.cards)-1 {
		s.index++
	}
	return nil
}

// Previous moves back one card. At the first card it stays put.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return ErrNotActive
	}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// MarkDifficulty records hard or easy on the current card and persists it
// through the card source. The position does not change.
func (s *Session) MarkDifficulty(ctx context.Context, d domain.Difficulty) (domain.Flashcard, error) {
	if d != domain.DifficultyHard && d != domain.DifficultyEasy {
		return domain.Flashcard{}, domainerrors.Validationf("difficulty %q cannot be set during review (must be hard or easy)", d)
	}

	// Holding the lock across the write keeps the index stable until the
	// snapshot entry is refreshed.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return domain.Flashcard{}, ErrNotActive
	}

	cardID := s.cards[s.index].ID
	updated, err := s.source.UpdateDifficulty(ctx, cardID, d)
	if err != nil {
		return domain.Flashcard{}, err
	}
	s.cards[s.index] = updated.Clone()

	s.logger.Debug("card marked", "session_id", s.id, "card_id", cardID, "difficulty", d)
	return updated, nil
}

// Progress returns the 1-based position and the number of cards.
// Both are zero when closed.
func (s *Session) Progress() (position, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return 0, 0
	}
	return s.index + 1, len(s.cards)
}

// CanPrevious reports whether Previous would move.
func (s *Session) CanPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards != nil && s.index > 0
}

// CanNext reports whether Next would move.
func (s *Session) CanNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cards != nil && s.index < len(s.cards)-1
}

// Close ends the session and drops the snapshot.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards != nil {
		s.logger.Debug("review closed", "session_id", s.id)
	}
	s.closeLocked()
}

func (s *Session) closeLocked() {
	s.id = ""
	s.book = ""
	s.cards = nil
	s.index = 0
}

// State is a consistent point-in-time view of a session.
type State struct {
	Active      bool
	ID          string
	Book        string
	Card        domain.Flashcard
	Position    int
	Total       int
	CanPrevious bool
	CanNext     bool
}

// State returns the session's current state in one read.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cards == nil {
		return State{}
	}
	return State{
		Active:      true,
		ID:          s.id,
		Book:        s.book,
		Card:        s.cards[s.index].Clone(),
		Position:    s.index + 1,
		Total:       len(s.cards),
		CanPrevious: s.index > 0,
		CanNext:     s.index < len(s.cards)-1,
	}
}
