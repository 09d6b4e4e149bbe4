package service

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/store"
	"github.com/booknotes/booknotes/internal/validation"
)

// MissingFieldsMessage is reported when a new card lacks a required field.
const MissingFieldsMessage = "Please fill out all fields!"

// CardService adds and deletes cards.
type CardService struct {
	store     *store.Store
	covers    *CoverService
	validator *validation.Validator
	logger    *slog.Logger

	submitting atomic.Bool
}

// NewCardService creates a new card service.
func NewCardService(st *store.Store, coverService *CoverService, logger *slog.Logger) *CardService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CardService{
		store:     st,
		covers:    coverService,
		validator: validation.New(),
		logger:    logger,
	}
}

// Submitting reports whether an Add is in flight.
func (s *CardService) Submitting() bool {
	return s.submitting.Load()
}

// Add validates input, resolves the book's cover and stores a new card.
//
// Invalid input is rejected before any lookup or mutation. Only one Add runs
// at a time; a second call while one is in flight fails with a Conflict.
func (s *CardService) Add(ctx context.Context, input domain.NewCardInput) (domain.Flashcard, error) {
	input = store.NormalizeInput(input)
	if err := s.validator.Validate(&input); err != nil {
		var derr *domainerrors.Error
		if domainerrors.As(err, &derr) {
			return domain.Flashcard{}, domainerrors.ValidationWithDetails(MissingFieldsMessage, derr.Details)
		}
		return domain.Flashcard{}, err
	}

	if !s.submitting.CompareAndSwap(false, true) {
		return domain.Flashcard{}, domainerrors.Conflict("add already in progress")
	}
	defer s.submitting.Store(false)

	coverURL := s.covers.Resolve(ctx, input.Book)

	card, err := s.store.Add(ctx, input, coverURL)
	if err != nil {
		s.logger.Error("failed to save card", "book", input.Book, "error", err)
		return domain.Flashcard{}, err
	}
	return card, nil
}

// DeleteProposal is a pending deletion awaiting confirmation.
type DeleteProposal struct {
	Card   domain.Flashcard
	Prompt string

	oneShot
}

// ProposeDelete looks up the card to delete.
func (s *CardService) ProposeDelete(cardID int64) (*DeleteProposal, error) {
	card, ok := s.store.Get(cardID)
	if !ok {
		return nil, domainerrors.NotFoundf("card %d not found", cardID)
	}
	return &DeleteProposal{Card: card, Prompt: DeletePrompt}, nil
}

// ConfirmDelete carries out a proposal. A proposal can be confirmed once.
func (s *CardService) ConfirmDelete(ctx context.Context, p *DeleteProposal) error {
	if !p.claim() {
		return domainerrors.Conflict("delete already confirmed")
	}
	removed, err := s.store.Remove(ctx, p.Card.ID)
	if err != nil {
		p.release()
		return err
	}
	if !removed {
		return domainerrors.NotFoundf("card %d not found", p.Card.ID)
	}
	return nil
}

// Delete proposes deleting cardID and asks confirm. It reports whether the
// card was deleted; a declined confirmation is not an error.
func (s *CardService) Delete(ctx context.Context, cardID int64, confirm Confirmer) (bool, error) {
	p, err := s.ProposeDelete(cardID)
	if err != nil {
		return false, err
	}
	if !confirm.Confirm(p.Prompt) {
		s.logger.Debug("delete cancelled", "card_id", cardID)
		return false, nil
	}
	if err := s.ConfirmDelete(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}
