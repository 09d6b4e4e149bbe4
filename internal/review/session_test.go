package review

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/store"
)

func setupSession(t *testing.T, fronts ...string) (*Session, *store.Store) {
	t.Helper()
	ctx := context.Background()
	st := store.New(kv.NewMemory(), nil, nil)
	require.NoError(t, st.Load(ctx))
	for _, f := range fronts {
		_, err := st.Add(ctx, domain.NewCardInput{Book: "Dune", Front: f, Back: "b"}, nil)
		require.NoError(t, err)
	}
	_, err := st.Add(ctx, domain.NewCardInput{Book: "Emma", Front: "other", Back: "b"}, nil)
	require.NoError(t, err)
	return NewSession(st, nil), st
}

func TestStart_EmptyBookStaysClosed(t *testing.T) {
	s, _ := setupSession(t)

	err := s.Start(context.Background(), "Dune")
	assert.ErrorIs(t, err, ErrNothingToReview)
	assert.False(t, s.Active())
	assert.Equal(t, State{}, s.State())
}

func TestStart_SnapshotsExactBook(t *testing.T) {
	s, _ := setupSession(t, "q1", "q2", "q3")

	require.NoError(t, s.Start(context.Background(), "Dune"))
	assert.True(t, s.Active())
	assert.True(t, strings.HasPrefix(s.ID(), "rev-"))
	assert.Equal(t, "Dune", s.Book())

	pos, total := s.Progress()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 3, total)

	card, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, "q3", card.Front, "collection order is newest first")
}

func TestNavigation_Clamps(t *testing.T) {
	s, _ := setupSession(t, "a", "b")
	require.NoError(t, s.Start(context.Background(), "Dune"))

	assert.False(t, s.CanPrevious())
	assert.True(t, s.CanNext())

	require.NoError(t, s.Previous())
	pos, _ := s.Progress()
	assert.Equal(t, 1, pos, "previous at first card is a no-op")

	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	pos, total := s.Progress()
	assert.Equal(t, 2, pos, "next at last card is a no-op")
	assert.Equal(t, 2, total)
	assert.False(t, s.CanNext())
	assert.True(t, s.CanPrevious())
}

func TestSingleCardSession(t *testing.T) {
	s, _ := setupSession(t, "only")
	require.NoError(t, s.Start(context.Background(), "Dune"))

	assert.False(t, s.CanPrevious())
	assert.False(t, s.CanNext())
}

func TestClosedSessionRejectsNavigation(t *testing.T) {
	s, _ := setupSession(t, "a")

	assert.ErrorIs(t, s.Next(), ErrNotActive)
	assert.ErrorIs(t, s.Previous(), ErrNotActive)
	_, err := s.Current()
	assert.ErrorIs(t, err, ErrNotActive)
	_, err = s.MarkDifficulty(context.Background(), domain.DifficultyHard)
	assert.ErrorIs(t, err, ErrNotActive)

	require.NoError(t, s.Start(context.Background(), "Dune"))
	s.Close()
	assert.False(t, s.Active())
	assert.Empty(t, s.ID())
	assert.ErrorIs(t, s.Next(), ErrNotActive)
}

func TestMarkDifficulty_WritesThroughAndStays(t *testing.T) {
	ctx := context.Background()
	s, st := setupSession(t, "a", "b")
	require.NoError(t, s.Start(ctx, "Dune"))
	require.NoError(t, s.Next())

	current, _ := s.Current()
	updated, err := s.MarkDifficulty(ctx, domain.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, current.ID, updated.ID)
	assert.Equal(t, domain.DifficultyHard, updated.Difficulty)

	stored, ok := st.Get(current.ID)
	require.True(t, ok)
	assert.Equal(t, domain.DifficultyHard, stored.Difficulty)

	pos, _ := s.Progress()
	assert.Equal(t, 2, pos, "marking does not advance")
	assert.Equal(t, domain.DifficultyHard, s.State().Card.Difficulty)

	_, err = s.MarkDifficulty(ctx, domain.DifficultyEasy)
	require.NoError(t, err)
	stored, _ = st.Get(current.ID)
	assert.Equal(t, domain.DifficultyEasy, stored.Difficulty)
}

func TestMarkDifficulty_RejectsNew(t *testing.T) {
	ctx := context.Background()
	s, _ := setupSession(t, "a")
	require.NoError(t, s.Start(ctx, "Dune"))

	_, err := s.MarkDifficulty(ctx, domain.DifficultyNew)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestMarkDifficulty_CardRemovedMidSession(t *testing.T) {
	ctx := context.Background()
	s, st := setupSession(t, "a")
	require.NoError(t, s.Start(ctx, "Dune"))

	current, _ := s.Current()
	_, err := st.Remove(ctx, current.ID)
	require.NoError(t, err)

	_, err = s.MarkDifficulty(ctx, domain.DifficultyEasy)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestState(t *testing.T) {
	s, _ := setupSession(t, "a", "b", "c")
	require.NoError(t, s.Start(context.Background(), "Dune"))
	require.NoError(t, s.Next())

	st := s.State()
	assert.True(t, st.Active)
	assert.Equal(t, 2, st.Position)
	assert.Equal(t, 3, st.Total)
	assert.True(t, st.CanPrevious)
	assert.True(t, st.CanNext)
	assert.Equal(t, "b", st.Card.Front)
}

func TestSessionErrors_AreCoded(t *testing.T) {
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(ErrNothingToReview))
	assert.Equal(t, domainerrors.CodeConflict, domainerrors.CodeOf(ErrNotActive))
}
