package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/store"
)

// PreferenceService stores user preferences beside the collection.
type PreferenceService struct {
	kv     kv.Store
	logger *slog.Logger
}

// NewPreferenceService creates a new preference service.
func NewPreferenceService(kvStore kv.Store, logger *slog.Logger) *PreferenceService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PreferenceService{kv: kvStore, logger: logger}
}

// Theme returns the saved theme, light when none is saved or the saved
// value is not a theme.
func (s *PreferenceService) Theme(ctx context.Context) (domain.Theme, error) {
	raw, err := s.kv.Get(ctx, store.ThemeKey)
	if errors.Is(err, kv.ErrNotFound) {
		return domain.ThemeLight, nil
	}
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "read theme")
	}

	theme, perr := domain.ParseTheme(string(raw))
	if perr != nil {
		s.logger.Warn("ignoring unknown saved theme", "value", string(raw))
		return domain.ThemeLight, nil
	}
	return theme, nil
}

// SetTheme saves theme.
func (s *PreferenceService) SetTheme(ctx context.Context, theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return domainerrors.Validation(err.Error())
	}
	if err := s.kv.Set(ctx, store.ThemeKey, []byte(theme)); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "save theme")
	}
	return nil
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *PreferenceService) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	current, err := s.Theme(ctx)
	if err != nil {
		return "", err
	}
	next := current.Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
