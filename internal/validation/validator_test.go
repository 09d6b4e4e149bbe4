package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/validation"
)

func TestValidator_ValidCard(t *testing.T) {
	v := validation.New()

	err := v.Validate(domain.NewCardInput{Book: "Dune", Front: "A", Back: "B", Tags: []string{"sci-fi"}})
	assert.NoError(t, err)
}

func TestValidator_MissingFields(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: test table
	tests := []struct {
		name      string
		input     domain.NewCardInput
		wantField string
	}{
		{"missing book", domain.NewCardInput{Front: "A", Back: "B"}, "book"},
		{"missing front", domain.NewCardInput{Book: "Dune", Back: "B"}, "front"},
		{"missing back", domain.NewCardInput{Book: "Dune", Front: "A"}, "back"},
		{"empty tag", domain.NewCardInput{Book: "Dune", Front: "A", Back: "B", Tags: []string{"ok", ""}}, "tags[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			details, ok := derr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, "is required", details[tt.wantField])
			assert.Contains(t, derr.Message, tt.wantField)
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Var("dark", "oneof=light dark"))
	assert.Error(t, v.Var("blue", "oneof=light dark"))
}
