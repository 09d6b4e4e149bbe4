package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Dune  ", "Dune"},
		{"Dune\x00", "Dune"},
		{"\tThe Hobbit\n", "The Hobbit"},
		{"", ""},
		{"   ", ""},
		// "é" as e + combining acute composes to the single code point.
		{"Les Mise\u0301rables", "Les Mis\u00e9rables"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(tt.input))
		})
	}
}

func TestTags(t *testing.T) {
	assert.Equal(t, []string{"sci-fi", "classic", "sci-fi"}, Tags([]string{" sci-fi", "", "classic ", "sci-fi"}))
	assert.Equal(t, []string{}, Tags(nil))
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"sci-fi", "classic"}, SplitTags("sci-fi, classic"))
	assert.Equal(t, []string{"a", "b"}, SplitTags("a,,b,"))
	assert.Equal(t, []string{}, SplitTags("  "))
}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "dune", SearchTerm("  DUNE "))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Dune Messiah", "dune-messiah"},
		{"Les Misérables", "les-miserables"},
		{"Sci-Fi/Fantasy", "sci-fi-fantasy"},
		{"  --Hello--  ", "hello"},
		{"1984", "1984"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slug(tt.input))
		})
	}
}
