package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("Dark")
	assert.Error(t, err)
	_, err = ParseTheme("")
	assert.Error(t, err)
}

func TestTheme_Toggle(t *testing.T) {
	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
}
