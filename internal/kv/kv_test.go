package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	b, err := OpenBadger(filepath.Join(dir, "badger"), nil)
	require.NoError(t, err)
	s, err := OpenSQLite(filepath.Join(dir, "kv.sqlite"), nil)
	require.NoError(t, err)

	stores := map[string]Store{
		BackendBadger: b,
		BackendSQLite: s,
		BackendMemory: NewMemory(),
	}
	t.Cleanup(func() {
		for _, st := range stores {
			_ = st.Close()
		}
	})
	return stores
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(ctx, "bookNotesFlashcards")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Set(ctx, "bookNotesFlashcards", []byte(`[]`)))
			require.NoError(t, st.Set(ctx, "bookNotesFlashcards", []byte(`[{"id":1}]`)))

			got, err := st.Get(ctx, "bookNotesFlashcards")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":1}]`, string(got))

			require.NoError(t, st.Remove(ctx, "bookNotesFlashcards"))
			_, err = st.Get(ctx, "bookNotesFlashcards")
			require.ErrorIs(t, err, ErrNotFound)

			// Removing twice is fine.
			require.NoError(t, st.Remove(ctx, "bookNotesFlashcards"))
		})
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Set(ctx, "bookNotesTheme", []byte("dark")))
			require.NoError(t, st.Set(ctx, "bookNotesFlashcards", []byte(`[]`)))

			theme, err := st.Get(ctx, "bookNotesTheme")
			require.NoError(t, err)
			assert.Equal(t, "dark", string(theme))
		})
	}
}

func TestBadger_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db")

	b, err := OpenBadger(path, nil)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, "k", []byte("v")))
	require.NoError(t, b.Close())

	b, err = OpenBadger(path, nil)
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	keys, err := b.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("postgres", t.TempDir(), nil)
	assert.Error(t, err)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", []byte("abc")))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'x'

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
