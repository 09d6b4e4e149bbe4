package backup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
)

func sampleCards() []domain.Flashcard {
	return []domain.Flashcard{
		{
			ID: 1700000000002, Book: "Dune", Front: "Who is the Kwisatz Haderach?", Back: "Paul",
			Page: "412", Tags: []string{"sci-fi", "classic"},
			CoverURL: domain.StringPtr("https://covers.openlibrary.org/b/id/123-M.jpg"), Difficulty: domain.DifficultyHard,
		},
		{ID: 1700000000001, Book: "Emma", Front: "Setting?", Back: "Highbury", Tags: []string{}, Difficulty: domain.DifficultyNew},
	}
}

func TestRoundTrip(t *testing.T) {
	cards := sampleCards()

	data, err := Encode(cards)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, cards, got)
}

func TestEncode_PrettyArray(t *testing.T) {
	data, err := Encode(sampleCards()[1:])
	require.NoError(t, err)

	want := `[
  {
    "id": 1700000000001,
    "book": "Emma",
    "front": "Setting?",
    "back": "Highbury",
    "tags": [],
    "coverUrl": null,
    "difficulty": "new"
  }
]`
	assert.Equal(t, want, string(data))

	empty, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}

func TestDecode_OlderRecordsGetDefaults(t *testing.T) {
	raw := `[{"id": 1699999999999, "book": "Dune", "front": "f", "back": "b", "coverUrl": null}]`

	cards, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, []string{}, cards[0].Tags)
	assert.Equal(t, domain.DifficultyNew, cards[0].Difficulty)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *domainerrors.Error
	}{
		{"not json", `{"a":`, domainerrors.ErrParse},
		{"empty input", ``, domainerrors.ErrParse},
		{"object top level", `{"a":1}`, domainerrors.ErrSchema},
		{"null top level", `null`, domainerrors.ErrSchema},
		{"number element", `[1]`, domainerrors.ErrSchema},
		{"string id", `[{"id":"x","book":"B","front":"f","back":"b"}]`, domainerrors.ErrSchema},
		{"tags not a list", `[{"id":1,"book":"B","front":"f","back":"b","tags":"x"}]`, domainerrors.ErrSchema},
		{"missing front", `[{"id":1,"book":"B","back":"b"}]`, domainerrors.ErrSchema},
		{"zero id", `[{"id":0,"book":"B","front":"f","back":"b"}]`, domainerrors.ErrSchema},
		{"bad difficulty", `[{"id":1,"book":"B","front":"f","back":"b","difficulty":"medium"}]`, domainerrors.ErrSchema},
		{"duplicate id", `[{"id":1,"book":"B","front":"f","back":"b"},{"id":1,"book":"C","front":"f","back":"b"}]`, domainerrors.ErrSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecode_EmptyArray(t *testing.T) {
	cards, err := Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestFilename(t *testing.T) {
	local := time.Date(2024, time.March, 9, 23, 30, 0, 0, time.Local)
	assert.Equal(t, "book-notes-backup-2024-03-09.json", Filename(local))
}

type staticCards []domain.Flashcard

func (s staticCards) Cards() []domain.Flashcard { return s }

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewExporter(staticCards(sampleCards()))
	e.now = func() time.Time { return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.Local) }

	res, err := e.Export(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "book-notes-backup-2024-06-01.json"), res.Path)
	assert.Equal(t, 2, res.Count)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), res.Size)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Checksum)

	cards, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, sampleCards(), cards)

	_, err = os.Stat(res.Path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is cleaned up")
}

func TestImportProposal(t *testing.T) {
	p := NewImportProposal(sampleCards(), 5)

	assert.Equal(t, 2, p.Incoming)
	assert.Equal(t, 5, p.Current)
	assert.True(t, strings.Contains(p.Prompt, "replace all 5"))
}
