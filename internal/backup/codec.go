// Package backup encodes the collection as a portable JSON file and decodes
// such files back into cards ready to replace the collection.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/validation"
)

var validate = validation.New()

// Encode renders cards as a JSON array indented by two spaces, in order.
func Encode(cards []domain.Flashcard) ([]byte, error) {
	out := make([]domain.Flashcard, len(cards))
	for i := range cards {
		out[i] = cards[i].Clone()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode backup")
	}
	return data, nil
}

// Filename names a backup taken at t: book-notes-backup-YYYY-MM-DD.json,
// using t's date in the local time zone.
func Filename(t time.Time) string {
	return "book-notes-backup-" + t.Local().Format(time.DateOnly) + ".json"
}

// Decode parses a backup file.
//
// Input that is not JSON at all fails with a Parse error. Anything else that
// is not an array of valid card records fails with a Schema error: a
// non-array top level, non-object elements, wrongly typed fields, missing or
// empty book/front/back, an id that is not positive, an unknown difficulty,
// or a repeated id. Records from older versions without tags or difficulty
// are accepted and filled with defaults.
func Decode(raw []byte) ([]domain.Flashcard, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, domainerrors.Parse("backup is not valid JSON", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil || records == nil {
		return nil, domainerrors.Schema("backup must be a JSON array of cards")
	}

	cards := make([]domain.Flashcard, len(records))
	for i, rec := range records {
		if !bytes.HasPrefix(bytes.TrimSpace(rec), []byte("{")) {
			return nil, domainerrors.Schemaf("record %d is not an object", i)
		}
		if err := json.Unmarshal(rec, &cards[i]); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				return nil, domainerrors.Schemaf("record %d: field %q has the wrong type", i, typeErr.Field)
			}
			return nil, domainerrors.Schemaf("record %d: %v", i, err)
		}
		cards[i].Normalize()
	}

	if err := validate.Collection(cards); err != nil {
		var derr *domainerrors.Error
		if errors.As(err, &derr) {
			return nil, domainerrors.Schema(derr.Message).WithDetails(derr.Details)
		}
		return nil, domainerrors.Schema(err.Error())
	}

	return cards, nil
}
