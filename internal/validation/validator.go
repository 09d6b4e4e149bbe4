// Package validation wraps go-playground/validator with domain error conversion.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/booknotes/booknotes/internal/domain"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reports fields by their JSON names.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a Validation domain error whose
// details map each failing field to a readable message.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field any, tag string) error {
	return v.v.Var(field, tag)
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	fields := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := fieldPath(e)
		fieldErrors[field] = friendlyMessage(e)
		fields = append(fields, field+" "+fieldErrors[field])
	}

	return domainerrors.ValidationWithDetails(strings.Join(fields, "; "), fieldErrors)
}

// fieldPath drops the top-level struct name: "NewCardInput.tags[0]" -> "tags[0]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s", e.Param())
	case "gt":
		return "must be greater than " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

// Collection validates every card and checks that ids are unique.
// The returned Validation error names the offending record by index.
func (v *Validator) Collection(cards []domain.Flashcard) error {
	seen := make(map[int64]int, len(cards))
	for i := range cards {
		if err := v.Validate(&cards[i]); err != nil {
			var derr *domainerrors.Error
			if errors.As(err, &derr) {
				return domainerrors.ValidationWithDetails(fmt.Sprintf("record %d: %s", i, derr.Message), derr.Details)
			}
			return err
		}
		if j, dup := seen[cards[i].ID]; dup {
			return domainerrors.Validationf("record %d: id %d duplicates record %d", i, cards[i].ID, j)
		}
		seen[cards[i].ID] = i
	}
	return nil
}
