// Package domain contains the core entities of booknotes.
package domain

import (
	"fmt"
	"slices"
)

// Difficulty is the self-assessed difficulty recorded during review.
// It is data only and never influences review order.
type Difficulty string

// Difficulty values.
const (
	DifficultyNew  Difficulty = "new"
	DifficultyHard Difficulty = "hard"
	DifficultyEasy Difficulty = "easy"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyNew, DifficultyHard, DifficultyEasy:
		return true
	}
	return false
}

// ParseDifficulty converts user input to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q (must be new, hard, or easy)", s)
	}
	return d, nil
}

// Flashcard is a single front/back note tied to one book.
type Flashcard struct {
	ID         int64      `json:"id" validate:"gt=0"`
	Book       string     `json:"book" validate:"required"`
	Front      string     `json:"front" validate:"required"`
	Back       string     `json:"back" validate:"required"`
	Page       string     `json:"page,omitempty"`
	Tags       []string   `json:"tags" validate:"dive,required"`
	CoverURL   *string    `json:"coverUrl"`
	Difficulty Difficulty `json:"difficulty" validate:"omitempty,oneof=new hard easy"`
}

// Clone returns a deep copy, so callers never alias the store's cards.
func (c Flashcard) Clone() Flashcard {
	out := c
	out.Tags = slices.Clone(c.Tags)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if c.CoverURL != nil {
		u := *c.CoverURL
		out.CoverURL = &u
	}
	return out
}

// HasTag reports whether the card carries tag.
func (c *Flashcard) HasTag(tag string) bool {
	return slices.Contains(c.Tags, tag)
}

// Normalize fills defaults for records written by older versions:
// missing tags become an empty list and a missing difficulty becomes "new".
func (c *Flashcard) Normalize() {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyNew
	}
}

// NewCardInput holds the user-supplied fields for a new card.
type NewCardInput struct {
	Book  string   `json:"book" validate:"required"`
	Front string   `json:"front" validate:"required"`
	Back  string   `json:"back" validate:"required"`
	Page  string   `json:"page,omitempty"`
	Tags  []string `json:"tags,omitempty" validate:"dive,required"`
}

// BookGroup is the derived view of all cards sharing a book title.
type BookGroup struct {
	Title     string      `json:"title"`
	CoverURL  *string     `json:"coverUrl"`
	CardCount int         `json:"cardCount"`
	LatestID  int64       `json:"latestId"`
	Cards     []Flashcard `json:"cards"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
