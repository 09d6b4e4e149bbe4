// Package main provides a tool to seed a booknotes database with sample notes.
//
// It adds notes for a handful of books and records a random review
// difficulty on some of them, which is handy for trying out sorting,
// filtering and review without typing notes by hand.
//
// Usage:
//
//	DB_PATH=~/BookNotes/db go run ./cmd/seed
//	DB_PATH=~/BookNotes/db go run ./cmd/seed --reviewed 0.5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/store"
)

var reviewed = flag.Float64("reviewed", 0.3, "Fraction of seeded notes that get a review difficulty")

type sampleBook struct {
	title string
	tags  []string
	notes [][2]string
}

var samples = []sampleBook{
	{
		title: "Dune",
		tags:  []string{"sci-fi"},
		notes: [][2]string{
			{"What is the spice?", "Melange, found only on Arrakis"},
			{"Who leads the Fremen?", "Paul Atreides, as Muad'Dib"},
			{"What is the Bene Gesserit litany against?", "Fear, the mind-killer"},
		},
	},
	{
		title: "Emma",
		tags:  []string{"classic"},
		notes: [][2]string{
			{"Where does Emma live?", "Hartfield, in Highbury"},
			{"Whom does Emma marry?", "Mr. Knightley"},
		},
	},
	{
		title: "Les Misérables",
		tags:  []string{"classic", "france"},
		notes: [][2]string{
			{"What was Valjean imprisoned for?", "Stealing bread"},
			{"Who pursues Valjean?", "Inspector Javert"},
		},
	},
	{
		title: "Thinking, Fast and Slow",
		tags:  []string{"non-fiction", "psychology"},
		notes: [][2]string{
			{"System 1 is…", "Fast, automatic, intuitive"},
			{"System 2 is…", "Slow, effortful, deliberate"},
		},
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/BookNotes/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	db, err := kv.OpenBadger(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	s := store.New(db, nil, store.NewNoopEmitter())
	if err := s.Load(ctx); err != nil {
		log.Fatalf("Failed to load collection: %v", err)
	}

	fmt.Printf("Existing notes: %d\n", s.Len())

	added, marked := 0, 0
	for _, book := range samples {
		for _, note := range book.notes {
			card, err := s.Add(ctx, domain.NewCardInput{
				Book:  book.title,
				Front: note[0],
				Back:  note[1],
				Tags:  book.tags,
			}, nil)
			if err != nil {
				log.Fatalf("Failed to add note to %q: %v", book.title, err)
			}
			added++

			if rand.Float64() >= *reviewed {
				continue
			}
			d := domain.DifficultyHard
			if rand.IntN(2) == 0 {
				d = domain.DifficultyEasy
			}
			if _, err := s.UpdateDifficulty(ctx, card.ID, d); err != nil {
				log.Fatalf("Failed to mark note %d: %v", card.ID, err)
			}
			marked++
		}
		fmt.Printf("  %s: %d notes\n", book.title, len(book.notes))
	}

	fmt.Println()
	fmt.Printf("Added %d notes (%d with a review difficulty)\n", added, marked)
	fmt.Printf("Collection now holds %d notes\n", s.Len())
}
