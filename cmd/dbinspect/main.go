// Command dbinspect prints what a booknotes badger database holds.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/media/covers"
	"github.com/booknotes/booknotes/internal/query"
	"github.com/booknotes/booknotes/internal/store"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/BookNotes/db")
	}

	db, err := kv.OpenBadger(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	keys, err := db.Keys()
	if err != nil {
		log.Fatalf("Error listing keys: %v", err)
	}
	for _, key := range keys {
		val, err := db.Get(ctx, key)
		if err != nil {
			log.Printf("Error reading %s: %v", key, err)
			continue
		}
		fmt.Printf("%-24s %8d bytes\n", key, len(val))
	}
	fmt.Println()

	raw, err := db.Get(ctx, store.CollectionKey)
	if err != nil {
		fmt.Println("No collection stored.")
		return
	}

	var cards []domain.Flashcard
	if err := json.Unmarshal(raw, &cards); err != nil {
		fmt.Printf("Collection is not valid JSON: %v\n", err)
		return
	}

	difficulties := make(map[domain.Difficulty]int)
	withoutCover := 0
	for i := range cards {
		cards[i].Normalize()
		difficulties[cards[i].Difficulty]++
		if cards[i].CoverURL == nil {
			withoutCover++
		}
	}

	groups := query.Apply(cards, query.Filter{}, query.SortDateDesc)
	for i, g := range groups {
		if i == 5 {
			fmt.Printf("... and %d more books\n\n", len(groups)-5)
			break
		}
		fmt.Printf("Book: %s\n", g.Title)
		fmt.Printf("  Notes: %d\n", g.CardCount)
		fmt.Printf("  Latest: %d\n", g.LatestID)
		if g.CoverURL != nil {
			fmt.Printf("  Cover: %s\n", *g.CoverURL)
		}
		fmt.Println()
	}

	cached := 0
	if raw, err := db.Get(ctx, covers.IndexKey); err == nil {
		var index map[string]covers.Entry
		if json.Unmarshal(raw, &index) == nil {
			cached = len(index)
			for title, e := range index {
				fmt.Printf("Cached cover: %s -> %s.jpg (%dx%d, sha256 %.12s)\n", title, e.Key, e.Width, e.Height, e.Checksum)
			}
			if cached > 0 {
				fmt.Println()
			}
		}
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total notes: %d\n", len(cards))
	fmt.Printf("Books: %d\n", len(groups))
	fmt.Printf("Tags: %d\n", len(query.TagUniverse(cards)))
	fmt.Printf("Notes without cover: %d\n", withoutCover)
	fmt.Printf("Covers cached: %d\n", cached)
	for _, d := range []domain.Difficulty{domain.DifficultyNew, domain.DifficultyHard, domain.DifficultyEasy} {
		fmt.Printf("Difficulty %-5s %d\n", d+":", difficulties[d])
	}
}
