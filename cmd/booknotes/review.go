package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/normalize"
	"github.com/booknotes/booknotes/internal/review"
	"github.com/booknotes/booknotes/internal/view"
)

const reviewHelp = "[enter] flip  [n]ext  [p]revious  [h]ard  [e]asy  [q]uit"

// review runs an interactive pass over one book's notes, reading one
// command per input line.
func (a *app) review(ctx context.Context, args []string) error {
	fs := newFlagSet("review", a.stderr)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("review takes exactly one book title")
	}

	session, err := invoke[*review.Session](a)
	if err != nil {
		return err
	}
	if err := session.Start(ctx, normalize.Text(positional[0])); err != nil {
		if errors.Is(err, review.ErrNothingToReview) {
			fmt.Fprintln(a.stdout, view.NothingToReviewMessage)
			return nil
		}
		return err
	}
	defer session.Close()

	in := newPrompter(a.stdin, a.stdout)
	flipped := false
	for {
		a.showReviewCard(view.Review(session.State()), flipped)

		cmd, ok := in.readLine("> ")
		if !ok {
			return nil
		}

		switch cmd {
		case "", "f":
			flipped = !flipped
			continue
		case "n":
			err = session.Next()
		case "p":
			err = session.Previous()
		case "h":
			err = a.mark(ctx, session, domain.DifficultyHard)
		case "e":
			err = a.mark(ctx, session, domain.DifficultyEasy)
		case "q":
			return nil
		default:
			fmt.Fprintln(a.stdout, reviewHelp)
			continue
		}
		if err != nil {
			return err
		}
		flipped = false
	}
}

func (a *app) mark(ctx context.Context, session *review.Session, d domain.Difficulty) error {
	card, err := session.MarkDifficulty(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Marked note %d as %s\n", card.ID, card.Difficulty)
	return nil
}

func (a *app) showReviewCard(v view.ReviewView, flipped bool) {
	fmt.Fprintf(a.stdout, "\n%s: %s [%s]\n", v.Book, v.Progress, v.Difficulty)
	if flipped {
		fmt.Fprintf(a.stdout, "A: %s\n", v.Back)
		if v.Page != "" {
			fmt.Fprintf(a.stdout, "   (page %s)\n", v.Page)
		}
		return
	}
	fmt.Fprintf(a.stdout, "Q: %s\n", v.Front)
}
