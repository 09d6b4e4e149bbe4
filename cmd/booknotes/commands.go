package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/booknotes/booknotes/internal/di/providers"
	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/media/covers"
	"github.com/booknotes/booknotes/internal/normalize"
	"github.com/booknotes/booknotes/internal/query"
	"github.com/booknotes/booknotes/internal/search"
	"github.com/booknotes/booknotes/internal/service"
	"github.com/booknotes/booknotes/internal/store"
	"github.com/booknotes/booknotes/internal/view"
)

func (a *app) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add", a.stderr)
	book := fs.String("book", "", "Book title")
	front := fs.String("front", "", "Question or prompt")
	back := fs.String("back", "", "Answer")
	page := fs.String("page", "", "Page or location (optional)")
	tags := fs.String("tags", "", "Comma separated tags (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cards, err := invoke[*service.CardService](a)
	if err != nil {
		return err
	}
	card, err := cards.Add(ctx, domain.NewCardInput{
		Book:  *book,
		Front: *front,
		Back:  *back,
		Page:  *page,
		Tags:  normalize.SplitTags(*tags),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Added note %d to %q\n", card.ID, card.Book)
	if card.CoverURL != nil {
		fmt.Fprintf(a.stdout, "Cover: %s\n", *card.CoverURL)
	}
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list", a.stderr)
	searchTerm := fs.String("search", "", "Only books whose title contains this")
	tags := &stringList{}
	fs.Var(tags, "tag", "Only notes carrying this tag (repeatable, any of)")
	sortFlag := fs.String("sort", "", "date-desc, date-asc, title-asc or title-desc")
	asJSON := fs.Bool("json", false, "Print the view as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := query.ParseSortMode(*sortFlag)
	if err != nil {
		return err
	}

	st, err := invoke[*store.Store](a)
	if err != nil {
		return err
	}
	sorter, err := invoke[*query.Sorter](a)
	if err != nil {
		return err
	}

	groups := sorter.Apply(st.Cards(), query.NewFilter(*searchTerm, *tags...), mode)
	local, err := a.localCovers(ctx, groups)
	if err != nil {
		return err
	}

	collection := view.Collection(groups, local)
	if *asJSON {
		return a.printJSON(collection)
	}

	if collection.Empty {
		fmt.Fprintln(a.stdout, collection.EmptyMessage)
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOOK\tNOTES\tCOVER")
	for _, b := range collection.Books {
		cover := b.Placeholder
		switch {
		case b.LocalCover != "":
			cover = b.LocalCover
		case b.HasCover:
			cover = *b.CoverURL
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Title, b.CountLabel, cover)
	}
	return w.Flush()
}

// localCovers returns the cached covers of groups whose cover URL has not
// changed since they were downloaded.
func (a *app) localCovers(ctx context.Context, groups []domain.BookGroup) (map[string]view.LocalCover, error) {
	cache, err := invoke[*covers.Cache](a)
	if err != nil {
		return nil, err
	}
	index, err := cache.Index(ctx)
	if err != nil {
		return nil, err
	}

	local := make(map[string]view.LocalCover)
	for _, g := range groups {
		e, ok := index[g.Title]
		if !ok || g.CoverURL == nil || e.URL != *g.CoverURL {
			continue
		}
		if path, exists := cache.Path(g.Title); exists {
			local[g.Title] = view.LocalCover{Path: path, BlurHash: e.BlurHash}
		}
	}
	return local, nil
}

func (a *app) notes(args []string) error {
	fs := newFlagSet("notes", a.stderr)
	searchTerm := fs.String("search", "", "Only notes of books whose title contains this")
	tags := &stringList{}
	fs.Var(tags, "tag", "Only notes carrying this tag (repeatable, any of)")
	difficulty := fs.String("difficulty", "", "Only notes marked new, hard or easy")
	asJSON := fs.Bool("json", false, "Print the view as JSON")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("notes takes exactly one book title")
	}
	book := normalize.Text(positional[0])

	st, err := invoke[*store.Store](a)
	if err != nil {
		return err
	}
	cards := query.FilterCards(st.CardsForBook(book), query.NewFilter(*searchTerm, *tags...))
	if *difficulty != "" {
		d, err := domain.ParseDifficulty(strings.ToLower(*difficulty))
		if err != nil {
			return usageErrorf("%v", err)
		}
		cards = slices.DeleteFunc(cards, func(c domain.Flashcard) bool { return c.Difficulty != d })
	}
	notes := view.Notes(book, cards)
	if *asJSON {
		return a.printJSON(notes)
	}

	fmt.Fprintln(a.stdout, notes.Heading)
	for _, n := range notes.Notes {
		fmt.Fprintf(a.stdout, "\n#%d [%s] %s\n", n.ID, n.Difficulty, n.Front)
		fmt.Fprintf(a.stdout, "    %s\n", n.Back)
		var meta []string
		if n.Page != "" {
			meta = append(meta, "page "+n.Page)
		}
		if len(n.Tags) > 0 {
			meta = append(meta, "tags: "+strings.Join(n.Tags, ", "))
		}
		if len(meta) > 0 {
			fmt.Fprintf(a.stdout, "    (%s)\n", strings.Join(meta, "; "))
		}
	}
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := newFlagSet("remove", a.stderr)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("remove takes exactly one note id")
	}
	cardID, err := strconv.ParseInt(positional[0], 10, 64)
	if err != nil {
		return usageErrorf("invalid note id %q", positional[0])
	}

	cards, err := invoke[*service.CardService](a)
	if err != nil {
		return err
	}
	deleted, err := cards.Delete(ctx, cardID, a.confirmer(*yes))
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintln(a.stdout, "cancelled")
		return nil
	}
	fmt.Fprintf(a.stdout, "Deleted note %d\n", cardID)
	return nil
}

func (a *app) tags(args []string) error {
	fs := newFlagSet("tags", a.stderr)
	selected := &stringList{}
	fs.Var(selected, "tag", "Mark this tag as selected (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := invoke[*store.Store](a)
	if err != nil {
		return err
	}
	filters := view.Filters(query.TagUniverse(st.Cards()), query.NewFilter("", *selected...))
	for _, choice := range filters.Tags {
		mark := " "
		if choice.Selected {
			mark = "*"
		}
		fmt.Fprintf(a.stdout, "%s %s\n", mark, choice.Tag)
	}
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := newFlagSet("search", a.stderr)
	tags := &stringList{}
	fs.Var(tags, "tag", "Only notes carrying this tag (repeatable, any of)")
	limit := fs.Int("limit", 20, "Maximum number of results")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 && len(*tags) == 0 {
		return usageErrorf("search needs a query or a --tag")
	}

	index, err := invoke[*providers.SearchIndexHandle](a)
	if err != nil {
		return err
	}
	res, err := index.Search(ctx, search.Params{
		Query: strings.Join(positional, " "),
		Tags:  *tags,
		Limit: *limit,
	})
	if err != nil {
		return err
	}

	if len(res.Hits) == 0 {
		fmt.Fprintln(a.stdout, "No matching notes.")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBOOK\tFRONT\tSCORE")
	for _, h := range res.Hits {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", h.CardID, h.Book, h.Front, h.Score)
	}
	return w.Flush()
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := newFlagSet("export", a.stderr)
	dir := fs.String("dir", "", "Directory to write the backup into (default: configured export dir)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backups, err := invoke[*service.BackupService](a)
	if err != nil {
		return err
	}
	res, err := backups.Export(ctx, *dir)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Exported %d note(s) to %s\n", res.Count, res.Path)
	fmt.Fprintf(a.stdout, "sha256 %s\n", res.Checksum)
	return nil
}

func (a *app) importBackup(ctx context.Context, args []string) error {
	fs := newFlagSet("import", a.stderr)
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 1 {
		return usageErrorf("import takes exactly one backup file")
	}

	raw, err := os.ReadFile(positional[0])
	if err != nil {
		return err
	}

	backups, err := invoke[*service.BackupService](a)
	if err != nil {
		return err
	}
	proposal, applied, err := backups.Import(ctx, raw, a.confirmer(*yes))
	if err != nil {
		return err
	}
	if !applied {
		fmt.Fprintln(a.stdout, "cancelled")
		return nil
	}
	fmt.Fprintf(a.stdout, "Imported %d note(s)\n", proposal.Incoming)
	return nil
}

func (a *app) theme(ctx context.Context, args []string) error {
	prefs, err := invoke[*service.PreferenceService](a)
	if err != nil {
		return err
	}

	var theme domain.Theme
	switch {
	case len(args) == 0:
		theme, err = prefs.Theme(ctx)
	case len(args) > 1:
		return usageErrorf("theme takes at most one argument")
	case args[0] == "toggle":
		theme, err = prefs.ToggleTheme(ctx)
	default:
		theme = domain.Theme(strings.ToLower(args[0]))
		err = prefs.SetTheme(ctx, theme)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout, theme)
	return nil
}

func (a *app) covers(ctx context.Context, args []string) error {
	fs := newFlagSet("covers", a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Invoking the cache attaches it to the cover service.
	if _, err := invoke[*covers.Cache](a); err != nil {
		return err
	}
	coverService, err := invoke[*service.CoverService](a)
	if err != nil {
		return err
	}

	outcomes, err := coverService.CacheCovers(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(a.stdout, "%s: failed: %v\n", o.Book, o.Err)
		case o.Skipped != "":
			fmt.Fprintf(a.stdout, "%s: skipped (%s)\n", o.Book, o.Skipped)
		default:
			fmt.Fprintf(a.stdout, "%s: cached %dx%d\n", o.Book, o.Entry.Width, o.Entry.Height)
		}
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		fmt.Fprintf(a.stdout, "%d cover(s) could not be cached\n", failed)
	}
	return nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
