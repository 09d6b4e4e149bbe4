package covers

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/media/images"
	"github.com/booknotes/booknotes/internal/normalize"
)

// IndexKey is the kv key holding the cache index. It is separate from the
// collection so cache bookkeeping never rewrites cards.
const IndexKey = "bookNotesCoverCache"

// Entry describes one cached cover.
type Entry struct {
	Book     string    `json:"book"`
	Key      string    `json:"key"`
	URL      string    `json:"url"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	BlurHash string    `json:"blurHash"`
	Checksum string    `json:"checksum"`
	CachedAt time.Time `json:"cachedAt"`
}

// Outcome reports what Sync did for one book.
type Outcome struct {
	Book    string
	Entry   *Entry
	Skipped string // reason the book was not downloaded, empty when it was
	Err     error
}

// Cache mirrors each book's resolved cover on local disk.
type Cache struct {
	mu         sync.Mutex
	kv         kv.Store
	storage    *images.Storage
	downloader *Downloader
	logger     *slog.Logger
	now        func() time.Time
}

// NewCache creates a cover cache.
func NewCache(kvStore kv.Store, storage *images.Storage, downloader *Downloader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		kv:         kvStore,
		storage:    storage,
		downloader: downloader,
		logger:     logger,
		now:        time.Now,
	}
}

// KeyFor returns the storage key for a book title: its slug followed by a
// short hash of the exact title, so "Dune" and "DUNE!" get separate files.
func KeyFor(title string) string {
	sum := sha256.Sum256([]byte(title))
	slug := normalize.Slug(title)
	if slug == "" {
		slug = "book"
	}
	return fmt.Sprintf("%s-%x", slug, sum[:4])
}

// Index returns the cached entries by book title.
func (c *Cache) Index(ctx context.Context) (map[string]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadIndexLocked(ctx)
}

func (c *Cache) loadIndexLocked(ctx context.Context) (map[string]Entry, error) {
	index := make(map[string]Entry)
	raw, err := c.kv.Get(ctx, IndexKey)
	if errors.Is(err, kv.ErrNotFound) {
		return index, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cover index: %w", err)
	}
	if err := json.Unmarshal(raw, &index); err != nil {
		c.logger.Warn("cover index is unreadable, rebuilding", "error", err)
		return make(map[string]Entry), nil
	}
	return index, nil
}

// Sync downloads the cover of every group that has one and is not cached
// yet. A failure for one book is reported in its Outcome and does not stop
// the others; only index persistence errors are returned.
//
// groups is expected to be the whole collection: cached covers of books
// that are gone or lost their cover are deleted.
func (c *Cache) Sync(ctx context.Context, groups []domain.BookGroup) ([]Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index, err := c.loadIndexLocked(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(groups))
	changed := false
	for _, g := range groups {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		out := Outcome{Book: g.Title}
		key := KeyFor(g.Title)

		switch {
		case g.CoverURL == nil:
			out.Skipped = "no cover"
		case index[g.Title].URL == *g.CoverURL && c.storage.Exists(key):
			e := index[g.Title]
			out.Entry = &e
			out.Skipped = "already cached"
		default:
			res, err := c.downloader.Download(ctx, key, *g.CoverURL)
			if err != nil {
				c.logger.Warn("cover download failed", "book", g.Title, "url", *g.CoverURL, "error", err)
				out.Err = err
				break
			}
			checksum, err := c.storage.Hash(res.Key)
			if err != nil {
				out.Err = err
				break
			}
			e := Entry{
				Book:     g.Title,
				Key:      res.Key,
				URL:      res.URL,
				Width:    res.Width,
				Height:   res.Height,
				BlurHash: res.BlurHash,
				Checksum: checksum,
				CachedAt: c.now().UTC(),
			}
			index[g.Title] = e
			out.Entry = &e
			changed = true
		}
		outcomes = append(outcomes, out)
	}

	if c.pruneLocked(index, groups) {
		changed = true
	}

	if changed {
		data, err := json.Marshal(index)
		if err != nil {
			return outcomes, fmt.Errorf("encode cover index: %w", err)
		}
		if err := c.kv.Set(ctx, IndexKey, data); err != nil {
			return outcomes, fmt.Errorf("persist cover index: %w", err)
		}
	}
	return outcomes, nil
}

// pruneLocked drops index entries, and their files, for books that no
// longer have a cover in groups. It reports whether anything was dropped.
func (c *Cache) pruneLocked(index map[string]Entry, groups []domain.BookGroup) bool {
	live := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.CoverURL != nil {
			live[g.Title] = true
		}
	}

	pruned := false
	for title, e := range index {
		if live[title] {
			continue
		}
		if err := c.storage.Delete(e.Key); err != nil {
			c.logger.Warn("failed to delete stale cover", "book", title, "error", err)
			continue
		}
		delete(index, title)
		pruned = true
		c.logger.Debug("stale cover removed", "book", title, "key", e.Key)
	}
	return pruned
}

// Path returns where the cover for title is stored, and whether it exists.
func (c *Cache) Path(title string) (string, bool) {
	key := KeyFor(title)
	return c.storage.Path(key), c.storage.Exists(key)
}
