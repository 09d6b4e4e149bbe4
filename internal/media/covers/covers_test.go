package covers

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booknotes/booknotes/internal/domain"
	"github.com/booknotes/booknotes/internal/kv"
	"github.com/booknotes/booknotes/internal/media/images"
)

func coverJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 90, 140))
	for y := range 140 {
		for x := range 90 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

type coverServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newCoverServer(t *testing.T) *coverServer {
	t.Helper()
	cover := coverJPEG(t)
	cs := &coverServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.hits.Add(1)
		switch r.URL.Path {
		case "/b/id/1-M.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(cover)
		case "/b/id/html-M.jpg":
			_, _ = w.Write([]byte("<html><body>moved</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(cs.Close)
	return cs
}

func setupCache(t *testing.T, client *http.Client) (*Cache, *images.Storage, *kv.Memory) {
	t.Helper()
	storage, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)
	mem := kv.NewMemory()
	return NewCache(mem, storage, NewDownloader(client, storage, nil), nil), storage, mem
}

func TestDownloader_Download(t *testing.T) {
	srv := newCoverServer(t)
	storage, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)
	d := NewDownloader(srv.Client(), storage, nil)

	res, err := d.Download(context.Background(), "dune", srv.URL+"/b/id/1-M.jpg")
	require.NoError(t, err)
	assert.Equal(t, 90, res.Width)
	assert.Equal(t, 140, res.Height)
	assert.NotEmpty(t, res.BlurHash)
	assert.True(t, storage.Exists("dune"))
}

func TestDownloader_Rejects(t *testing.T) {
	srv := newCoverServer(t)
	storage, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)
	d := NewDownloader(srv.Client(), storage, nil)
	ctx := context.Background()

	_, err = d.Download(ctx, "a", "")
	assert.Error(t, err)

	_, err = d.Download(ctx, "a", srv.URL+"/b/id/missing-M.jpg")
	assert.ErrorContains(t, err, "status 404")

	_, err = d.Download(ctx, "a", srv.URL+"/b/id/html-M.jpg")
	assert.ErrorContains(t, err, "not an image")

	assert.False(t, storage.Exists("a"))
}

func TestCache_Sync(t *testing.T) {
	srv := newCoverServer(t)
	cache, storage, mem := setupCache(t, srv.Client())
	ctx := context.Background()

	groups := []domain.BookGroup{
		{Title: "Dune Messiah", CoverURL: domain.StringPtr(srv.URL + "/b/id/1-M.jpg"), LatestID: 3},
		{Title: "Emma", LatestID: 2},
		{Title: "Broken", CoverURL: domain.StringPtr(srv.URL + "/b/id/gone-M.jpg"), LatestID: 1},
	}

	outcomes, err := cache.Sync(ctx, groups)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	key := KeyFor("Dune Messiah")
	require.NotNil(t, outcomes[0].Entry)
	assert.Equal(t, key, outcomes[0].Entry.Key)
	assert.Empty(t, outcomes[0].Skipped)
	assert.True(t, storage.Exists(key))

	checksum, err := storage.Hash(key)
	require.NoError(t, err)
	assert.Equal(t, checksum, outcomes[0].Entry.Checksum)

	assert.Equal(t, "no cover", outcomes[1].Skipped)
	assert.Error(t, outcomes[2].Err)

	index, err := cache.Index(ctx)
	require.NoError(t, err)
	assert.Contains(t, index, "Dune Messiah")
	assert.NotContains(t, index, "Broken")

	_, err = mem.Get(ctx, IndexKey)
	require.NoError(t, err)

	// Second sync downloads nothing new for the cached book.
	hits := srv.hits.Load()
	outcomes, err = cache.Sync(ctx, groups[:1])
	require.NoError(t, err)
	assert.Equal(t, "already cached", outcomes[0].Skipped)
	assert.Equal(t, hits, srv.hits.Load())

	path, ok := cache.Path("Dune Messiah")
	assert.True(t, ok)
	assert.Equal(t, storage.Path(key), path)
}

func TestCache_SyncPrunesGoneBooks(t *testing.T) {
	srv := newCoverServer(t)
	cache, storage, _ := setupCache(t, srv.Client())
	ctx := context.Background()

	dune := domain.BookGroup{Title: "Dune", CoverURL: domain.StringPtr(srv.URL + "/b/id/1-M.jpg"), LatestID: 2}
	emma := domain.BookGroup{Title: "Emma", CoverURL: domain.StringPtr(srv.URL + "/b/id/1-M.jpg"), LatestID: 1}

	_, err := cache.Sync(ctx, []domain.BookGroup{dune, emma})
	require.NoError(t, err)
	require.True(t, storage.Exists(KeyFor("Emma")))

	_, err = cache.Sync(ctx, []domain.BookGroup{dune})
	require.NoError(t, err)

	index, err := cache.Index(ctx)
	require.NoError(t, err)
	assert.Contains(t, index, "Dune")
	assert.NotContains(t, index, "Emma")
	assert.False(t, storage.Exists(KeyFor("Emma")))
	assert.True(t, storage.Exists(KeyFor("Dune")))
}

func TestCache_SimilarTitlesDoNotShareFiles(t *testing.T) {
	srv := newCoverServer(t)
	cache, _, _ := setupCache(t, srv.Client())
	ctx := context.Background()

	groups := []domain.BookGroup{
		{Title: "Dune", CoverURL: domain.StringPtr(srv.URL + "/b/id/1-M.jpg")},
		{Title: "DUNE!", CoverURL: domain.StringPtr(srv.URL + "/b/id/1-M.jpg")},
	}
	outcomes, err := cache.Sync(ctx, groups)
	require.NoError(t, err)
	require.NotNil(t, outcomes[0].Entry)
	require.NotNil(t, outcomes[1].Entry)
	assert.NotEqual(t, outcomes[0].Entry.Key, outcomes[1].Entry.Key)

	first, _ := cache.Path("Dune")
	second, _ := cache.Path("DUNE!")
	assert.NotEqual(t, first, second)
}

func TestKeyFor(t *testing.T) {
	assert.True(t, strings.HasPrefix(KeyFor("Les Misérables"), "les-miserables-"))
	assert.True(t, strings.HasPrefix(KeyFor("東京"), "book-"))
	assert.Equal(t, KeyFor("Dune"), KeyFor("Dune"))
	assert.NotEqual(t, KeyFor("Dune"), KeyFor("DUNE!"))
	assert.Len(t, KeyFor("Dune"), len("dune-")+8)
}
