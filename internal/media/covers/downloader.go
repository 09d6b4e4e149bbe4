// Package covers downloads resolved book covers into the local image cache.
package covers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/booknotes/booknotes/internal/media/images"
	"github.com/booknotes/booknotes/internal/ratelimit"
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 10 * 1024 * 1024 // 10MB

	// downloadTimeout is the maximum time for a cover download.
	downloadTimeout = 30 * time.Second

	// Per-host politeness towards the cover CDN.
	downloadRPS   = 2
	downloadBurst = 4
)

// ErrTooLarge is returned when a cover exceeds maxCoverSize.
var ErrTooLarge = errors.New("cover exceeds 10MB")

// DownloadResult contains the result of a cover download operation.
type DownloadResult struct {
	Key      string // Storage key, see KeyFor
	URL      string
	Width    int
	Height   int
	Size     int64
	BlurHash string
}

// Downloader fetches cover images and stores them.
type Downloader struct {
	httpClient *http.Client
	storage    *images.Storage
	limiter    *ratelimit.HostLimiter
	logger     *slog.Logger
}

// NewDownloader creates a new cover downloader. A nil httpClient gets one
// with the default download timeout.
func NewDownloader(httpClient *http.Client, storage *images.Storage, logger *slog.Logger) *Downloader {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Downloader{
		httpClient: httpClient,
		storage:    storage,
		limiter:    ratelimit.NewHostLimiter(downloadRPS, downloadBurst),
		logger:     logger,
	}
}

// Download fetches url and stores it under key. The body must decode as an
// image; anything else (an HTML error page, say) is rejected before storing.
func (d *Downloader) Download(ctx context.Context, key, url string) (*DownloadResult, error) {
	if url == "" {
		return nil, errors.New("empty cover URL")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	if err := d.limiter.Wait(downloadCtx, url); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	// Read one byte past the limit to tell "exactly 10MB" from "more".
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(data) > maxCoverSize {
		return nil, ErrTooLarge
	}

	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("not an image: %s", ct)
	}

	info, err := images.Inspect(data)
	if err != nil {
		return nil, err
	}

	if err := d.storage.Save(key, data); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	d.logger.Info("downloaded cover",
		"key", key,
		"size", len(data),
		"width", info.Width,
		"height", info.Height,
	)

	return &DownloadResult{
		Key:      key,
		URL:      url,
		Width:    info.Width,
		Height:   info.Height,
		Size:     int64(len(data)),
		BlurHash: info.BlurHash,
	}, nil
}
