// Package openlibrary provides a client for finding book covers through the
// Open Library search API.
package openlibrary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for the public Open Library endpoints.
const (
	DefaultSearchURL = "https://openlibrary.org/search.json"
	DefaultImageHost = "https://covers.openlibrary.org"
)

// ErrNoCover is returned when the search succeeded but no result has a cover.
var ErrNoCover = errors.New("openlibrary: no cover found")

// Config configures a Client. Zero values fall back to the defaults.
type Config struct {
	SearchURL string
	ImageHost string
	Timeout   time.Duration
}

// Client searches Open Library for cover images.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	searchURL string
	imageHost string
}

// NewClient creates a new Open Library client.
// Rate limited to one request per second with a burst of 3, well inside
// Open Library's published limits.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.SearchURL == "" {
		cfg.SearchURL = DefaultSearchURL
	}
	if cfg.ImageHost == "" {
		cfg.ImageHost = DefaultImageHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
		searchURL:   cfg.SearchURL,
		imageHost:   strings.TrimRight(cfg.ImageHost, "/"),
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// HTTPClient returns the client's HTTP client, so cover downloads share its
// timeout and connection pool.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// wait blocks until rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}
