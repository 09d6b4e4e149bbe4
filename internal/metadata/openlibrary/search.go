package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	domainerrors "github.com/booknotes/booknotes/internal/errors"
)

// maxResponseBytes bounds how much of a search response is read.
const maxResponseBytes = 4 << 20

// searchResponse is the subset of search.json the client reads.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	CoverID int64  `json:"cover_i"`
}

// SearchCover returns the medium cover URL of the first search result for
// title that has a cover. It returns ErrNoCover when none has one; transport,
// status and decode failures come back as LookupFailed domain errors.
func (c *Client) SearchCover(ctx context.Context, title string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeLookupFailed, "rate limit")
	}

	searchURL, err := c.buildSearchURL(title)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeLookupFailed, "build search url")
	}

	c.logger.Debug("searching Open Library",
		"title", title,
		"url", searchURL,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeLookupFailed, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeLookupFailed, "search request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domainerrors.Wrapf(fmt.Errorf("status %d", resp.StatusCode),
			domainerrors.CodeLookupFailed, "search failed")
	}

	var searchResp searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&searchResp); err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeLookupFailed, "parse response")
	}

	c.logger.Debug("Open Library search results",
		"title", title,
		"count", len(searchResp.Docs),
	)

	for _, doc := range searchResp.Docs {
		if doc.CoverID > 0 {
			return c.CoverURL(doc.CoverID), nil
		}
	}
	return "", ErrNoCover
}

// CoverURL returns the medium-size image URL for a cover id.
func (c *Client) CoverURL(coverID int64) string {
	return fmt.Sprintf("%s/b/id/%d-M.jpg", c.imageHost, coverID)
}

// buildSearchURL appends q=<title> to the search endpoint. Spaces encode as
// "+", so "Dune Messiah" becomes q=Dune+Messiah.
func (c *Client) buildSearchURL(title string) (string, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return "", err
	}
	params := u.Query()
	params.Set("q", title)
	u.RawQuery = params.Encode()
	return u.String(), nil
}
