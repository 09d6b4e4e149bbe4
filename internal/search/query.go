package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit is the number of hits returned when Params.Limit is unset.
const DefaultLimit = 20

// Params configures a search.
type Params struct {
	Query string   // Free text matched against front, back and book
	Tags  []string // Restrict to cards carrying any of these tags
	Limit int
}

// Result holds the hits of one search, best first.
type Result struct {
	Query string `json:"query"`
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Hit is one matching card.
type Hit struct {
	CardID     int64             `json:"cardId"`
	Score      float64           `json:"score"`
	Book       string            `json:"book"`
	Front      string            `json:"front"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs params against the index.
func (n *NoteIndex) Search(ctx context.Context, params Params) (*Result, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})
	req.Fields = []string{"book", "front"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("front")
	req.Highlight.AddField("back")

	n.mu.RLock()
	res, err := n.index.SearchInContext(ctx, req)
	n.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query: params.Query,
		Total: res.Total,
		Hits:  make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		cardID, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			n.logger.Warn("skipping search hit with foreign id", "id", h.ID)
			continue
		}
		hit := Hit{CardID: cardID, Score: h.Score}
		if b, ok := h.Fields["book"].(string); ok {
			hit.Book = b
		}
		if f, ok := h.Fields["front"].(string); ok {
			hit.Front = f
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildSearchQuery constructs the Bleve query from params.
//
// Text matches favour the front (the prompt the user wrote), then the back,
// then the book title. A single-word query also matches with one typo and as
// a prefix of the front, so "arakis" still finds "Arrakis".
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		var textQueries []query.Query

		for _, f := range []struct {
			field string
			boost float64
		}{
			{"front", 3.0},
			{"back", 2.0},
			{"book", 1.0},
		} {
			m := bleve.NewMatchQuery(q)
			m.SetField(f.field)
			m.SetBoost(f.boost)
			textQueries = append(textQueries, m)
		}

		if !strings.ContainsAny(q, " \t") {
			term := strings.ToLower(q)
			// Fuzzy match queries are analyzed first, so the typo tolerance
			// applies to the stemmed term.
			for _, field := range []string{"front", "back"} {
				fuzzy := bleve.NewMatchQuery(term)
				fuzzy.SetFuzziness(1)
				fuzzy.SetField(field)
				fuzzy.SetBoost(0.8)
				textQueries = append(textQueries, fuzzy)
			}
			if len(term) >= 2 {
				prefix := bleve.NewPrefixQuery(term)
				prefix.SetField("front")
				prefix.SetBoost(0.5)
				textQueries = append(textQueries, prefix)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.Tags) > 0 {
		tagQueries := make([]query.Query, len(params.Tags))
		for i, t := range params.Tags {
			tq := bleve.NewTermQuery(t)
			tq.SetField("tags")
			tagQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(tagQueries...))
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
