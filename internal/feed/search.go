package feed

import (
	"encoding/json"
	"io"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
)

// SearchEntry is one record of search.json, consumed by client-side search.
type SearchEntry struct {
	Slug     string   `json:"slug"`
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Tags     []string `json:"tags"`
	Date     string   `json:"date"`
	Path     string   `json:"path"`
}

func SearchIndex(s Site, posts []content.PostMeta) []SearchEntry {
	out := make([]SearchEntry, 0, len(posts))
	for _, p := range posts {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, SearchEntry{
			Slug:     p.Slug,
			Category: p.Category,
			Title:    p.Title,
			Excerpt:  PlainText(p.Excerpt),
			Tags:     tags,
			Date:     p.Freshness(),
			Path:     site.WithBase(s.BasePath, site.PostPath(p.Category, p.Slug)),
		})
	}
	return out
}

func WriteSearchIndex(w io.Writer, s Site, posts []content.PostMeta) error {
	return json.NewEncoder(w).Encode(SearchIndex(s, posts))
}
