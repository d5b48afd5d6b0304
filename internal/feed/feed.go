// Package feed renders the derived outputs of a post list: RSS, the sitemap
// and the client-side search index.
package feed

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
)

// Site carries what the feeds need to know about the site itself.
type Site struct {
	Title       string
	Description string
	URL         string
	BasePath    string
	Language    string
}

func (s Site) abs(path string) string {
	return site.AbsURL(s.URL, s.BasePath, path)
}

var strict = bluemonday.StrictPolicy()

// PlainText strips markup from an excerpt and collapses whitespace.
func PlainText(s string) string {
	out := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(out), " ")
}

func parseDay(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, s)
	return t, err == nil
}

// newest returns the greatest freshness date among posts, or "".
func newest(posts []content.PostMeta) string {
	var out string
	for _, p := range posts {
		if f := p.Freshness(); f > out {
			out = f
		}
	}
	return out
}
