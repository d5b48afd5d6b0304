package feed

import (
	"encoding/xml"
	"io"
	"sort"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Entry is one sitemap location.
type Entry struct {
	Loc     string
	LastMod string
}

// SitemapEntries lists /, /blog, every category, every post and every tag
// of posts (freshness order, public only). Category and tag entries carry
// the freshness date of their newest post.
func SitemapEntries(s Site, posts []content.PostMeta) []Entry {
	latest := newest(posts)
	out := []Entry{
		{Loc: s.abs("/"), LastMod: latest},
		{Loc: s.abs("/blog"), LastMod: latest},
	}

	catLatest := map[string]string{}
	var cats []string
	tagLatest := map[string]string{}
	var tags []string
	for _, p := range posts {
		if _, ok := catLatest[p.Category]; !ok {
			catLatest[p.Category] = p.Freshness()
			cats = append(cats, p.Category)
		}
		for _, t := range p.Tags {
			seg := site.TagSegment(t)
			if _, ok := tagLatest[seg]; !ok {
				tagLatest[seg] = p.Freshness()
				tags = append(tags, seg)
			}
		}
	}
	sort.Strings(cats)
	sort.Strings(tags)

	for _, c := range cats {
		out = append(out, Entry{Loc: s.abs(site.CategoryPath(c)), LastMod: catLatest[c]})
	}
	for _, p := range posts {
		out = append(out, Entry{Loc: s.abs(site.PostPath(p.Category, p.Slug)), LastMod: p.Freshness()})
	}
	for _, t := range tags {
		out = append(out, Entry{Loc: s.abs(site.TagPath(t)), LastMod: tagLatest[t]})
	}
	return out
}

func WriteSitemap(w io.Writer, s Site, posts []content.PostMeta) error {
	entries := SitemapEntries(s, posts)
	urls := make([]sitemapURL, len(entries))
	for i, e := range entries {
		urls[i] = sitemapURL{Loc: e.Loc, LastMod: e.LastMod}
	}
	doc := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
