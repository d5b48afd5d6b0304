package app

import (
	"time"

	"kyon/internal/domain/content"
	"kyon/internal/index"
	"kyon/internal/ingest"
	"kyon/internal/paging"
	"kyon/internal/render"
)

const (
	FormatHTML   = "html"
	FormatBundle = "bundle"
)

// PostDocument is the JSON form of one compiled post, shared by the static
// export and the HTTP API.
type PostDocument struct {
	Meta        content.PostMeta   `json:"meta"`
	Format      string             `json:"format"`
	HTML        string             `json:"html,omitempty"`
	Bundle      *render.Bundle     `json:"bundle,omitempty"`
	TOC         []content.TOCItem  `json:"toc"`
	ReadingTime int                `json:"readingTime"`
	WordCount   int                `json:"wordCount"`
	Related     []content.PostMeta `json:"related"`
	Fingerprint string             `json:"fingerprint"`
}

func NewPostDocument(meta content.PostMeta, c *Compiled, related []content.PostMeta) PostDocument {
	if related == nil {
		related = []content.PostMeta{}
	}
	doc := PostDocument{
		Meta:        meta,
		TOC:         c.TOC,
		ReadingTime: c.ReadingTime,
		WordCount:   c.WordCount,
		Related:     related,
		Fingerprint: c.Fingerprint.RenderHash,
	}
	switch out := c.Output.(type) {
	case render.HTML:
		doc.Format = FormatHTML
		doc.HTML = string(out)
	case *render.Bundle:
		doc.Format = FormatBundle
		doc.Bundle = out
	}
	return doc
}

// ListingPage is one page of a blog, category or tag listing.
type ListingPage struct {
	Kind string `json:"kind"`
	Key  string `json:"key,omitempty"`
	paging.Page[content.PostMeta]
}

// SiteIndex is index.json: the whole public catalog in one file.
type SiteIndex struct {
	Title      string             `json:"title"`
	URL        string             `json:"url"`
	BasePath   string             `json:"basePath,omitempty"`
	BuiltAt    time.Time          `json:"builtAt"`
	Posts      []content.PostMeta `json:"posts"`
	Categories []string           `json:"categories"`
	Tags       []index.TagStat    `json:"tags"`
	Warnings   []ingest.Warning   `json:"warnings"`
}
