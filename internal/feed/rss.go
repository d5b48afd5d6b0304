package feed

import (
	"encoding/xml"
	"io"
	"time"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
)

// MaxRSSItems caps the feed at the newest posts.
const MaxRSSItems = 200

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Description string   `xml:"description,omitempty"`
	Categories  []string `xml:"category"`
}

// WriteRSS writes an RSS 2.0 document for posts, which must already be in
// freshness order. now dates the channel when posts is empty.
func WriteRSS(w io.Writer, s Site, posts []content.PostMeta, now time.Time) error {
	if len(posts) > MaxRSSItems {
		posts = posts[:MaxRSSItems]
	}

	lastBuild := now.UTC()
	if t, ok := parseDay(newest(posts)); ok {
		lastBuild = t
	}

	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		link := s.abs(site.PostPath(p.Category, p.Slug))
		item := rssItem{
			Title:       p.Title,
			Link:        link,
			GUID:        rssGUID{Value: link, IsPermaLink: true},
			Description: PlainText(p.Excerpt),
			Categories:  p.Tags,
		}
		if t, ok := parseDay(p.Freshness()); ok {
			item.PubDate = t.Format(time.RFC1123Z)
		}
		items = append(items, item)
	}

	title := s.Title
	desc := s.Description
	if desc == "" {
		desc = title + " Feed"
	}
	doc := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:         title,
			Link:          s.abs("/"),
			Description:   desc,
			Language:      s.Language,
			LastBuildDate: lastBuild.Format(time.RFC1123Z),
			Items:         items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
