package site

import (
	"fmt"
	"net/url"
	"strings"

	gslug "github.com/gosimple/slug"
)

type RouteKind string

const (
	RouteIndex    RouteKind = "index"
	RouteBlog     RouteKind = "blog"
	RoutePost     RouteKind = "post"
	RouteTag      RouteKind = "tag"
	RouteCategory RouteKind = "category"
	RouteRSS      RouteKind = "rss"
	RouteSitemap  RouteKind = "sitemap"
	RouteSearch   RouteKind = "search"
)

type Route struct {
	Kind    RouteKind
	ID      string // post ID, post routes only
	Slug    string
	Key     string
	Page    int
	Path    string // URL path, without base path
	OutPath string // output file, relative to the public dir
	LastMod string
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	if r.Path != "" {
		parts = append(parts, "path="+r.Path)
	}
	if r.OutPath != "" {
		parts = append(parts, "out="+r.OutPath)
	}
	return strings.Join(parts, " ")
}

func PostPath(category, slug string) string {
	return "/blog/" + url.PathEscape(category) + "/" + url.PathEscape(slug)
}

func CategoryPath(category string) string {
	return "/blog/" + url.PathEscape(category)
}

// TagSegment turns a display tag ("Go Tips") into its URL segment ("go-tips").
func TagSegment(tag string) string {
	s := gslug.Make(tag)
	if s == "" {
		return "untitled"
	}
	return s
}

func TagPath(tag string) string {
	return "/tags/" + TagSegment(tag)
}

// AbsURL joins site URL, base path and a root-relative path.
func AbsURL(siteURL, basePath, path string) string {
	base := strings.TrimRight(strings.TrimSpace(siteURL), "/")
	bp := strings.Trim(strings.TrimSpace(basePath), "/")
	if bp != "" {
		base += "/" + bp
	}
	if path == "" || path == "/" {
		return base + "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
