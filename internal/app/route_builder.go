package app

import (
	"path"
	"strconv"

	"kyon/internal/domain/content"
	"kyon/internal/domain/site"
	"kyon/internal/index"
	"kyon/internal/paging"
)

// RouteBuilder enumerates every output of a static export. OutPath is
// slash-separated and relative to the public dir.
type RouteBuilder struct {
	PerPage int
}

func (rb RouteBuilder) perPage() int {
	return max(rb.PerPage, 1)
}

// PostRoutes returns one route per post, freshest first. A post whose slug
// is already taken in its category is exported under its directory name,
// the same segment the query surface resolves it by.
func (rb RouteBuilder) PostRoutes(posts []content.PostMeta) []site.Route {
	routes := make([]site.Route, 0, len(posts))
	taken := make(map[string]struct{}, len(posts))
	for _, m := range posts {
		seg := m.Slug
		if _, dup := taken[m.Category+"/"+seg]; dup {
			seg = m.DirName
		}
		taken[m.Category+"/"+seg] = struct{}{}
		routes = append(routes, site.Route{
			Kind:    site.RoutePost,
			ID:      m.ID,
			Slug:    seg,
			Key:     m.Category,
			Path:    site.PostPath(m.Category, seg),
			OutPath: path.Join("posts", m.Category, seg+".json"),
			LastMod: m.Freshness(),
		})
	}
	return routes
}

// ListingRoutes returns one route per page of the blog listing, of every
// category and of every tag.
func (rb RouteBuilder) ListingRoutes(v index.View) []site.Route {
	var routes []site.Route
	routes = append(routes, rb.pages(site.RouteBlog, "", "/blog", "pages/blog", len(v.All()))...)
	for _, c := range v.Categories() {
		routes = append(routes, rb.pages(site.RouteCategory, c, site.CategoryPath(c),
			path.Join("pages/categories", c), len(v.ByCategory(c)))...)
	}
	for _, t := range v.TagStats() {
		seg := site.TagSegment(t.Name)
		routes = append(routes, rb.pages(site.RouteTag, seg, site.TagPath(t.Name),
			path.Join("pages/tags", seg), t.Count)...)
	}
	return routes
}

func (rb RouteBuilder) pages(kind site.RouteKind, key, urlPath, outDir string, total int) []site.Route {
	count := paging.PageCount(total, rb.perPage())
	routes := make([]site.Route, 0, count)
	for p := 1; p <= count; p++ {
		routes = append(routes, site.Route{
			Kind:    kind,
			Key:     key,
			Page:    p,
			Path:    urlPath,
			OutPath: path.Join(outDir, strconv.Itoa(p)+".json"),
		})
	}
	return routes
}

func (rb RouteBuilder) FeedRoutes() []site.Route {
	return []site.Route{
		{Kind: site.RouteIndex, Path: "/", OutPath: "index.json"},
		{Kind: site.RouteSearch, Path: "/search.json", OutPath: "search.json"},
		{Kind: site.RouteRSS, Path: "/rss.xml", OutPath: "rss.xml"},
		{Kind: site.RouteSitemap, Path: "/sitemap.xml", OutPath: "sitemap.xml"},
	}
}

// All is every route for v: posts, listings, then feeds.
func (rb RouteBuilder) All(v index.View) []site.Route {
	var routes []site.Route
	routes = append(routes, rb.PostRoutes(v.All())...)
	routes = append(routes, rb.ListingRoutes(v)...)
	routes = append(routes, rb.FeedRoutes()...)
	return routes
}

// Listing returns the posts behind a blog, category or tag route.
func Listing(v index.View, r site.Route) []content.PostMeta {
	switch r.Kind {
	case site.RouteCategory:
		return v.ByCategory(r.Key)
	case site.RouteTag:
		return v.ByTag(r.Key)
	}
	return v.All()
}
