package serve

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"kyon/internal/app"
	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
	"kyon/internal/domain/site"
	"kyon/internal/feed"
	"kyon/internal/index"
	"kyon/internal/metrics"
	"kyon/internal/paging"
)

const relatedLimit = 3

// SearchPage is the /api/search response.
type SearchPage struct {
	Query string `json:"query"`
	paging.Page[index.Hit]
}

func pageParam(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		return 1
	}
	return n
}

// param returns a path parameter with percent-escapes decoded.
func param(c echo.Context, name string) string {
	v := c.Param(name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func (s *Server) listing(c echo.Context, kind site.RouteKind, key string, posts []content.PostMeta) error {
	return c.JSON(http.StatusOK, app.ListingPage{
		Kind: string(kind),
		Key:  key,
		Page: paging.Paginate(posts, pageParam(c), s.cfg.Paging.PerPage),
	})
}

func (s *Server) handlePosts(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	return s.listing(c, site.RouteBlog, "", v.All())
}

func (s *Server) handlePost(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	category, slug := param(c, "category"), param(c, "slug")
	m, err := v.BySlug(category, slug)
	if err != nil {
		return fmt.Errorf("post %s/%s: %w", category, slug, err)
	}
	compiled, err := s.compiler.Compile(m)
	if err != nil {
		return fmt.Errorf("post %s/%s: %w", category, slug, err)
	}
	return c.JSON(http.StatusOK, app.NewPostDocument(m, compiled, v.Related(m, relatedLimit)))
}

func (s *Server) handleCategories(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Categories())
}

func (s *Server) handleCategory(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	category := param(c, "category")
	posts := v.ByCategory(category)
	if len(posts) == 0 {
		return fmt.Errorf("category %q: %w", category, domainerr.ErrNotFound)
	}
	return s.listing(c, site.RouteCategory, category, posts)
}

func (s *Server) handleTags(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.TagStats())
}

func (s *Server) handleTag(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	tag := param(c, "tag")
	posts := v.ByTag(tag)
	if len(posts) == 0 {
		return fmt.Errorf("tag %q: %w", tag, domainerr.ErrNotFound)
	}
	return s.listing(c, site.RouteTag, tag, posts)
}

func (s *Server) handleSearch(c echo.Context) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	q := c.QueryParams()
	crit := index.Criteria{
		Query:    q.Get("q"),
		Tags:     splitTags(q["tag"]),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Category: q.Get("category"),
	}
	metrics.SearchesTotal.WithLabelValues(strconv.FormatBool(strings.TrimSpace(crit.Query) != "")).Inc()

	return c.JSON(http.StatusOK, SearchPage{
		Query: crit.Query,
		Page:  paging.Paginate(v.SearchHits(crit), pageParam(c), s.cfg.Paging.PerPage),
	})
}

// splitTags accepts both ?tag=a&tag=b and ?tag=a,b.
func splitTags(values []string) []string {
	var out []string
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

func (s *Server) handleRSS(c echo.Context) error {
	return s.writeFeed(c, "application/rss+xml; charset=utf-8", func(w io.Writer, v index.View) error {
		return feed.WriteRSS(w, s.site(), v.All(), s.now())
	})
}

func (s *Server) handleSitemap(c echo.Context) error {
	return s.writeFeed(c, echo.MIMEApplicationXMLCharsetUTF8, func(w io.Writer, v index.View) error {
		return feed.WriteSitemap(w, s.site(), v.All())
	})
}

func (s *Server) handleSearchIndex(c echo.Context) error {
	return s.writeFeed(c, echo.MIMEApplicationJSONCharsetUTF8, func(w io.Writer, v index.View) error {
		return feed.WriteSearchIndex(w, s.site(), v.All())
	})
}

func (s *Server) writeFeed(c echo.Context, contentType string, write func(io.Writer, index.View) error) error {
	v, err := s.catalog.View(c.Request().Context())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := write(&buf, v); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// handleAsset serves a file from a post directory. Only asset extensions are
// exposed, so index.md and stray files stay private.
func (s *Server) handleAsset(c echo.Context) error {
	category, dir := param(c, "category"), param(c, "dir")
	rest := param(c, "*")
	name := path.Clean("/" + rest)
	if !site.IsAssetFile(name) || strings.ContainsAny(category+dir, `/\`) || category == ".." || dir == ".." {
		return echo.ErrNotFound
	}
	full := filepath.Join(s.cfg.Content.Dir, category, dir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
	return c.File(full)
}
