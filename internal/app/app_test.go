package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyon/internal/domain/content"
	domainerr "kyon/internal/domain/errors"
	"kyon/internal/domain/site"
	"kyon/internal/index"
	"kyon/internal/render"
)

func meta(category, dirName, slug, date string, tags ...string) content.PostMeta {
	return content.PostMeta{
		ID:       category + "/" + dirName,
		Category: category,
		DirName:  dirName,
		Slug:     slug,
		Title:    slug,
		Date:     date,
		Tags:     tags,
		Kind:     content.KindMarkdown,
	}
}

func testView() index.View {
	return index.NewSnapshot([]content.PostMeta{
		meta("blog", "20240301_a", "a", "2024-03-01", "Go"),
		meta("blog", "20240201_b", "b", "2024-02-01", "go", "Web Dev"),
		meta("notes", "20240101_c", "c", "2024-01-01"),
	}, nil, time.Time{}).View(false)
}

func TestPostRoutes(t *testing.T) {
	routes := RouteBuilder{PerPage: 2}.PostRoutes(testView().All())
	require.Len(t, routes, 3)
	assert.Equal(t, site.Route{
		Kind:    site.RoutePost,
		ID:      "blog/20240301_a",
		Slug:    "a",
		Key:     "blog",
		Path:    "/blog/blog/a",
		OutPath: "posts/blog/a.json",
		LastMod: "2024-03-01",
	}, routes[0])
}

func TestPostRoutesSharedSlug(t *testing.T) {
	v := index.NewSnapshot([]content.PostMeta{
		meta("blog", "20240101_intro", "intro", "2024-01-01"),
		meta("blog", "intro", "intro", "2024-05-01"),
	}, nil, time.Time{}).View(false)

	routes := RouteBuilder{}.PostRoutes(v.All())
	require.Len(t, routes, 2)
	assert.Equal(t, "blog/intro", routes[0].ID)
	assert.Equal(t, "posts/blog/intro.json", routes[0].OutPath)
	assert.Equal(t, "blog/20240101_intro", routes[1].ID)
	assert.Equal(t, "posts/blog/20240101_intro.json", routes[1].OutPath)
	assert.Equal(t, "/blog/blog/20240101_intro", routes[1].Path)

	shadowed, err := v.BySlug("blog", routes[1].Slug)
	require.NoError(t, err)
	assert.Equal(t, routes[1].ID, shadowed.ID)
}

func TestListingRoutes(t *testing.T) {
	routes := RouteBuilder{PerPage: 2}.ListingRoutes(testView())

	var outs []string
	for _, r := range routes {
		outs = append(outs, r.OutPath)
	}
	assert.Equal(t, []string{
		"pages/blog/1.json",
		"pages/blog/2.json",
		"pages/categories/blog/1.json",
		"pages/categories/notes/1.json",
		"pages/tags/go/1.json",
		"pages/tags/web-dev/1.json",
	}, outs)
	assert.Equal(t, 2, routes[1].Page)
}

func TestListingRoutesEmptySite(t *testing.T) {
	v := index.NewSnapshot(nil, nil, time.Time{}).View(false)
	routes := RouteBuilder{}.ListingRoutes(v)
	require.Len(t, routes, 1, "the blog listing always has one page")
	assert.Equal(t, "pages/blog/1.json", routes[0].OutPath)
}

func TestListing(t *testing.T) {
	v := testView()
	assert.Len(t, Listing(v, site.Route{Kind: site.RouteBlog}), 3)
	assert.Len(t, Listing(v, site.Route{Kind: site.RouteCategory, Key: "notes"}), 1)
	assert.Len(t, Listing(v, site.Route{Kind: site.RouteTag, Key: "web-dev"}), 1)
	assert.Len(t, Listing(v, site.Route{Kind: site.RouteTag, Key: "go"}), 2)
}

func TestAllRoutesEndWithFeeds(t *testing.T) {
	routes := RouteBuilder{PerPage: 12}.All(testView())
	last := routes[len(routes)-4:]
	assert.Equal(t, site.RouteIndex, last[0].Kind)
	assert.Equal(t, "sitemap.xml", last[3].OutPath)
}

func writePost(t *testing.T, body string, kind content.DocKind) content.PostMeta {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "blog", "20240101_post")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, "index."+string(kind))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	m := meta("blog", "20240101_post", "post", "2024-01-01")
	m.SourcePath = p
	m.Kind = kind
	return m
}

func TestCompileServiceCaches(t *testing.T) {
	m := writePost(t, "## Hi\n\n![x](x.png)", content.KindMarkdown)
	s := NewCompileService(render.Options{}, false, nil)

	first, err := s.Compile(m)
	require.NoError(t, err)
	second, err := s.Compile(m)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, os.WriteFile(m.SourcePath, []byte("## Changed"), 0o644))
	third, err := s.Compile(m)
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint.RenderHash, third.Fingerprint.RenderHash)

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestCompileServiceNoCache(t *testing.T) {
	m := writePost(t, "text", content.KindMarkdown)
	s := NewCompileService(render.Options{}, true, nil)
	a, err := s.Compile(m)
	require.NoError(t, err)
	b, err := s.Compile(m)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Zero(t, s.Len())
}

func TestCompileServiceErrors(t *testing.T) {
	s := NewCompileService(render.Options{}, false, nil)

	missing := meta("blog", "gone", "gone", "2024-01-01")
	missing.SourcePath = filepath.Join(t.TempDir(), "nope.md")
	_, err := s.Compile(missing)
	assert.ErrorIs(t, err, domainerr.ErrNotFound)

	bad := writePost(t, "<Callout>\n\nunclosed", content.KindMDX)
	_, err = s.Compile(bad)
	assert.ErrorIs(t, err, domainerr.ErrMalformedBody)
	var de *domainerr.DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, bad.SourcePath, de.Path)

	fm := writePost(t, "---\ntitle: [\n---\nbody", content.KindMarkdown)
	_, err = s.Compile(fm)
	assert.ErrorIs(t, err, domainerr.ErrMalformedFrontmatter)
	assert.NotErrorIs(t, err, domainerr.ErrMalformedBody)
}

func TestNewPostDocument(t *testing.T) {
	s := NewCompileService(render.Options{}, false, nil)

	md := writePost(t, "## Hi", content.KindMarkdown)
	c, err := s.Compile(md)
	require.NoError(t, err)
	doc := NewPostDocument(md, c, nil)
	assert.Equal(t, FormatHTML, doc.Format)
	assert.Contains(t, doc.HTML, `id="hi"`)
	assert.NotNil(t, doc.Related)

	mdx := writePost(t, "<Note />", content.KindMDX)
	c, err = s.Compile(mdx)
	require.NoError(t, err)
	doc = NewPostDocument(mdx, c, nil)
	assert.Equal(t, FormatBundle, doc.Format)
	require.NotNil(t, doc.Bundle)
	assert.Equal(t, []string{"Note"}, doc.Bundle.Components)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format":"bundle"`)
	assert.NotContains(t, string(data), `"html"`)
}
